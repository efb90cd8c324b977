package shm

import (
	"fmt"
	"log"
)

// PanicOnFatal controls what happens when a Pool exhausts a resource it
// cannot recover from (memfd_create or the initial mmap failing). A
// caller process is assumed to restart cleanly after such a failure, so
// the default matches that assumption and calls log.Fatal. A caller that
// sets this to false gets the error returned instead of an os.Exit.
var PanicOnFatal = true

func fatalf(format string, args ...any) error {
	if PanicOnFatal {
		log.Fatalf(format, args...)
	}
	return &fatalError{msg: fmt.Sprintf(format, args...)}
}

type fatalError struct{ msg string }

func (e *fatalError) Error() string { return e.msg }

// ShmPoolFactory abstracts constructing a shared-memory pool from
// whatever display-server client owns the actual wl_shm global. vtcore
// only needs to obtain a Pool; it never negotiates the Wayland registry
// itself, so callers outside this module satisfy this interface by
// wrapping their own wl_shm binding.
type ShmPoolFactory interface {
	CreatePool(name string, maxSize int64) (*Pool, error)
}

// DefaultFactory creates pools directly via NewPool, with no Wayland
// registry involved. Suitable for tests and for cmd/vtdemo, which has no
// compositor connection of its own.
type DefaultFactory struct{}

func (DefaultFactory) CreatePool(name string, maxSize int64) (*Pool, error) {
	return NewPool(name, maxSize)
}

var _ ShmPoolFactory = DefaultFactory{}
