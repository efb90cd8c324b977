// Package shm manages POSIX shared-memory-backed pixel buffers of the kind
// a Wayland wl_shm client hands to a compositor: a single memfd-backed
// mapping subdivided into per-frame buffers, with a punch-hole scroll
// optimization that lets a full-screen scroll cost a few syscalls instead
// of a memcpy of the whole framebuffer.
//
// This package owns the memory only. The actual wl_shm_pool / wl_buffer
// wire objects belong to whatever Wayland client library a caller wires
// in above vtcore; Pool and Buffer expose the file descriptor, offset,
// and stride a caller needs to construct those objects.
package shm

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// defaultMaxPoolSize bounds how large the backing memfd is allowed to grow.
// Kept conservative relative to available 64-bit address space; a caller
// with unusually large or numerous terminals can raise it with
// NewPool's maxSize argument.
const defaultMaxPoolSize = 512 * 1024 * 1024

// Pool is a single memfd-backed shared memory region subdivided into
// Buffers. All Buffers sharing a Pool share its mapping and its
// punch-hole-scroll capability probe.
type Pool struct {
	mu sync.Mutex

	fd          int
	maxSize     int64
	mapped      []byte
	canPunch    bool
	punchProbed bool
}

// NewPool creates a new shared-memory pool backed by an anonymous memfd.
// maxSize bounds how far the pool's offset window is allowed to slide
// before wrapping back to the start; pass 0 to use a conservative default.
// An empty name gets a generated one (the memfd name is only ever visible
// in /proc/self/fd for debugging, but a unique one avoids ambiguity when
// several pools are alive at once).
func NewPool(name string, maxSize int64) (*Pool, error) {
	if maxSize <= 0 {
		maxSize = defaultMaxPoolSize
	}
	if name == "" {
		name = "vtcore-shm-" + uuid.NewString()
	}

	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return nil, fatalf("shm: memfd_create: %v", err)
	}

	if err := unix.Ftruncate(fd, maxSize); err != nil {
		unix.Close(fd)
		return nil, fatalf("shm: ftruncate: %v", err)
	}

	// Seal against size changes once we've sized it: nothing in this
	// package ever grows the memfd after creation, and sealing lets a
	// compositor trust the mapping won't be truncated out from under it.
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS, unix.F_SEAL_SHRINK|unix.F_SEAL_GROW); err != nil {
		// Non-fatal: some kernels/filesystems don't support sealing.
		// The pool still works, it's just not protected against a
		// misbehaving second owner of the fd resizing it.
		_ = err
	}

	mapped, err := unix.Mmap(fd, 0, int(maxSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fatalf("shm: mmap: %v", err)
	}

	p := &Pool{
		fd:      fd,
		maxSize: maxSize,
		mapped:  mapped,
	}
	p.probePunchHole()
	return p, nil
}

// probePunchHole determines whether the backing filesystem supports
// FALLOC_FL_PUNCH_HOLE, which scroll-by-remap depends on. Probed once per
// pool and cached, mirroring the one-time capability check a real
// compositor client does at startup rather than on every scroll.
func (p *Pool) probePunchHole() {
	if p.punchProbed {
		return
	}
	p.punchProbed = true
	err := unix.Fallocate(p.fd, unix.FALLOC_FL_PUNCH_HOLE|unix.FALLOC_FL_KEEP_SIZE, 0, 1)
	p.canPunch = err == nil
}

// CanPunchHole reports whether this pool's backing store supports the
// hole-punch scroll optimization. When false, Buffer.Scroll always falls
// back to a plain in-place memmove.
func (p *Pool) CanPunchHole() bool {
	return p.canPunch
}

// FD returns the pool's shared memory file descriptor, for handing to a
// Wayland client library's wl_shm_create_pool call.
func (p *Pool) FD() int {
	return p.fd
}

// Close unmaps and closes the pool's backing memfd. Any Buffers obtained
// from it become invalid.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.mapped != nil {
		err = unix.Munmap(p.mapped)
		p.mapped = nil
	}
	if p.fd >= 0 {
		if cerr := unix.Close(p.fd); cerr != nil && err == nil {
			err = cerr
		}
		p.fd = -1
	}
	return err
}
