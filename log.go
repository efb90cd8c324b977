package vtcore

import (
	"log"
	"os"
	"sync"
)

// diagLogger is the package's internal diagnostic logger. Its one user is
// composed-table exhaustion, a condition the grid model can't otherwise
// surface to a caller; malformed escape sequence parameters and SHM probe
// failures are not logged. It writes no more than once per kind per
// process, so a misbehaving stream can't flood stderr.
var diagLogger = log.New(os.Stderr, "vtcore: ", log.Ltime)

var (
	warnedMu    sync.Mutex
	warnedKinds = make(map[string]bool)
)

// warnOnce logs msg to the diagnostic logger the first time it's called
// with a given msg in this process, and silently does nothing on repeats.
func warnOnce(msg string) {
	warnedMu.Lock()
	defer warnedMu.Unlock()
	if warnedKinds[msg] {
		return
	}
	warnedKinds[msg] = true
	diagLogger.Println(msg)
}
