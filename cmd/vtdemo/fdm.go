package main

import (
	"golang.org/x/sys/unix"

	"github.com/wl-term/vtcore/render"
)

// ptyMultiplexer waits on the pseudoterminal master descriptor (and, via
// a self-pipe, an out-of-band wake signal) using a single unix.Poll call,
// the way a real compositor client's event loop waits on both the
// Wayland display fd and the pty simultaneously.
type ptyMultiplexer struct {
	ptyFD int
	wakeR int
	wakeW int
}

// newPtyMultiplexer builds a multiplexer watching ptyFD plus an internal
// self-pipe that wake() writes to, so a caller can unblock Wait from
// another goroutine (e.g. to react to a signal) without closing ptyFD.
func newPtyMultiplexer(ptyFD int) (*ptyMultiplexer, error) {
	fds := make([]int, 2)
	if err := unix.Pipe(fds); err != nil {
		return nil, err
	}
	return &ptyMultiplexer{ptyFD: ptyFD, wakeR: fds[0], wakeW: fds[1]}, nil
}

// wake unblocks a pending Wait call.
func (m *ptyMultiplexer) wake() {
	unix.Write(m.wakeW, []byte{0})
}

// Wait blocks until the pty or the wake pipe has data ready, and returns
// whichever descriptors are ready.
func (m *ptyMultiplexer) Wait() ([]int, error) {
	fds := []unix.PollFd{
		{Fd: int32(m.ptyFD), Events: unix.POLLIN},
		{Fd: int32(m.wakeR), Events: unix.POLLIN},
	}

	for {
		n, err := unix.Poll(fds, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			continue
		}
		break
	}

	var ready []int
	if fds[0].Revents&unix.POLLIN != 0 {
		ready = append(ready, m.ptyFD)
	}
	if fds[1].Revents&unix.POLLIN != 0 {
		var drain [64]byte
		unix.Read(m.wakeR, drain[:])
		ready = append(ready, m.wakeR)
	}
	return ready, nil
}

func (m *ptyMultiplexer) Close() {
	unix.Close(m.wakeR)
	unix.Close(m.wakeW)
}

var _ render.Multiplexer = (*ptyMultiplexer)(nil)
