package render

import "time"

// DamageConsumer receives the set of rows a render pass touched, so a
// caller can translate them into whatever damage-tracking protocol its
// display server uses (e.g. wl_surface_damage_buffer).
type DamageConsumer interface {
	ConsumeDamage(rows []int)
}

// FrameClock paces the render loop. A real implementation ties this to a
// compositor's frame callback (wl_surface.frame); a test or headless
// implementation can tie it to a plain ticker.
type FrameClock interface {
	// NextFrame blocks until the next frame should be rendered, or the
	// given duration elapses as a fallback, whichever comes first.
	NextFrame(timeout time.Duration) <-chan struct{}
}

// Reaper watches a child process (the shell running under the terminal)
// and reports when it exits, so a caller can tear down the render loop
// and the pseudoterminal together instead of leaking either.
type Reaper interface {
	// Wait blocks until the watched process exits and returns its exit
	// code.
	Wait() (int, error)
}

// Multiplexer waits on multiple file descriptors (typically the
// pseudoterminal master and a signal self-pipe) and reports which became
// ready.
type Multiplexer interface {
	// Wait blocks until at least one registered descriptor is ready for
	// reading and returns the ready descriptors.
	Wait() ([]int, error)
}
