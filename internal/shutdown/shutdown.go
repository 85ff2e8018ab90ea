// Package shutdown is the external collaborator from spec §4.7: it waits
// for a POSIX termination signal or a programmatic request and then runs
// a caller-supplied teardown to completion, exactly once.
package shutdown

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Supervisor waits for SIGHUP, SIGTERM, SIGINT, or SIGQUIT — or an
// explicit call to Trigger — and then runs its teardown function once.
// Idempotent: the first signal (or Trigger call) wins; later ones are
// ignored.
type Supervisor struct {
	once     sync.Once
	triggerC chan struct{}
}

// New returns a Supervisor ready to Wait.
func New() *Supervisor {
	return &Supervisor{triggerC: make(chan struct{}, 1)}
}

// Trigger requests shutdown programmatically, as an alternative to an OS
// signal. Safe to call multiple times or concurrently with a delivered
// signal; only the first call has any effect.
func (s *Supervisor) Trigger() {
	s.once.Do(func() { close(s.triggerC) })
}

// Wait blocks until a termination signal arrives or Trigger is called,
// then runs teardown to completion and returns its result.
func Wait[R any](ctx context.Context, s *Supervisor, teardown func(context.Context) R) R {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Printf("rmkfs: received signal %v, shutting down", sig)
	case <-s.triggerC:
		log.Printf("rmkfs: received shutdown request")
	case <-ctx.Done():
		log.Printf("rmkfs: context cancelled, shutting down")
	}

	return teardown(ctx)
}
