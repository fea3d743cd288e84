package registry

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Rescanner batches companion-source changes behind a quiescence window
// so a burst of file events triggers one rescan. Deletions bypass the
// window: a removed component must disappear from lookups immediately.
type Rescanner struct {
	registry *Registry
	delay    time.Duration

	// afterFunc is swapped out by tests for a manual clock.
	afterFunc func(time.Duration, func()) *time.Timer

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
}

func NewRescanner(registry *Registry, delay time.Duration) *Rescanner {
	return &Rescanner{
		registry:  registry,
		delay:     delay,
		afterFunc: time.AfterFunc,
		pending:   make(map[string]bool),
	}
}

// Enqueue marks a source path dirty and restarts the quiescence window.
func (r *Rescanner) Enqueue(ctx context.Context, sourcePath string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending[sourcePath] = true
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = r.afterFunc(r.delay, func() {
		r.Flush(ctx)
	})
}

// Remove applies a deletion synchronously and forgets any pending change
// for the same path.
func (r *Rescanner) Remove(ctx context.Context, sourcePath string) {
	r.mu.Lock()
	delete(r.pending, sourcePath)
	r.mu.Unlock()

	r.registry.Remove(sourcePath)
	zerolog.Ctx(ctx).Debug().Str("source", sourcePath).Msg("component removed")
}

// Flush rescans everything pending. It runs from the timer but may be
// called directly to force the batch through.
func (r *Rescanner) Flush(ctx context.Context) {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	paths := make([]string, 0, len(r.pending))
	for p := range r.pending {
		paths = append(paths, p)
	}
	r.pending = make(map[string]bool)
	r.mu.Unlock()

	for _, p := range paths {
		if err := r.registry.ScanFile(ctx, p); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("source", p).Msg("rescan failed")
		}
	}
}

// Stop cancels any armed timer without flushing.
func (r *Rescanner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
