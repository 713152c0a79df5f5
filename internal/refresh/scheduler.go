package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs a tick function on a fixed period from a single dedicated
// goroutine, so ticks can never overlap. A tick error is logged and the
// loop keeps going; only Stop ends it.
type Scheduler struct {
	interval time.Duration
	fn       func(context.Context) error

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewScheduler(interval time.Duration, fn func(context.Context) error) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		interval: interval,
		fn:       fn,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start launches the tick loop. The first tick runs immediately. Calling
// Start more than once is a no-op.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

func (s *Scheduler) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	if err := s.fn(s.ctx); err != nil && s.ctx.Err() == nil {
		slog.Error("refresh tick failed", "error", err)
	}
}

// Stop prevents further ticks and waits for any in-flight tick to finish.
// It is idempotent and safe to call even if Start never ran.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		started := true
		s.startOnce.Do(func() {
			// Start never ran; nothing to wait for.
			started = false
			close(s.done)
		})
		if started {
			<-s.done
		}
	})
}
