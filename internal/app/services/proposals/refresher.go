package proposals

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/filmdao/daoclient/internal/app/system"
	"github.com/filmdao/daoclient/pkg/logger"
)

var _ system.Service = (*Refresher)(nil)

// Refresher keeps the store loosely synchronized with the ledger between
// user-triggered refreshes. The store stays eventually consistent; the
// refresher only narrows the window.
type Refresher struct {
	store    *Store
	log      *logger.Logger
	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// ParseSchedule converts a cron "@every" spec ("@every 30s") into the
// refresh interval.
func ParseSchedule(spec string) (time.Duration, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return 0, fmt.Errorf("parse refresh schedule: %w", err)
	}
	every, ok := sched.(cron.ConstantDelaySchedule)
	if !ok {
		return 0, fmt.Errorf("refresh schedule must be an @every spec, got %q", spec)
	}
	return every.Delay, nil
}

// NewRefresher creates a lifecycle-managed background refresher.
func NewRefresher(store *Store, interval time.Duration, log *logger.Logger) *Refresher {
	if log == nil {
		log = logger.NewDefault("proposal-refresher")
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Refresher{
		store:    store,
		log:      log,
		interval: interval,
	}
}

func (r *Refresher) Name() string { return "proposal-refresher" }

func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if err := r.store.Refresh(runCtx); err != nil {
					r.log.WithError(err).Warn("background refresh failed")
				}
			}
		}
	}()
	return nil
}

func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.cancel()
	r.running = false
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
