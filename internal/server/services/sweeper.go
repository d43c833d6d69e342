package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/logging"
	"github.com/dmitrijs2005/tasklist/internal/server/metrics"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/repomanager"
)

const sweepTimeout = time.Minute

// SessionSweeper periodically drops expired sessions from every user.
type SessionSweeper struct {
	repomanager repomanager.RepositoryManager
	interval    time.Duration
	now         func() time.Time
	metrics     *metrics.Metrics
	logger      logging.Logger

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func NewSessionSweeper(m repomanager.RepositoryManager, interval time.Duration, mtr *metrics.Metrics, logger logging.Logger) *SessionSweeper {
	if logger == nil {
		logger = logging.Nop()
	}
	return &SessionSweeper{
		repomanager: m,
		interval:    interval,
		now:         time.Now,
		metrics:     mtr,
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval until ctx is
// done or Stop is called. A non-positive interval disables the sweeper.
func (w *SessionSweeper) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info(ctx, "session sweeper disabled")
		return
	}
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop ends the loop and waits for a sweep in progress.
func (w *SessionSweeper) Stop() {
	w.once.Do(func() { close(w.done) })
	w.wg.Wait()
}

func (w *SessionSweeper) run(ctx context.Context) {
	defer w.wg.Done()

	w.Sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Sweep(ctx)
		case <-w.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sweep removes the sessions expired at the current time and returns how many
// were removed.
func (w *SessionSweeper) Sweep(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sweepTimeout)
	defer cancel()

	n, err := w.repomanager.Users(w.repomanager.Conn()).DeleteExpiredSessions(ctx, w.now().Unix())
	if err != nil {
		w.logger.Error(ctx, "session sweep failed", "error", err)
		return 0
	}

	w.metrics.SessionsSwept(n)
	if n > 0 {
		w.logger.Info(ctx, "expired sessions removed", "count", n)
	}
	return n
}
