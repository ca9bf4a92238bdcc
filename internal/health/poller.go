// Package health waits for the backend to become ready. Hosted backends
// sleep when idle, so the first requests after a pause can take minutes.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/spigell/interview-prep/internal/utils"
	"go.uber.org/zap"
)

type Status string

const (
	StatusSleeping Status = "sleeping"
	StatusWaking   Status = "waking"
	StatusReady    Status = "ready"
	StatusTimeout  Status = "timeout"
)

const (
	DefaultInterval       = 2 * time.Second
	DefaultAttemptTimeout = 5 * time.Second
	DefaultBudget         = 5 * time.Minute

	elapsedRefresh = time.Second
)

// Pinger performs one liveness check. Any error means not ready yet.
type Pinger interface {
	Health(ctx context.Context) error
}

type Config struct {
	Interval       time.Duration `mapstructure:"interval"`
	AttemptTimeout time.Duration `mapstructure:"attempt-timeout"`
	Budget         time.Duration `mapstructure:"budget"`
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = DefaultAttemptTimeout
	}
	if c.Budget <= 0 {
		c.Budget = DefaultBudget
	}
	return c
}

// Snapshot is an immutable view of the poller state.
type Snapshot struct {
	Status   Status
	Attempts int
	// Elapsed is refreshed once per second while waking.
	Elapsed time.Duration
}

type Poller struct {
	pinger Pinger
	cfg    Config
	logger *zap.Logger

	// OnChange, when set, receives a snapshot after every state change and
	// every elapsed refresh. It must not block.
	OnChange func(Snapshot)

	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error

	mu        sync.Mutex
	status    Status
	attempts  int
	startedAt time.Time
	elapsed   time.Duration
	retry     chan struct{}
}

func New(pinger Pinger, cfg Config, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Poller{
		pinger: pinger,
		cfg:    cfg.withDefaults(),
		logger: logger,
		now:    time.Now,
		wait:   utils.WaitFor,
		status: StatusSleeping,
		retry:  make(chan struct{}, 1),
	}
}

func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Poller) snapshotLocked() Snapshot {
	return Snapshot{Status: p.status, Attempts: p.attempts, Elapsed: p.elapsed}
}

// Retry restarts polling after a timeout. It is a no-op in any other state.
func (p *Poller) Retry() {
	p.mu.Lock()
	timedOut := p.status == StatusTimeout
	p.mu.Unlock()

	if !timedOut {
		return
	}

	select {
	case p.retry <- struct{}{}:
	default:
	}
}

// Run polls until the server is ready or ctx is done. After the budget is
// exhausted it parks in StatusTimeout and makes no requests until Retry is
// called.
func (p *Poller) Run(ctx context.Context) error {
	if p.Snapshot().Status == StatusReady {
		return nil
	}

	for {
		if p.poll(ctx) {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		p.logger.Warn("server did not become ready in time",
			zap.Duration("budget", p.cfg.Budget),
			zap.Int("attempts", p.Snapshot().Attempts),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.retry:
			p.logger.Info("retrying health check")
		}
	}
}

// poll runs one waking cycle. It reports true when the server became ready.
func (p *Poller) poll(ctx context.Context) bool {
	p.transition(StatusWaking, true)

	tickCtx, stopTicker := context.WithCancel(ctx)
	defer stopTicker()
	if p.OnChange != nil {
		go p.refreshElapsed(tickCtx)
	}

	for {
		if ctx.Err() != nil {
			return false
		}

		if p.exhausted() {
			p.transition(StatusTimeout, false)
			return false
		}

		if p.attempt(ctx) {
			p.transition(StatusReady, false)
			p.logger.Info("server is ready", zap.Int("attempts", p.Snapshot().Attempts))
			return true
		}

		if p.exhausted() {
			p.transition(StatusTimeout, false)
			return false
		}

		if err := p.wait(ctx, p.cfg.Interval); err != nil {
			return false
		}
	}
}

func (p *Poller) attempt(ctx context.Context) bool {
	p.mu.Lock()
	p.attempts++
	attempt := p.attempts
	p.mu.Unlock()

	attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.AttemptTimeout)
	defer cancel()

	if err := p.pinger.Health(attemptCtx); err != nil {
		p.logger.Debug("health check failed", zap.Int("attempt", attempt), zap.Error(err))
		return false
	}

	return true
}

func (p *Poller) exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elapsed = p.now().Sub(p.startedAt)
	return p.elapsed >= p.cfg.Budget
}

func (p *Poller) transition(status Status, reset bool) {
	p.mu.Lock()
	if reset {
		p.startedAt = p.now()
		p.elapsed = 0
		p.attempts = 0
	}
	p.status = status
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.logger.Debug("health status changed", zap.String("status", string(status)))
	p.notify(snap)
}

func (p *Poller) refreshElapsed(ctx context.Context) {
	for {
		if err := utils.WaitFor(ctx, elapsedRefresh); err != nil {
			return
		}

		p.mu.Lock()
		if p.status != StatusWaking {
			p.mu.Unlock()
			return
		}
		// Whole seconds only; the display does not need more.
		p.elapsed = p.now().Sub(p.startedAt).Truncate(time.Second)
		snap := p.snapshotLocked()
		p.mu.Unlock()

		p.notify(snap)
	}
}

func (p *Poller) notify(snap Snapshot) {
	if p.OnChange != nil {
		p.OnChange(snap)
	}
}
