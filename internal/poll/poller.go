package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/toota/tripsync/internal/model"
	"github.com/toota/tripsync/internal/store"
)

// Default refresh intervals. Single-trip tracking polls tighter than list
// views to balance freshness against load.
const (
	DefaultTripInterval = 5 * time.Second
	DefaultListInterval = 30 * time.Second
	DefaultTickTimeout  = 10 * time.Second
)

// Target selects what a poller refreshes: the actor's whole trip list, or
// one trip by id.
type Target struct {
	tripID string
}

// ListTarget refreshes all trips visible to the current actor.
func ListTarget() Target {
	return Target{}
}

// TripTarget refreshes a single trip.
func TripTarget(tripID string) Target {
	return Target{tripID: tripID}
}

// IsList reports whether the target is the full list.
func (t Target) IsList() bool {
	return t.tripID == ""
}

// Fetcher is the slice of the trip service client a poller needs.
type Fetcher interface {
	ListTrips(ctx context.Context) ([]model.Trip, error)
	GetTrip(ctx context.Context, tripID string) (model.Trip, error)
}

// Config holds poller configuration.
type Config struct {
	Target  Target
	Fetcher Fetcher
	Store   *store.Store
	// Interval between ticks; defaults per target kind.
	Interval time.Duration
	// TickTimeout bounds a single fetch.
	TickTimeout time.Duration
	Logger      *slog.Logger
	// OnError is invoked after each failed tick. Optional.
	OnError func(error)
	// OnApply is invoked for each snapshot the store accepted. Optional.
	OnApply func(model.Trip)
}

// Poller keeps the store fresh by periodically fetching its target.
//
// At most one fetch is in flight at a time; a tick that fires during a
// fetch is skipped. A failed tick is reported and the schedule carries
// on. Stopping discards the result of any in-flight fetch: every Start
// issues a new generation token and reconciliation only applies while
// the fetch's generation is still current.
type Poller struct {
	target      Target
	fetcher     Fetcher
	store       *store.Store
	interval    time.Duration
	tickTimeout time.Duration
	logger      *slog.Logger
	onError     func(error)
	onApply     func(model.Trip)

	mu         sync.Mutex
	running    bool
	generation uint64
	inFlight   bool
	lastErr    error
	stopCh     chan struct{}
	nudgeCh    chan struct{}
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// New creates a poller.
func New(cfg Config) *Poller {
	if cfg.Interval == 0 {
		if cfg.Target.IsList() {
			cfg.Interval = DefaultListInterval
		} else {
			cfg.Interval = DefaultTripInterval
		}
	}
	if cfg.TickTimeout == 0 {
		cfg.TickTimeout = DefaultTickTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Poller{
		target:      cfg.Target,
		fetcher:     cfg.Fetcher,
		store:       cfg.Store,
		interval:    cfg.Interval,
		tickTimeout: cfg.TickTimeout,
		logger:      cfg.Logger,
		onError:     cfg.OnError,
		onApply:     cfg.OnApply,
	}
}

// Start begins the schedule. Calling Start on a running poller is a
// no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.generation++
	gen := p.generation
	p.stopCh = make(chan struct{})
	p.nudgeCh = make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx, gen, p.stopCh, p.nudgeCh)
	p.logger.Info("poller started",
		slog.Bool("list", p.target.IsList()),
		slog.String("trip_id", p.target.tripID),
		slog.Duration("interval", p.interval),
		slog.Uint64("generation", gen),
	)
}

// Stop cancels the schedule. Safe to call while a fetch is outstanding;
// that fetch's result is discarded, never reconciled.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("poller stopped")
}

// IsRunning reports whether the schedule is active.
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// LastError returns the most recent tick failure, cleared by the next
// successful tick. This is the non-throwing side channel for poll
// failures.
func (p *Poller) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Nudge requests an immediate tick without waiting for the interval.
// No-op when the poller is not running or a nudge is already pending.
func (p *Poller) Nudge() {
	p.mu.Lock()
	ch := p.nudgeCh
	running := p.running
	p.mu.Unlock()

	if !running {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// RunOnce fetches the target immediately and reconciles the result,
// independent of the schedule. The gateway uses this for its
// out-of-band refresh after a successful mutation. When a scheduled
// fetch is already in flight its snapshot may predate the mutation, so
// RunOnce queues a nudge instead of fetching twice; the staleness guard
// makes either ordering converge.
func (p *Poller) RunOnce(ctx context.Context) error {
	if !p.acquire() {
		p.Nudge()
		return nil
	}
	defer p.release()
	return p.fetchAndReconcile(ctx, outOfBand)
}

// run is the schedule loop.
func (p *Poller) run(ctx context.Context, gen uint64, stopCh, nudgeCh chan struct{}) {
	defer p.wg.Done()

	p.tick(ctx, gen)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.tick(ctx, gen)
		case <-nudgeCh:
			p.tick(ctx, gen)
		case <-stopCh:
			return
		}
	}
}

// tick runs one fetch unless another is still outstanding.
func (p *Poller) tick(ctx context.Context, gen uint64) {
	if !p.acquire() {
		p.logger.Debug("tick skipped, fetch in flight", slog.Uint64("generation", gen))
		return
	}
	defer p.release()

	tctx, cancel := context.WithTimeout(ctx, p.tickTimeout)
	defer cancel()

	if err := p.fetchAndReconcile(tctx, gen); err != nil {
		if ctx.Err() != nil {
			// The schedule was stopped mid-fetch; not a failure.
			return
		}
		p.recordError(err)
		p.logger.Warn("poll tick failed",
			slog.Uint64("generation", gen),
			slog.String("error", err.Error()),
		)
		if p.onError != nil {
			p.onError(err)
		}
		return
	}
	p.clearError()
}

// outOfBand marks a fetch that did not originate from the schedule.
// Out-of-band results always reconcile; the store's staleness guard
// makes that safe regardless of ordering.
const outOfBand uint64 = 0

// fetchAndReconcile fetches the target and merges the snapshots, unless
// the generation went stale while the fetch was in the air.
func (p *Poller) fetchAndReconcile(ctx context.Context, gen uint64) error {
	var snapshots []model.Trip
	if p.target.IsList() {
		trips, err := p.fetcher.ListTrips(ctx)
		if err != nil {
			return err
		}
		snapshots = trips
	} else {
		trip, err := p.fetcher.GetTrip(ctx, p.target.tripID)
		if err != nil {
			return err
		}
		snapshots = []model.Trip{trip}
	}

	if !p.generationCurrent(gen) {
		p.logger.Debug("discarding snapshots from stale generation", slog.Uint64("generation", gen))
		return nil
	}

	for _, snap := range snapshots {
		if p.store.Reconcile(snap) && p.onApply != nil {
			p.onApply(snap)
		}
	}
	return nil
}

func (p *Poller) acquire() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight {
		return false
	}
	p.inFlight = true
	return true
}

func (p *Poller) release() {
	p.mu.Lock()
	p.inFlight = false
	p.mu.Unlock()
}

// generationCurrent reports whether gen may still write to the store.
// A scheduled fetch whose generation was orphaned by Stop or a later
// Start must discard its result.
func (p *Poller) generationCurrent(gen uint64) bool {
	if gen == outOfBand {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running && gen == p.generation
}

func (p *Poller) recordError(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

func (p *Poller) clearError() {
	p.mu.Lock()
	p.lastErr = nil
	p.mu.Unlock()
}
