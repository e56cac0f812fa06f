// Package gateway is the sole mutation path for trip status.
//
// Every status change flows through Gateway.Request, which validates the
// transition against the lifecycle table and the driver-exclusivity
// invariant before spending a network call, and never mutates the local
// store optimistically: state changes only arrive via reconciliation of
// the server's authoritative snapshots.
package gateway

import (
	"context"
	"log/slog"
	"sync"

	"github.com/toota/tripsync/internal/lifecycle"
	"github.com/toota/tripsync/internal/model"
	"github.com/toota/tripsync/internal/store"
)

// StatusMutator is the slice of the trip service client the gateway
// needs.
type StatusMutator interface {
	UpdateStatus(ctx context.Context, tripID string, status model.Status) (model.Trip, error)
}

// Refresher triggers the out-of-band poll after a successful mutation.
type Refresher interface {
	RunOnce(ctx context.Context) error
}

// Config holds gateway configuration.
type Config struct {
	Store   *store.Store
	Mutator StatusMutator
	// Refresher is optional; without one the next scheduled poll picks
	// the change up.
	Refresher Refresher
	Logger    *slog.Logger
	// ActorID scopes the driver-exclusivity check to trips owned by this
	// driver. Empty means any IN_PROGRESS trip in the store conflicts,
	// which is correct for stores scoped to a single driver's board.
	ActorID string
}

// Gateway enforces the one-legal-transition-at-a-time rule.
type Gateway struct {
	store     *store.Store
	mutator   StatusMutator
	refresher Refresher
	logger    *slog.Logger
	actorID   string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New creates a gateway.
func New(cfg Config) *Gateway {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Gateway{
		store:     cfg.Store,
		mutator:   cfg.Mutator,
		refresher: cfg.Refresher,
		logger:    cfg.Logger,
		actorID:   cfg.ActorID,
		inFlight:  make(map[string]struct{}),
	}
}

// Request asks the server to move a trip to targetStatus on behalf of
// role. Client-side validation fails fast without network I/O; the
// server remains authoritative for anything that passes. On success the
// returned snapshot is the server's updated view and an immediate
// refresh is triggered so the store reconciles authoritative state. The
// store is never mutated directly.
//
// At most one request per trip id may be outstanding; concurrent calls
// for the same trip fail immediately with KindRequestInFlight.
func (g *Gateway) Request(ctx context.Context, tripID string, targetStatus model.Status, role model.Role) (model.Trip, error) {
	if !g.lock(tripID) {
		return model.Trip{}, model.NewRequestInFlightError(tripID)
	}
	defer g.unlock(tripID)

	current, ok := g.store.Get(tripID)
	if !ok {
		return model.Trip{}, model.NewUnknownTripError(tripID)
	}

	if err := lifecycle.Check(current.Status, targetStatus, role); err != nil {
		return model.Trip{}, err
	}

	// Client-side guard only; the server enforces this authoritatively.
	if targetStatus == model.StatusInProgress {
		if active, found := g.store.InProgressFor(g.actorID, tripID); found {
			return model.Trip{}, model.NewConcurrentTripError(active.ID)
		}
	}

	updated, err := g.mutator.UpdateStatus(ctx, tripID, targetStatus)
	if err != nil {
		g.logger.Warn("status mutation rejected",
			slog.String("trip_id", tripID),
			slog.String("target_status", string(targetStatus)),
			slog.String("error", err.Error()),
		)
		return model.Trip{}, err
	}

	g.logger.Info("trip status updated",
		slog.String("trip_id", tripID),
		slog.String("from", string(current.Status)),
		slog.String("to", string(targetStatus)),
	)

	// Reconcile authoritative state right away instead of waiting out the
	// interval. A refresh failure is not a request failure; the change
	// arrives with the next scheduled poll.
	if g.refresher != nil {
		if err := g.refresher.RunOnce(ctx); err != nil {
			g.logger.Warn("post-mutation refresh failed",
				slog.String("trip_id", tripID),
				slog.String("error", err.Error()),
			)
		}
	}

	return updated, nil
}

func (g *Gateway) lock(tripID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[tripID]; busy {
		return false
	}
	g.inFlight[tripID] = struct{}{}
	return true
}

func (g *Gateway) unlock(tripID string) {
	g.mu.Lock()
	delete(g.inFlight, tripID)
	g.mu.Unlock()
}
