// Package store holds the client-side cache of trip snapshots.
//
// The Store is the single source of truth for trip state on the client.
// Reconcile is the only writer; any number of view queries may read
// concurrently. Updates are ordered by the server-assigned Updated
// timestamp, never by arrival order, so a slow in-flight response can
// never overwrite a newer poll result.
package store

import (
	"sort"
	"sync"

	"github.com/toota/tripsync/internal/model"
)

// Store caches the last known server snapshot per trip id.
type Store struct {
	mu    sync.RWMutex
	trips map[string]model.Trip
}

// New creates an empty store.
func New() *Store {
	return &Store{trips: make(map[string]model.Trip)}
}

// Reconcile inserts or updates the entry for snapshot.ID. The snapshot is
// applied only when its Updated timestamp is not older than the stored
// one (last-writer-wins by server time). Returns true when the snapshot
// was applied. Reconcile is idempotent: re-applying the stored snapshot
// is a no-op that still reports true.
func (s *Store) Reconcile(snapshot model.Trip) bool {
	if snapshot.ID == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.trips[snapshot.ID]
	if ok && current.NewerThan(snapshot) {
		return false
	}
	s.trips[snapshot.ID] = snapshot
	return true
}

// Get returns the current snapshot for id. The second return value is
// false when the trip has never been fetched.
func (s *Store) Get(id string) (model.Trip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trips[id]
	return t, ok
}

// ListActive returns every non-terminal trip, optionally constrained to a
// single status, ordered by pickup time ascending with ties broken by id.
func (s *Store) ListActive(filter *model.Status) []model.Trip {
	s.mu.RLock()
	out := make([]model.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		if t.Status.Terminal() {
			continue
		}
		if filter != nil && t.Status != *filter {
			continue
		}
		out = append(out, t)
	}
	s.mu.RUnlock()

	sortByPickup(out)
	return out
}

// History returns every terminal trip, most recently updated first.
// Terminal entries leave the active working set but stay addressable for
// detail views.
func (s *Store) History() []model.Trip {
	s.mu.RLock()
	out := make([]model.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		if t.Status.Terminal() {
			out = append(out, t)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Updated.Equal(out[j].Updated) {
			return out[i].Updated.After(out[j].Updated)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// InProgressFor returns the trip currently IN_PROGRESS for the given
// driver, excluding excludeTripID. Used by the gateway to guard the
// one-active-trip-per-driver invariant. An empty driverID matches any
// driver, which covers stores scoped to a single driver's board.
func (s *Store) InProgressFor(driverID, excludeTripID string) (model.Trip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.trips {
		if t.Status != model.StatusInProgress || t.ID == excludeTripID {
			continue
		}
		if driverID == "" || (t.Driver != nil && t.Driver.ID == driverID) {
			return t, true
		}
	}
	return model.Trip{}, false
}

// Len returns the number of cached trips, terminal entries included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trips)
}

func sortByPickup(trips []model.Trip) {
	sort.Slice(trips, func(i, j int) bool {
		if !trips[i].PickupTime.Equal(trips[j].PickupTime) {
			return trips[i].PickupTime.Before(trips[j].PickupTime)
		}
		return trips[i].ID < trips[j].ID
	})
}
