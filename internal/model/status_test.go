package model

import (
	"testing"
	"time"
)

// ============================================================================
// Status Tests
// ============================================================================

func TestStatus_Valid_KnownStatuses(t *testing.T) {
	t.Parallel()

	for _, s := range AllStatuses {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
}

func TestStatus_Valid_UnknownStatus(t *testing.T) {
	t.Parallel()

	if Status("EN_ROUTE").Valid() {
		t.Error("expected EN_ROUTE to be invalid")
	}
	if Status("").Valid() {
		t.Error("expected empty status to be invalid")
	}
	if Status("requested").Valid() {
		t.Error("status values are case-sensitive, lowercase should be invalid")
	}
}

func TestStatus_Terminal(t *testing.T) {
	t.Parallel()

	terminal := map[Status]bool{
		StatusRequested:  false,
		StatusAccepted:   false,
		StatusInProgress: false,
		StatusCompleted:  true,
		StatusCancelled:  true,
	}

	for s, want := range terminal {
		if got := s.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, got, want)
		}
	}
}

func TestStatus_Message_CoversAllStatuses(t *testing.T) {
	t.Parallel()

	for _, s := range AllStatuses {
		if s.Message() == "" {
			t.Errorf("expected non-empty message for %s", s)
		}
	}

	// Unknown statuses still produce a generic message, never empty text.
	if Status("MATCHED").Message() == "" {
		t.Error("expected fallback message for unknown status")
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	s, err := ParseStatus("IN_PROGRESS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != StatusInProgress {
		t.Errorf("expected IN_PROGRESS, got %s", s)
	}

	if _, err := ParseStatus("DONE"); err == nil {
		t.Error("expected error for unknown status")
	}
}

// ============================================================================
// Role Tests
// ============================================================================

func TestRole_Valid(t *testing.T) {
	t.Parallel()

	if !RoleRider.Valid() || !RoleDriver.Valid() {
		t.Error("expected rider and driver to be valid roles")
	}
	if Role("admin").Valid() {
		t.Error("expected admin to be invalid")
	}
}

// ============================================================================
// Trip Tests
// ============================================================================

func TestTrip_Active(t *testing.T) {
	t.Parallel()

	trip := Trip{Status: StatusAccepted}
	if !trip.Active() {
		t.Error("ACCEPTED trip should be active")
	}

	trip.Status = StatusCancelled
	if trip.Active() {
		t.Error("CANCELLED trip should not be active")
	}
}

func TestTrip_NewerThan(t *testing.T) {
	t.Parallel()

	now := time.Now()
	older := Trip{Updated: now}
	newer := Trip{Updated: now.Add(time.Second)}

	if !newer.NewerThan(older) {
		t.Error("later timestamp should be newer")
	}
	if older.NewerThan(newer) {
		t.Error("earlier timestamp should not be newer")
	}
	if older.NewerThan(older) {
		t.Error("equal timestamps should not be newer")
	}
}
