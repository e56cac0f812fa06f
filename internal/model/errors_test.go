package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// ============================================================================
// Error() Interface Tests
// ============================================================================

func TestSyncError_Error_ContainsKindAndDetail(t *testing.T) {
	t.Parallel()

	err := NewUnknownTripError("trip-42")

	msg := err.Error()
	if !strings.Contains(msg, "stale_or_unknown_trip") {
		t.Errorf("error message should contain the kind, got: %s", msg)
	}
	if !strings.Contains(msg, "trip-42") {
		t.Errorf("error message should contain the trip id, got: %s", msg)
	}
}

func TestSyncError_Error_EmptyDetail(t *testing.T) {
	t.Parallel()

	err := &SyncError{Kind: KindNetwork}

	if err.Error() != "network_failure" {
		t.Errorf("expected bare kind string, got: %s", err.Error())
	}
}

func TestSyncError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := NewNetworkError("GET /api/trip/", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

// ============================================================================
// Classification Tests
// ============================================================================

func TestKindOf_SyncError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want Kind
	}{
		{NewNetworkError("timeout", nil), KindNetwork},
		{NewUnauthorizedError("no token"), KindUnauthorized},
		{NewIllegalTransitionError(StatusRequested, StatusCompleted, RoleDriver), KindIllegalTransition},
		{NewConcurrentTripError("trip-1"), KindConcurrentTrip},
		{NewRequestInFlightError("trip-1"), KindRequestInFlight},
		{NewUnknownTripError("trip-9"), KindUnknownTrip},
		{NewServerRejectedError(500, "boom"), KindServerRejected},
	}

	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Errorf("KindOf(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestKindOf_WrappedSyncError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("request failed: %w", NewUnauthorizedError("expired"))

	if KindOf(wrapped) != KindUnauthorized {
		t.Error("expected KindOf to see through fmt.Errorf wrapping")
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	t.Parallel()

	if KindOf(errors.New("plain")) != 0 {
		t.Error("expected zero kind for non-SyncError")
	}
	if KindOf(nil) != 0 {
		t.Error("expected zero kind for nil")
	}
}

// ============================================================================
// Message Tests
// ============================================================================

func TestKind_Message_NeverLeaksTransportDetail(t *testing.T) {
	t.Parallel()

	err := NewServerRejectedError(502, "upstream timeout from nginx")

	if strings.Contains(err.Message(), "502") || strings.Contains(err.Message(), "nginx") {
		t.Errorf("user-visible message must not leak transport detail, got: %s", err.Message())
	}
}

func TestKind_Message_AllKindsNonEmpty(t *testing.T) {
	t.Parallel()

	kinds := []Kind{
		KindNetwork, KindUnauthorized, KindIllegalTransition,
		KindConcurrentTrip, KindRequestInFlight, KindUnknownTrip, KindServerRejected,
	}
	for _, k := range kinds {
		if k.Message() == "" {
			t.Errorf("expected non-empty message for kind %v", k)
		}
	}
}
