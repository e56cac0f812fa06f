package model

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the sync engine can surface. HTTP status
// codes and transport errors are classification input only; presentation
// layers render the Message for a kind, never the raw cause.
type Kind int

const (
	// KindNetwork covers transport failures and timeouts.
	KindNetwork Kind = iota + 1
	// KindUnauthorized covers a missing, expired, or rejected bearer token.
	KindUnauthorized
	// KindIllegalTransition is a lifecycle violation caught client-side.
	KindIllegalTransition
	// KindConcurrentTrip is a violation of driver exclusivity: another trip
	// owned by the actor is already IN_PROGRESS.
	KindConcurrentTrip
	// KindRequestInFlight means a mutation for the same trip is outstanding.
	KindRequestInFlight
	// KindUnknownTrip means the trip is absent from the local store or the
	// server no longer knows it.
	KindUnknownTrip
	// KindServerRejected covers 4xx/5xx responses the client cannot
	// interpret further.
	KindServerRejected
)

// Message returns the user-visible category for a kind.
func (k Kind) Message() string {
	switch k {
	case KindNetwork:
		return "Could not reach the trip service. Check your connection and try again."
	case KindUnauthorized:
		return "Your session has expired. Please log in again."
	case KindIllegalTransition:
		return "That status change is not allowed for this trip."
	case KindConcurrentTrip:
		return "Complete your current trip before starting a new one."
	case KindRequestInFlight:
		return "A change for this trip is already being processed."
	case KindUnknownTrip:
		return "This trip could not be found."
	case KindServerRejected:
		return "The trip service rejected the request. Please try again."
	}
	return "Something went wrong. Please try again."
}

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network_failure"
	case KindUnauthorized:
		return "unauthorized"
	case KindIllegalTransition:
		return "illegal_transition"
	case KindConcurrentTrip:
		return "concurrent_trip_conflict"
	case KindRequestInFlight:
		return "request_in_flight"
	case KindUnknownTrip:
		return "stale_or_unknown_trip"
	case KindServerRejected:
		return "server_rejected"
	}
	return "unknown"
}

// SyncError is the one error type the engine returns across package
// boundaries. Detail is for logs; presentation shows Kind.Message().
type SyncError struct {
	Kind       Kind
	Detail     string
	HTTPStatus int   // zero when no response was received
	Err        error // wrapped cause, may be nil
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *SyncError) Unwrap() error {
	return e.Err
}

// Message returns the user-visible text for the failure.
func (e *SyncError) Message() string {
	return e.Kind.Message()
}

// KindOf extracts the Kind from err, or zero if err is not a SyncError.
func KindOf(err error) Kind {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// Common error constructors

func NewNetworkError(detail string, cause error) *SyncError {
	return &SyncError{Kind: KindNetwork, Detail: detail, Err: cause}
}

func NewUnauthorizedError(detail string) *SyncError {
	return &SyncError{Kind: KindUnauthorized, Detail: detail}
}

func NewIllegalTransitionError(from, to Status, role Role) *SyncError {
	return &SyncError{
		Kind:   KindIllegalTransition,
		Detail: fmt.Sprintf("%s may not move a trip from %s to %s", role, from, to),
	}
}

func NewConcurrentTripError(activeTripID string) *SyncError {
	return &SyncError{
		Kind:   KindConcurrentTrip,
		Detail: fmt.Sprintf("trip %s is already in progress", activeTripID),
	}
}

func NewRequestInFlightError(tripID string) *SyncError {
	return &SyncError{
		Kind:   KindRequestInFlight,
		Detail: fmt.Sprintf("a status change for trip %s is outstanding", tripID),
	}
}

func NewUnknownTripError(tripID string) *SyncError {
	return &SyncError{Kind: KindUnknownTrip, Detail: fmt.Sprintf("trip %s is not known", tripID)}
}

func NewServerRejectedError(httpStatus int, detail string) *SyncError {
	return &SyncError{Kind: KindServerRejected, Detail: detail, HTTPStatus: httpStatus}
}
