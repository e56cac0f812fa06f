package model

import "fmt"

// Status is the lifecycle state of a Trip as reported by the trip service.
type Status string

const (
	StatusRequested  Status = "REQUESTED"
	StatusAccepted   Status = "ACCEPTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// AllStatuses lists every valid status, in lifecycle order.
var AllStatuses = []Status{
	StatusRequested,
	StatusAccepted,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// Valid returns true if s is one of the five known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal returns true if no further transitions exist from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Message returns the rider-facing display copy for a status.
// Presentation layers show this text instead of the raw status value.
func (s Status) Message() string {
	switch s {
	case StatusRequested:
		return "Waiting for a driver to accept your trip."
	case StatusAccepted:
		return "A driver has accepted your trip and is on the way."
	case StatusInProgress:
		return "Your trip is in progress."
	case StatusCompleted:
		return "Your trip is complete."
	case StatusCancelled:
		return "This trip was cancelled."
	}
	return "Updating trip details..."
}

// ParseStatus converts a raw string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown trip status %q", raw)
	}
	return s, nil
}

// Role identifies which side of a trip an actor is on.
type Role string

const (
	RoleRider  Role = "rider"
	RoleDriver Role = "driver"
)

// Valid returns true if r is a known role.
func (r Role) Valid() bool {
	return r == RoleRider || r == RoleDriver
}
