// Package lifecycle defines the trip status state machine.
//
// A trip moves along REQUESTED -> ACCEPTED -> IN_PROGRESS -> COMPLETED,
// driven by the driver, with CANCELLED reachable from any non-terminal
// state by either role. COMPLETED and CANCELLED are terminal. The table
// here gates UI affordances and gateway requests alike; the server remains
// the final authority on every transition.
package lifecycle

import "github.com/toota/tripsync/internal/model"

// transition is a single allowed edge in the lifecycle graph.
type transition struct {
	from  model.Status
	to    model.Status
	roles []model.Role
}

var transitions = []transition{
	// Forward path, driver-initiated.
	{from: model.StatusRequested, to: model.StatusAccepted, roles: []model.Role{model.RoleDriver}},
	{from: model.StatusAccepted, to: model.StatusInProgress, roles: []model.Role{model.RoleDriver}},
	{from: model.StatusInProgress, to: model.StatusCompleted, roles: []model.Role{model.RoleDriver}},

	// Cancellation, either role, from any non-terminal state.
	{from: model.StatusRequested, to: model.StatusCancelled, roles: []model.Role{model.RoleRider, model.RoleDriver}},
	{from: model.StatusAccepted, to: model.StatusCancelled, roles: []model.Role{model.RoleRider, model.RoleDriver}},
	{from: model.StatusInProgress, to: model.StatusCancelled, roles: []model.Role{model.RoleRider, model.RoleDriver}},
}

// IsLegal reports whether role may move a trip from one status to another.
// It is pure and total: any triple outside the table, including unknown
// statuses or roles, is simply not legal.
func IsLegal(from, to model.Status, role model.Role) bool {
	for _, tr := range transitions {
		if tr.from != from || tr.to != to {
			continue
		}
		for _, r := range tr.roles {
			if r == role {
				return true
			}
		}
	}
	return false
}

// Check validates a transition and returns a typed error when it is not
// allowed. Validation never reaches the network layer.
func Check(from, to model.Status, role model.Role) error {
	if IsLegal(from, to, role) {
		return nil
	}
	return model.NewIllegalTransitionError(from, to, role)
}

// Targets returns the statuses role may legally move a trip to from the
// given status, in table order. Presentation layers use this to decide
// which action buttons to render.
func Targets(from model.Status, role model.Role) []model.Status {
	var out []model.Status
	for _, tr := range transitions {
		if tr.from != from {
			continue
		}
		for _, r := range tr.roles {
			if r == role {
				out = append(out, tr.to)
				break
			}
		}
	}
	return out
}
