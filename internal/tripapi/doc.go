// Package tripapi is the HTTP client for the Toota trip service.
//
// The client wraps the service's REST endpoints and translates every
// failure into the engine's error taxonomy before it crosses a package
// boundary: transport errors and timeouts become KindNetwork, 401/403
// become KindUnauthorized, 404 on a trip path becomes KindUnknownTrip,
// and any other non-2xx response becomes KindServerRejected.
//
// Authentication is a precondition: every authed call asks the injected
// token.Provider for a bearer token and fails with KindUnauthorized
// before any network I/O when the token is missing or its exp claim has
// passed. Each request carries an X-Request-ID for correlation.
package tripapi
