package tripapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/toota/tripsync/internal/model"
	"github.com/toota/tripsync/pkg/token"
)

// DefaultTimeout bounds a single API call when the caller's context
// carries no earlier deadline.
const DefaultTimeout = 10 * time.Second

// Config holds client configuration.
type Config struct {
	BaseURL     string
	Credentials token.Provider
	HTTPClient  *http.Client // optional, defaults to http.DefaultClient
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Client talks to the Toota trip service.
type Client struct {
	baseURL string
	creds   token.Provider
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a trip service client.
func New(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		creds:   cfg.Credentials,
		http:    cfg.HTTPClient,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// ListTrips fetches all trips visible to the current actor.
func (c *Client) ListTrips(ctx context.Context) ([]model.Trip, error) {
	var trips []model.Trip
	if err := c.do(ctx, http.MethodGet, "/api/trip/", "", nil, &trips, true); err != nil {
		return nil, err
	}
	return trips, nil
}

// ListCompleted fetches the actor's completed trips.
func (c *Client) ListCompleted(ctx context.Context) ([]model.Trip, error) {
	var trips []model.Trip
	if err := c.do(ctx, http.MethodGet, "/api/trip/completed/", "", nil, &trips, true); err != nil {
		return nil, err
	}
	return trips, nil
}

// GetTrip fetches a single trip snapshot by id.
func (c *Client) GetTrip(ctx context.Context, tripID string) (model.Trip, error) {
	var trip model.Trip
	path := fmt.Sprintf("/api/trip/%s/", url.PathEscape(tripID))
	if err := c.do(ctx, http.MethodGet, path, tripID, nil, &trip, true); err != nil {
		return model.Trip{}, err
	}
	return trip, nil
}

// TripStatus fetches only the current status of a trip. Cheaper than
// GetTrip for liveness displays.
func (c *Client) TripStatus(ctx context.Context, tripID string) (model.Status, error) {
	var body struct {
		Status string `json:"status"`
	}
	path := fmt.Sprintf("/api/trip/%s/status/", url.PathEscape(tripID))
	if err := c.do(ctx, http.MethodGet, path, tripID, nil, &body, true); err != nil {
		return "", err
	}
	status, err := model.ParseStatus(body.Status)
	if err != nil {
		return "", model.NewServerRejectedError(http.StatusOK, err.Error())
	}
	return status, nil
}

// UpdateStatus issues the status mutation for a trip and returns the
// updated snapshot. The caller is expected to have validated the
// transition already; the server remains authoritative.
func (c *Client) UpdateStatus(ctx context.Context, tripID string, status model.Status) (model.Trip, error) {
	var trip model.Trip
	path := fmt.Sprintf("/api/trip/%s/", url.PathEscape(tripID))
	payload := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPatch, path, tripID, payload, &trip, true); err != nil {
		return model.Trip{}, err
	}
	return trip, nil
}

// Login exchanges credentials for an access token at the role-specific
// login endpoint. The token is returned to the caller; this client does
// not store it.
func (c *Client) Login(ctx context.Context, role model.Role, email, password string) (string, error) {
	var path string
	switch role {
	case model.RoleDriver:
		path = "/api/driver/login/"
	case model.RoleRider:
		path = "/api/user/login/"
	default:
		return "", model.NewServerRejectedError(0, fmt.Sprintf("unknown role %q", role))
	}

	payload := map[string]string{"email": email, "password": password}
	var body struct {
		Access string `json:"access"`
	}
	if err := c.do(ctx, http.MethodPost, path, "", payload, &body, false); err != nil {
		return "", err
	}
	if body.Access == "" {
		return "", model.NewServerRejectedError(http.StatusOK, "login response carried no access token")
	}
	return body.Access, nil
}

// do runs one API call: marshal, authorize, send, classify, decode.
func (c *Client) do(ctx context.Context, method, path, tripID string, payload, out any, authed bool) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return model.NewNetworkError("encoding request body", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return model.NewNetworkError("building request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		if err := c.authorize(ctx, req); err != nil {
			return err
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return model.NewNetworkError(fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classify(resp, tripID)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return model.NewServerRejectedError(resp.StatusCode, fmt.Sprintf("decoding response: %v", err))
	}
	return nil
}

// authorize attaches the bearer token, failing before any network I/O
// when the token is missing or already expired.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.creds == nil {
		return model.NewUnauthorizedError("no credential provider configured")
	}

	tok, err := c.creds.AccessToken(ctx)
	if err != nil || tok == "" {
		return model.NewUnauthorizedError("no access token available")
	}

	// Unverified decode, expiry pre-flight only. A token the client cannot
	// decode is still sent; the server decides.
	if claims, err := token.Decode(tok); err == nil && claims.Expired(time.Now()) {
		return model.NewUnauthorizedError("access token expired")
	}

	req.Header.Set("Authorization", "Bearer "+tok)
	return nil
}

// classify maps a non-2xx response onto the error taxonomy. The body's
// Django-style detail field, when present, becomes log detail.
func (c *Client) classify(resp *http.Response, tripID string) error {
	detail := responseDetail(resp)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.NewUnauthorizedError(detail)
	case http.StatusNotFound:
		if tripID != "" {
			return model.NewUnknownTripError(tripID)
		}
		return model.NewServerRejectedError(resp.StatusCode, detail)
	default:
		return model.NewServerRejectedError(resp.StatusCode, detail)
	}
}

func responseDetail(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(raw) == 0 {
		return resp.Status
	}

	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return resp.Status
}
