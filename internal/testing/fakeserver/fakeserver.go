// Package fakeserver runs an in-process Toota trip service for tests.
//
// The fake speaks the same wire format as the real service: bearer-token
// auth, snake_case trip snapshots, the list/detail/status endpoints, and
// the PATCH status mutation. Tests seed trips, script failures and
// latency, and inspect the PATCH bodies the engine sent.
package fakeserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/toota/tripsync/internal/model"
)

var signingSecret = []byte("fakeserver-secret")

// Patch records one status mutation received by the fake.
type Patch struct {
	TripID string
	Status model.Status
}

// Server is the fake trip service.
type Server struct {
	mu       sync.Mutex
	trips    map[string]model.Trip
	patches  []Patch
	latency  time.Duration
	failures int // remaining requests to fail
	failCode int
	clock    time.Time

	httpSrv *httptest.Server
}

// New starts a fake trip service. Callers must Close it.
func New() *Server {
	s := &Server{
		trips: make(map[string]model.Trip),
		clock: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/login/", s.handleLogin(model.RoleRider))
	mux.HandleFunc("POST /api/driver/login/", s.handleLogin(model.RoleDriver))
	mux.HandleFunc("GET /api/trip/{$}", s.withAuth(s.handleList))
	mux.HandleFunc("GET /api/trip/completed/{$}", s.withAuth(s.handleCompleted))
	mux.HandleFunc("GET /api/trip/{id}/{$}", s.withAuth(s.handleGet))
	mux.HandleFunc("GET /api/trip/{id}/status/{$}", s.withAuth(s.handleStatus))
	mux.HandleFunc("PATCH /api/trip/{id}/{$}", s.withAuth(s.handlePatch))

	s.httpSrv = httptest.NewServer(mux)
	return s
}

// URL returns the fake's base URL.
func (s *Server) URL() string {
	return s.httpSrv.URL
}

// Close shuts the fake down.
func (s *Server) Close() {
	s.httpSrv.Close()
}

// Token mints a signed bearer token the fake accepts.
func (s *Server) Token(userID string, role model.Role, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingSecret)
	if err != nil {
		panic(err)
	}
	return raw
}

// Seed inserts or replaces a trip. Missing ids and timestamps are filled
// in from the fake's clock.
func (s *Server) Seed(trip model.Trip) model.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()

	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}
	if trip.Updated.IsZero() {
		trip.Updated = s.tick()
	}
	if trip.Created.IsZero() {
		trip.Created = trip.Updated
	}
	s.trips[trip.ID] = trip
	return trip
}

// SetStatus directly moves a trip to the given status server-side,
// bumping its Updated timestamp. Panics on unknown ids; seeding bugs
// should fail loudly in tests.
func (s *Server) SetStatus(tripID string, status model.Status) model.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()

	trip, ok := s.trips[tripID]
	if !ok {
		panic("fakeserver: SetStatus on unknown trip " + tripID)
	}
	trip.Status = status
	trip.Updated = s.tick()
	s.trips[tripID] = trip
	return trip
}

// Trip returns the fake's current copy of a trip.
func (s *Server) Trip(tripID string) (model.Trip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[tripID]
	return t, ok
}

// SetLatency delays every subsequent request by d.
func (s *Server) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// FailNext makes the next n authed requests answer with the given HTTP
// status code.
func (s *Server) FailNext(n, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
	s.failCode = code
}

// Patches returns the status mutations received so far.
func (s *Server) Patches() []Patch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Patch, len(s.patches))
	copy(out, s.patches)
	return out
}

// tick advances the server clock; callers hold s.mu.
func (s *Server) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		latency := s.latency
		failing := s.failures > 0
		code := s.failCode
		if failing {
			s.failures--
		}
		s.mu.Unlock()

		if latency > 0 {
			time.Sleep(latency)
		}

		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) { return signingSecret, nil },
			jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type.")
			return
		}

		if failing {
			writeDetail(w, code, "scripted failure")
			return
		}

		next(w, r)
	}
}

func (s *Server) handleLogin(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
			writeDetail(w, http.StatusBadRequest, "email and password are required")
			return
		}
		if body.Password == "wrong" {
			writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access": s.Token(body.Email, role, time.Hour)})
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]model.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		out = append(out, t)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCompleted(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]model.Trip, 0)
	for _, t := range s.trips {
		if t.Status == model.StatusCompleted {
			out = append(out, t)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	trip, ok := s.trips[r.PathValue("id")]
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Trip not found.")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	trip, ok := s.trips[r.PathValue("id")]
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Trip not found.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     trip.ID,
		"status": trip.Status,
	})
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := model.ParseStatus(body.Status)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	trip, ok := s.trips[r.PathValue("id")]
	if !ok {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Trip not found.")
		return
	}

	trip.Status = status
	trip.Updated = s.tick()
	if status == model.StatusAccepted && trip.Driver == nil {
		trip.Driver = &model.DriverRef{ID: "driver-fake", FullName: "Fake Driver"}
	}
	s.trips[trip.ID] = trip
	s.patches = append(s.patches, Patch{TripID: trip.ID, Status: status})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, trip)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}
