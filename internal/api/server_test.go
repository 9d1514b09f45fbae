package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/talgya/waggle/internal/engine"
)

func testServer() *Server {
	return &Server{
		Eng:      engine.New(engine.Config{Seed: 1, InitialPopulation: 3, FlowerCount: 2}),
		AdminKey: "secret",
	}
}

func TestHandleStatus(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code: got %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["population"].(float64) != 3 {
		t.Fatalf("population: got %v, want 3", body["population"])
	}
	if body["conditions"] == "" {
		t.Fatal("missing conditions")
	}
}

func TestHandleBeesListAndAdd(t *testing.T) {
	s := testServer()

	rec := httptest.NewRecorder()
	s.handleBees(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bees", nil))
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d bees, want 3", len(list))
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bees", strings.NewReader(`{"x": 120, "y": 80}`))
	s.handleBees(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("add bee: got %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handleBees(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bees", nil))
	list = nil
	json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list) != 4 {
		t.Fatalf("after add: got %d bees, want 4", len(list))
	}
}

func TestHandleBeeDetailAndDelete(t *testing.T) {
	s := testServer()
	c := s.Eng.Snapshot()
	id := c.Bees[0].ID

	rec := httptest.NewRecorder()
	s.handleBeeDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bee/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("detail: got %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handleBeeDetail(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/bee/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handleBeeDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bee/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("detail after delete: got %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handleBeeDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bee/", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing id: got %d, want 400", rec.Code)
	}
}

func TestAdminOnlyAuth(t *testing.T) {
	s := testServer()
	handler := s.adminOnly(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// GET passes through without auth.
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET: got %d, want 200", rec.Code)
	}

	// POST without token is rejected.
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("POST no token: got %d, want 401", rec.Code)
	}

	// POST with the wrong token is rejected.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	handler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("POST bad token: got %d, want 401", rec.Code)
	}

	// POST with the right token passes.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Authorization", "Bearer secret")
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST good token: got %d, want 200", rec.Code)
	}

	// With no admin key configured, mutating requests are disabled outright.
	s.AdminKey = ""
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Authorization", "Bearer secret")
	handler(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("POST disabled admin: got %d, want 403", rec.Code)
	}
}

func TestHandleIntervention(t *testing.T) {
	s := testServer()
	c := s.Eng.Snapshot()
	id := c.Bees[0].ID

	rec := httptest.NewRecorder()
	body := `{"type": "activity", "bee_id": "` + id + `", "activity": "patrolling"}`
	s.handleIntervention(rec, httptest.NewRequest(http.MethodPost, "/api/v1/intervention", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("intervention: got %d, want 200: %s", rec.Code, rec.Body.String())
	}

	snap := s.Eng.Snapshot()
	if snap.BeeIndex[id].Activity.String() != "patrolling" {
		t.Fatalf("activity after intervention: got %v, want patrolling", snap.BeeIndex[id].Activity)
	}

	rec = httptest.NewRecorder()
	s.handleIntervention(rec, httptest.NewRequest(http.MethodPost, "/api/v1/intervention",
		strings.NewReader(`{"type": "activity", "bee_id": "missing", "activity": "resting"}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing bee: got %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handleIntervention(rec, httptest.NewRequest(http.MethodPost, "/api/v1/intervention",
		strings.NewReader(`{"type": "weather"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown type: got %d, want 400", rec.Code)
	}
}

func TestHandleSpeed(t *testing.T) {
	s := testServer()

	rec := httptest.NewRecorder()
	s.handleSpeed(rec, httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed": 3}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("set speed: got %d, want 200", rec.Code)
	}
	if got := s.Eng.Speed(); got != 3 {
		t.Fatalf("speed: got %v, want 3", got)
	}

	rec = httptest.NewRecorder()
	s.handleSpeed(rec, httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed": 500}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range speed: got %d, want 400", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("fourth request should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("a different IP must have its own bucket")
	}
	if rl.RetryAfter("1.2.3.4") <= 0 {
		t.Fatal("limited IP should report a positive retry-after")
	}
}
