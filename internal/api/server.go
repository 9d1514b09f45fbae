// Package api provides the HTTP API for observing the colony.
// GET endpoints are public (read-only observation).
// POST/DELETE endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/talgya/waggle/internal/colony"
	"github.com/talgya/waggle/internal/engine"
	"github.com/talgya/waggle/internal/persistence"
)

// Server serves colony state over HTTP. Every read goes through an engine
// snapshot; handlers never touch live simulation state.
type Server struct {
	Eng      *engine.Engine
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for mutating endpoints. Empty = disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	adminLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/colony", s.handleColony)
	mux.HandleFunc("/api/v1/bees", s.adminOnly(s.handleBees))
	mux.HandleFunc("/api/v1/bee/", s.adminOnly(s.handleBeeDetail))
	mux.HandleFunc("/api/v1/flowers", s.handleFlowers)
	mux.HandleFunc("/api/v1/achievements", s.handleAchievements)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/stats/history", s.handleStatsHistory)

	// Admin endpoints (require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(RateLimitMiddleware(adminLimiter, s.handleSpeed)))
	mux.HandleFunc("/api/v1/pause", s.adminOnly(RateLimitMiddleware(adminLimiter, s.handlePause)))
	mux.HandleFunc("/api/v1/resume", s.adminOnly(RateLimitMiddleware(adminLimiter, s.handleResume)))
	mux.HandleFunc("/api/v1/intervention", s.adminOnly(RateLimitMiddleware(adminLimiter, s.handleIntervention)))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on mutating
// requests. GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no COLONY_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			status = "degraded"
			slog.Error("chronicle ping failed", "error", err)
		}
	}
	writeJSON(w, map[string]any{
		"status": status,
		"tick":   s.Eng.Tick(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	c := s.Eng.Snapshot()
	writeJSON(w, map[string]any{
		"name":               "Waggle",
		"tick":               s.Eng.Tick(),
		"sim_time":           engine.FormatSimTime(s.Eng.SimTime()),
		"speed":              s.Eng.Speed(),
		"population":         c.Stats.Population,
		"avg_happiness":      c.Stats.AvgHappiness,
		"avg_energy":         c.Stats.AvgEnergy,
		"cultural_diversity": c.Stats.CulturalDiversity,
		"conditions":         c.Env.Describe(),
		"weather":            c.Env.Weather,
		"season":             c.Env.Season,
		"time_of_day":        c.Env.TimeOfDay,
	})
}

// handleColony returns the full snapshot: bees, hive, environment, stats,
// and culture. Heavyweight; intended for rendering frontends.
func (s *Server) handleColony(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.Snapshot())
}

// handleBees lists bee summaries on GET and adds a bee on POST.
func (s *Server) handleBees(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			X *float64 `json:"x,omitempty"`
			Y *float64 `json:"y,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		var pos *orb.Point
		if req.X != nil && req.Y != nil {
			pos = &orb.Point{*req.X, *req.Y}
		}
		s.Eng.AddBee(pos)
		writeJSON(w, map[string]any{"success": true})
		return
	}

	type beeSummary struct {
		ID           string  `json:"id"`
		Name         string  `json:"name"`
		Activity     string  `json:"activity"`
		Energy       float64 `json:"energy"`
		Happiness    float64 `json:"happiness"`
		Friends      int     `json:"friends"`
		KnownFlowers int     `json:"known_flowers"`
		Achievements int     `json:"achievements"`
		Age          float64 `json:"age"`
	}

	c := s.Eng.Snapshot()
	result := make([]beeSummary, 0, len(c.Bees))
	for _, b := range c.Bees {
		result = append(result, beeSummary{
			ID:           b.ID,
			Name:         b.Name,
			Activity:     b.Activity.String(),
			Energy:       b.Energy,
			Happiness:    b.Happiness,
			Friends:      len(b.Friends),
			KnownFlowers: len(b.KnownFlowers),
			Achievements: len(b.Achievements),
			Age:          b.Age,
		})
	}
	writeJSON(w, result)
}

// handleBeeDetail returns one bee's full record on GET and removes the
// bee on DELETE.
func (s *Server) handleBeeDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/bee/")
	if id == "" {
		http.Error(w, "bee id required", http.StatusBadRequest)
		return
	}

	if r.Method == http.MethodDelete {
		s.Eng.RemoveBee(id)
		writeJSON(w, map[string]any{"success": true})
		return
	}

	c := s.Eng.Snapshot()
	b, ok := c.BeeIndex[id]
	if !ok {
		http.Error(w, "bee not found", http.StatusNotFound)
		return
	}
	writeJSON(w, b)
}

func (s *Server) handleFlowers(w http.ResponseWriter, r *http.Request) {
	c := s.Eng.Snapshot()
	writeJSON(w, c.Env.Flowers)
}

// handleAchievements lists every unlock across the colony, newest last.
func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	type unlock struct {
		BeeID   string `json:"bee_id"`
		BeeName string `json:"bee_name"`
		colony.Achievement
	}

	c := s.Eng.Snapshot()
	var result []unlock
	for _, b := range c.Bees {
		for _, a := range b.Achievements {
			result = append(result, unlock{BeeID: b.ID, BeeName: b.Name, Achievement: a})
		}
	}
	writeJSON(w, result)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := s.Eng.RecentEvents(limit)

	// Optional category filter.
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	writeJSON(w, events)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	c := s.Eng.Snapshot()
	writeJSON(w, c.Stats)
}

func (s *Server) handleStatsHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "chronicle disabled", http.StatusNotFound)
		return
	}

	limit := 200
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 2000 {
			limit = n
		}
	}

	samples, err := s.DB.LoadStatsHistory(limit)
	if err != nil {
		slog.Error("stats history query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, samples)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 100 {
			http.Error(w, "speed must be 0-100", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.Eng.Pause()
	slog.Info("simulation paused")
	writeJSON(w, map[string]any{"success": true})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.Eng.Resume()
	slog.Info("simulation resumed")
	writeJSON(w, map[string]any{"success": true})
}

// handleIntervention is the admin escape hatch: direct a bee into an
// activity (including patrolling, which the rotation never picks).
func (s *Server) handleIntervention(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Type     string `json:"type"`
		BeeID    string `json:"bee_id,omitempty"`
		Activity string `json:"activity,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	switch req.Type {
	case "activity":
		if req.BeeID == "" || req.Activity == "" {
			http.Error(w, "bee_id and activity required", http.StatusBadRequest)
			return
		}
		activity, ok := colony.ActivityFromString(req.Activity)
		if !ok {
			http.Error(w, "unknown activity", http.StatusBadRequest)
			return
		}
		if !s.Eng.SetActivity(req.BeeID, activity) {
			http.Error(w, "bee not found", http.StatusNotFound)
			return
		}
		slog.Info("intervention applied", "bee", req.BeeID, "activity", req.Activity)
		writeJSON(w, map[string]any{
			"success": true,
			"details": fmt.Sprintf("bee directed to %s", req.Activity),
		})

	default:
		http.Error(w, "unknown intervention type", http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
