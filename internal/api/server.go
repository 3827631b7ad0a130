// Package api exposes the simulation engine and the countermeasure suite
// over HTTP. Handlers are thin accessors; all state lives in the engine and
// the countermeasure modules.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"borderops-sim/internal/countermeasure"
	"borderops-sim/internal/drone"
	"borderops-sim/internal/geo"
	"borderops-sim/internal/metrics"
	"borderops-sim/internal/sim"
	"borderops-sim/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wires the HTTP surface over the engine.
type Server struct {
	sim     *sim.Simulator
	suite   *countermeasure.Suite
	hub     *ws.Hub
	metrics *metrics.Metrics
	log     *slog.Logger
}

// New creates the API server. hub and m may be nil in tests.
func New(simulator *sim.Simulator, suite *countermeasure.Suite, hub *ws.Hub, m *metrics.Metrics, log *slog.Logger) *Server {
	return &Server{sim: simulator, suite: suite, hub: hub, metrics: m, log: log}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/drones", s.listDrones)
		r.Get("/drones/{id}", s.getDrone)
		r.Get("/drones/{id}/mission", s.getMission)
		r.Get("/alerts", s.listAlerts)
		r.Post("/alerts/{id}/acknowledge", s.acknowledgeAlert)
		r.Get("/stats", s.stats)

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemStatus)
			r.Post("/simulator/config", s.updateConfig)
			r.Post("/simulator/reset", s.resetSimulator)
			r.Post("/simulator/add_drone", s.addDrone)
		})

		r.Route("/countermeasures", s.countermeasureRoutes)
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	if s.hub != nil {
		r.Get("/ws/drones", s.hub.ServeHTTP)
	}
	return r
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) listDrones(w http.ResponseWriter, r *http.Request) {
	drones := s.sim.Snapshot()

	if q := r.URL.Query().Get("active_only"); q == "true" || q == "1" {
		filtered := drones[:0]
		for _, d := range drones {
			if !d.Captured {
				filtered = append(filtered, d)
			}
		}
		drones = filtered
	}
	if q := r.URL.Query().Get("min_threat"); q != "" {
		min := drone.ThreatLevel(q)
		filtered := drones[:0]
		for _, d := range drones {
			if d.ThreatLevel.AtLeast(min) {
				filtered = append(filtered, d)
			}
		}
		drones = filtered
	}
	if q := r.URL.Query().Get("type"); q != "" {
		filtered := drones[:0]
		for _, d := range drones {
			if d.Type == drone.Type(q) {
				filtered = append(filtered, d)
			}
		}
		drones = filtered
	}
	respondJSON(w, http.StatusOK, drones)
}

func (s *Server) getDrone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, ok := s.sim.GetDrone(id)
	if !ok {
		respondError(w, http.StatusNotFound, "drone not found")
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) getMission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.sim.GetDrone(id); !ok {
		respondError(w, http.StatusNotFound, "drone not found")
		return
	}
	m, ok := s.sim.GetMission(id)
	if !ok {
		respondError(w, http.StatusNotFound, "drone has no active mission")
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	var acknowledged *bool
	if q := r.URL.Query().Get("acknowledged"); q != "" {
		b, err := strconv.ParseBool(q)
		if err != nil {
			respondError(w, http.StatusBadRequest, "acknowledged must be a boolean")
			return
		}
		acknowledged = &b
	}
	respondJSON(w, http.StatusOK, s.sim.Alerts(limit, acknowledged))
}

func (s *Server) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sim.Acknowledge(id); err != nil {
		respondError(w, http.StatusNotFound, "alert not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "acknowledged", "alert_id": id})
}

// statsResponse extends the engine counters with per-snapshot aggregates.
type statsResponse struct {
	sim.Stats
	AverageSignal float64       `json:"average_signal_strength"`
	HighestThreat []drone.Drone `json:"highest_threat_drones"`
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st := statsResponse{Stats: s.sim.Stats()}
	drones := s.sim.Snapshot()

	if len(drones) > 0 {
		total := 0.0
		for _, d := range drones {
			total += d.SignalStrength
		}
		st.AverageSignal = total / float64(len(drones))
	}
	for _, d := range drones {
		if d.ThreatLevel.AtLeast(drone.ThreatHigh) {
			st.HighestThreat = append(st.HighestThreat, d)
		}
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) systemStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":        "operational",
		"time":          time.Now().UTC(),
		"tick_interval": s.sim.TickInterval().String(),
		"border":        s.sim.Border(),
		"hot_zones":     s.sim.Zones(),
		"stats":         s.sim.Stats(),
	}
	if s.hub != nil {
		status["ws_clients"] = s.hub.ClientCount()
	}
	if s.suite != nil {
		status["countermeasures"] = s.suite.Status()
	}
	respondJSON(w, http.StatusOK, status)
}

// configRequest mirrors sim.ConfigUpdate with a seconds-based interval for
// wire convenience.
type configRequest struct {
	NumDrones             *int        `json:"num_drones"`
	UpdateIntervalSeconds *float64    `json:"update_interval"`
	Border                *geo.Border `json:"border"`
}

func (s *Server) updateConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed config payload")
		return
	}
	u := sim.ConfigUpdate{NumDrones: req.NumDrones, Border: req.Border}
	if req.UpdateIntervalSeconds != nil {
		d := time.Duration(*req.UpdateIntervalSeconds * float64(time.Second))
		u.UpdateInterval = &d
	}
	if err := s.sim.UpdateConfig(u); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Info("simulator config updated")
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) resetSimulator(w http.ResponseWriter, r *http.Request) {
	s.sim.Reset()
	s.log.Info("simulator reset")
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) addDrone(w http.ResponseWriter, r *http.Request) {
	d := s.sim.AddTestDrone()
	respondJSON(w, http.StatusCreated, d)
}
