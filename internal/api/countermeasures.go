package api

import (
	"encoding/json"
	"net/http"
	"time"

	"borderops-sim/internal/countermeasure"
	"borderops-sim/internal/geo"

	"github.com/go-chi/chi/v5"
)

func (s *Server) countermeasureRoutes(r chi.Router) {
	r.Get("/status", s.cmStatus)
	r.Post("/emergency_shutdown", s.cmEmergencyShutdown)

	r.Route("/jam", func(r chi.Router) {
		r.Post("/", s.jamActivate)
		r.Post("/drone", s.jamDrone)
		r.Post("/gps", s.jamGPS)
		r.Get("/status", s.jamStatus)
		r.Post("/deactivate", s.jamDeactivate)
	})

	r.Route("/takeover", func(r chi.Router) {
		r.Post("/", s.takeoverStart)
		r.Post("/land", s.takeoverLand)
		r.Post("/return", s.takeoverReturn)
		r.Post("/stop", s.takeoverStop)
		r.Get("/status", s.takeoverStatus)
		r.Get("/vulnerabilities/{id}", s.takeoverVulnerabilities)
	})

	r.Route("/capture", func(r chi.Router) {
		r.Post("/", s.captureDeploy)
		r.Post("/abort", s.captureAbort)
		r.Get("/equipment", s.captureEquipment)
		r.Get("/operations", s.captureOperations)
	})
}

// pushStatus broadcasts the aggregate countermeasure snapshot after a
// state-changing command.
func (s *Server) pushStatus() {
	if s.hub != nil && s.suite != nil {
		s.hub.Broadcast("countermeasure_status", s.suite.Status())
	}
}

func (s *Server) cmStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.suite.Status())
}

func (s *Server) cmEmergencyShutdown(w http.ResponseWriter, r *http.Request) {
	n := s.suite.EmergencyShutdown()
	s.log.Warn("countermeasure emergency shutdown", "stopped", n)
	s.pushStatus()
	respondJSON(w, http.StatusOK, map[string]any{"status": "shutdown", "stopped": n})
}

type jamRequest struct {
	JammerID        string    `json:"jammer_id"`
	Frequencies     []float64 `json:"frequencies"`
	PowerLevel      float64   `json:"power_level"`
	DurationSeconds float64   `json:"duration_seconds"`
	DroneType       string    `json:"drone_type"`
}

func (s *Server) jamActivate(w http.ResponseWriter, r *http.Request) {
	var req jamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed jam payload")
		return
	}
	if len(req.Frequencies) == 0 {
		respondError(w, http.StatusBadRequest, "frequencies required")
		return
	}
	session := s.suite.Jammer.Activate(req.JammerID, req.Frequencies, req.PowerLevel,
		time.Duration(req.DurationSeconds*float64(time.Second)))
	s.pushStatus()
	respondJSON(w, http.StatusOK, session)
}

func (s *Server) jamDrone(w http.ResponseWriter, r *http.Request) {
	var req jamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed jam payload")
		return
	}
	session := s.suite.Jammer.JamDroneControl(req.DroneType, req.PowerLevel,
		time.Duration(req.DurationSeconds*float64(time.Second)))
	s.pushStatus()
	respondJSON(w, http.StatusOK, session)
}

func (s *Server) jamGPS(w http.ResponseWriter, r *http.Request) {
	var req jamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed jam payload")
		return
	}
	session := s.suite.Jammer.JamGPS(req.PowerLevel,
		time.Duration(req.DurationSeconds*float64(time.Second)))
	s.pushStatus()
	respondJSON(w, http.StatusOK, session)
}

func (s *Server) jamStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.suite.Jammer.Status())
}

func (s *Server) jamDeactivate(w http.ResponseWriter, r *http.Request) {
	var req jamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed jam payload")
		return
	}
	if req.JammerID == "" {
		req.JammerID = "default"
	}
	if err := s.suite.Jammer.Deactivate(req.JammerID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.pushStatus()
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated", "jammer_id": req.JammerID})
}

type takeoverRequest struct {
	DroneID         string     `json:"drone_id"`
	Method          string     `json:"method"`
	Command         string     `json:"command"`
	Target          *geo.Point `json:"target"`
	DurationSeconds float64    `json:"duration_seconds"`
}

func (s *Server) takeoverStart(w http.ResponseWriter, r *http.Request) {
	var req takeoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed takeover payload")
		return
	}
	if _, ok := s.sim.GetDrone(req.DroneID); !ok {
		respondError(w, http.StatusNotFound, "drone not found")
		return
	}
	op, err := s.suite.Takeover.Start(req.DroneID,
		countermeasure.TakeoverMethod(req.Method),
		countermeasure.TakeoverCommand(req.Command),
		req.Target, s.sim.Border().Center,
		time.Duration(req.DurationSeconds*float64(time.Second)))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.pushStatus()
	respondJSON(w, http.StatusOK, op)
}

func (s *Server) takeoverLand(w http.ResponseWriter, r *http.Request) {
	s.takeoverConvenience(w, r, s.suite.Takeover.ForceLanding)
}

func (s *Server) takeoverReturn(w http.ResponseWriter, r *http.Request) {
	s.takeoverConvenience(w, r, s.suite.Takeover.ForceReturnHome)
}

func (s *Server) takeoverConvenience(w http.ResponseWriter, r *http.Request, start func(string, geo.Point) (countermeasure.TakeoverOperation, error)) {
	var req takeoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed takeover payload")
		return
	}
	if _, ok := s.sim.GetDrone(req.DroneID); !ok {
		respondError(w, http.StatusNotFound, "drone not found")
		return
	}
	op, err := start(req.DroneID, s.sim.Border().Center)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.pushStatus()
	respondJSON(w, http.StatusOK, op)
}

func (s *Server) takeoverStop(w http.ResponseWriter, r *http.Request) {
	var req takeoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed takeover payload")
		return
	}
	if err := s.suite.Takeover.Stop(req.DroneID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.pushStatus()
	respondJSON(w, http.StatusOK, map[string]string{"status": "released", "drone_id": req.DroneID})
}

func (s *Server) takeoverStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.suite.Takeover.Operations())
}

func (s *Server) takeoverVulnerabilities(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, ok := s.sim.GetDrone(id)
	if !ok {
		respondError(w, http.StatusNotFound, "drone not found")
		return
	}
	respondJSON(w, http.StatusOK, s.suite.Takeover.DetectVulnerabilities(d))
}

type captureRequest struct {
	DroneID string `json:"drone_id"`
	Method  string `json:"method"`
}

func (s *Server) captureDeploy(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed capture payload")
		return
	}
	d, ok := s.sim.GetDrone(req.DroneID)
	if !ok {
		respondError(w, http.StatusNotFound, "drone not found")
		return
	}
	distM := geo.Distance(d.Location, s.suite.EmitterLocation) * 1000
	op, err := s.suite.Physical.Deploy(req.DroneID,
		countermeasure.CaptureMethod(req.Method), distM)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.pushStatus()
	respondJSON(w, http.StatusOK, op)
}

func (s *Server) captureAbort(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed capture payload")
		return
	}
	if err := s.suite.Physical.Abort(req.DroneID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.pushStatus()
	respondJSON(w, http.StatusOK, map[string]string{"status": "aborted", "drone_id": req.DroneID})
}

func (s *Server) captureEquipment(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.suite.Physical.EquipmentStatus())
}

func (s *Server) captureOperations(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.suite.Physical.Operations())
}
