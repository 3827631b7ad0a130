package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"borderops-sim/internal/config"
	"borderops-sim/internal/countermeasure"
	"borderops-sim/internal/drone"
	"borderops-sim/internal/sim"
)

func newTestServer(t *testing.T, numDrones int) (*httptest.Server, *sim.Simulator, *countermeasure.Suite) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default()
	cfg.NumDrones = numDrones

	suite := countermeasure.NewSuite(log, rand.New(rand.NewSource(1)), cfg.Border.Border().Center)
	simulator := sim.NewSimulator(cfg, nil, nil, suite)
	srv := httptest.NewServer(New(simulator, suite, nil, nil, log).Handler())
	t.Cleanup(srv.Close)
	return srv, simulator, suite
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: status %d, want %d: %s", url, resp.StatusCode, wantStatus, body)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func postJSON(t *testing.T, url string, payload any, wantStatus int, out any) {
	t.Helper()
	body, _ := json.Marshal(payload)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("POST %s: status %d, want %d: %s", url, resp.StatusCode, wantStatus, b)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func TestListAndGetDrones(t *testing.T) {
	srv, _, _ := newTestServer(t, 3)

	var drones []drone.Drone
	getJSON(t, srv.URL+"/api/drones", http.StatusOK, &drones)
	if len(drones) != 3 {
		t.Fatalf("expected 3 drones, got %d", len(drones))
	}

	var d drone.Drone
	getJSON(t, srv.URL+"/api/drones/"+drones[0].ID, http.StatusOK, &d)
	if d.ID != drones[0].ID {
		t.Fatalf("got wrong drone: %s", d.ID)
	}

	getJSON(t, srv.URL+"/api/drones/missing", http.StatusNotFound, nil)
}

func TestDroneFilters(t *testing.T) {
	srv, _, _ := newTestServer(t, 10)

	var high []drone.Drone
	getJSON(t, srv.URL+"/api/drones?min_threat=high", http.StatusOK, &high)
	for _, d := range high {
		if !d.ThreatLevel.AtLeast(drone.ThreatHigh) {
			t.Fatalf("filter leaked %s drone %s", d.ThreatLevel, d.ID)
		}
	}

	var commercial []drone.Drone
	getJSON(t, srv.URL+"/api/drones?type=commercial", http.StatusOK, &commercial)
	for _, d := range commercial {
		if d.Type != drone.TypeCommercial {
			t.Fatalf("filter leaked %s drone %s", d.Type, d.ID)
		}
	}

	var active []drone.Drone
	getJSON(t, srv.URL+"/api/drones?active_only=true", http.StatusOK, &active)
	for _, d := range active {
		if d.Captured {
			t.Fatalf("active_only leaked captured drone %s", d.ID)
		}
	}
}

func TestAddDroneAndAlerts(t *testing.T) {
	srv, _, _ := newTestServer(t, 0)

	var added drone.Drone
	postJSON(t, srv.URL+"/api/system/simulator/add_drone", nil, http.StatusCreated, &added)
	if added.ID == "" {
		t.Fatal("added drone must have an id")
	}

	var alerts []drone.Alert
	getJSON(t, srv.URL+"/api/alerts", http.StatusOK, &alerts)
	if len(alerts) != 1 || alerts[0].AlertType != drone.AlertNewDetection {
		t.Fatalf("expected one new_detection alert, got %+v", alerts)
	}

	getJSON(t, srv.URL+"/api/alerts?limit=bogus", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/api/alerts?acknowledged=maybe", http.StatusBadRequest, nil)

	postJSON(t, srv.URL+"/api/alerts/"+alerts[0].ID+"/acknowledge", nil, http.StatusOK, nil)
	var acked []drone.Alert
	getJSON(t, srv.URL+"/api/alerts?acknowledged=true", http.StatusOK, &acked)
	if len(acked) != 1 {
		t.Fatalf("expected 1 acknowledged alert, got %d", len(acked))
	}

	postJSON(t, srv.URL+"/api/alerts/missing/acknowledge", nil, http.StatusNotFound, nil)
}

func TestStatsAndStatus(t *testing.T) {
	srv, _, _ := newTestServer(t, 4)

	var st struct {
		ActiveDrones  int     `json:"active_drones"`
		AverageSignal float64 `json:"average_signal_strength"`
	}
	getJSON(t, srv.URL+"/api/stats", http.StatusOK, &st)
	if st.ActiveDrones != 4 {
		t.Fatalf("expected 4 active drones, got %d", st.ActiveDrones)
	}
	if st.AverageSignal <= 0 || st.AverageSignal > 100 {
		t.Fatalf("implausible average signal %f", st.AverageSignal)
	}

	var status map[string]any
	getJSON(t, srv.URL+"/api/system/status", http.StatusOK, &status)
	if status["status"] != "operational" {
		t.Fatalf("unexpected status payload: %+v", status)
	}
}

func TestConfigUpdateValidation(t *testing.T) {
	srv, simulator, _ := newTestServer(t, 3)

	postJSON(t, srv.URL+"/api/system/simulator/config",
		map[string]any{"update_interval": 0.01}, http.StatusBadRequest, nil)

	postJSON(t, srv.URL+"/api/system/simulator/config",
		map[string]any{"update_interval": 2.0, "num_drones": 1}, http.StatusOK, nil)
	if got := len(simulator.Snapshot()); got != 1 {
		t.Fatalf("config update should shrink the fleet to 1, got %d", got)
	}

	resp, err := http.Post(srv.URL+"/api/system/simulator/config", "application/json",
		bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body should be rejected, got %d", resp.StatusCode)
	}
}

func TestResetEndpoint(t *testing.T) {
	srv, simulator, _ := newTestServer(t, 2)
	postJSON(t, srv.URL+"/api/system/simulator/add_drone", nil, http.StatusCreated, nil)
	postJSON(t, srv.URL+"/api/system/simulator/reset", nil, http.StatusOK, nil)
	if got := len(simulator.Snapshot()); got != 2 {
		t.Fatalf("reset should restore 2 drones, got %d", got)
	}
}

func TestJamEndpoints(t *testing.T) {
	srv, _, suite := newTestServer(t, 2)

	postJSON(t, srv.URL+"/api/countermeasures/jam",
		map[string]any{"power_level": 80}, http.StatusBadRequest, nil)

	postJSON(t, srv.URL+"/api/countermeasures/jam",
		map[string]any{"jammer_id": "j1", "frequencies": []float64{2.4e9}, "power_level": 80},
		http.StatusOK, nil)
	if !suite.Jammer.Status().Active {
		t.Fatal("jammer should be active after the activate call")
	}

	var status countermeasure.JammerStatus
	getJSON(t, srv.URL+"/api/countermeasures/jam/status", http.StatusOK, &status)
	if len(status.Sessions) != 1 {
		t.Fatalf("expected one session, got %+v", status)
	}

	postJSON(t, srv.URL+"/api/countermeasures/jam/deactivate",
		map[string]any{"jammer_id": "j1"}, http.StatusOK, nil)
	postJSON(t, srv.URL+"/api/countermeasures/jam/deactivate",
		map[string]any{"jammer_id": "j1"}, http.StatusNotFound, nil)
}

func TestTakeoverEndpoints(t *testing.T) {
	srv, simulator, _ := newTestServer(t, 2)
	target := simulator.Snapshot()[0]

	postJSON(t, srv.URL+"/api/countermeasures/takeover",
		map[string]any{"drone_id": "missing", "method": "gps_spoofing", "command": "land"},
		http.StatusNotFound, nil)

	postJSON(t, srv.URL+"/api/countermeasures/takeover",
		map[string]any{"drone_id": target.ID, "method": "bogus", "command": "land"},
		http.StatusBadRequest, nil)

	var op countermeasure.TakeoverOperation
	postJSON(t, srv.URL+"/api/countermeasures/takeover",
		map[string]any{"drone_id": target.ID, "method": "mavlink_hijack", "command": "land"},
		http.StatusOK, &op)
	if op.DroneID != target.ID {
		t.Fatalf("operation tracks the wrong drone: %s", op.DroneID)
	}

	var vulns []countermeasure.Vulnerability
	getJSON(t, srv.URL+"/api/countermeasures/takeover/vulnerabilities/"+target.ID,
		http.StatusOK, &vulns)
	if len(vulns) == 0 {
		t.Fatal("every drone exposes at least GPS spoofing")
	}

	postJSON(t, srv.URL+"/api/countermeasures/takeover/stop",
		map[string]any{"drone_id": target.ID}, http.StatusOK, nil)
}

func TestCaptureEndpoints(t *testing.T) {
	srv, simulator, _ := newTestServer(t, 2)
	target := simulator.Snapshot()[0]

	postJSON(t, srv.URL+"/api/countermeasures/capture",
		map[string]any{"drone_id": "missing", "method": "net_gun"}, http.StatusNotFound, nil)
	postJSON(t, srv.URL+"/api/countermeasures/capture",
		map[string]any{"drone_id": target.ID, "method": "bogus"}, http.StatusBadRequest, nil)

	var eq map[string]countermeasure.Equipment
	getJSON(t, srv.URL+"/api/countermeasures/capture/equipment", http.StatusOK, &eq)
	if len(eq) != 4 {
		t.Fatalf("expected 4 equipment entries, got %d", len(eq))
	}
}

func TestEmergencyShutdown(t *testing.T) {
	srv, _, suite := newTestServer(t, 2)
	suite.Jammer.Activate("x", []float64{2.4e9}, 50, 0)

	var resp map[string]any
	postJSON(t, srv.URL+"/api/countermeasures/emergency_shutdown", nil, http.StatusOK, &resp)
	if suite.Jammer.Status().Active {
		t.Fatal("jammer should be stopped after emergency shutdown")
	}
}
