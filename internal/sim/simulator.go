// Simulator orchestrating drone detections near the border
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"borderops-sim/internal/config"
	"borderops-sim/internal/countermeasure"
	"borderops-sim/internal/drone"
	"borderops-sim/internal/geo"
	"borderops-sim/internal/metrics"

	"github.com/google/uuid"
)

// EffectPort is consumed once per drone per tick to apply whatever
// countermeasure operations are active elsewhere.
type EffectPort interface {
	Apply(drone.Drone) drone.Drone
	Status() countermeasure.Status
}

// Broadcaster pushes engine output to live subscribers. Delivery is
// best-effort; a slow or dead subscriber must never stall a tick.
type Broadcaster interface {
	Broadcast(event string, data any)
}

// Stats summarizes the running simulation for the API layer.
type Stats struct {
	UptimeSeconds        float64                     `json:"uptime_seconds"`
	TickCount            int64                       `json:"tick_count"`
	ActiveDrones         int                         `json:"active_drones"`
	ActiveMissions       int                         `json:"active_missions"`
	TotalAlerts          int                         `json:"total_alerts"`
	UnacknowledgedAlerts int                         `json:"unacknowledged_alerts"`
	DronesByType         map[drone.Type]int          `json:"drones_by_type"`
	DronesByThreat       map[drone.ThreatLevel]int   `json:"drones_by_threat"`
	HotZones             int                         `json:"hot_zones"`
}

// Simulator owns the drone registry, the mission side table, and the alert
// log. All registry access goes through the mutex; every record handed out
// is a copy.
type Simulator struct {
	cfg          *config.SimulationConfig
	border       geo.Border
	zones        []drone.HotZone
	drones       map[string]*drone.Drone
	missions     map[string]*drone.Mission
	alerts       []drone.Alert
	targetDrones int
	tickInterval time.Duration
	tickCount    int64
	startTime    time.Time

	writer      DroneWriter
	alertWriter AlertWriter
	effects     EffectPort
	broadcaster Broadcaster
	metrics     *metrics.Metrics

	log  *slog.Logger
	rand *rand.Rand
	now  func() time.Time
	mu   sync.Mutex
}

// NewSimulator builds the zone layout from the border configuration and
// spawns the initial drone population.
func NewSimulator(cfg *config.SimulationConfig, writer DroneWriter, alertWriter AlertWriter, effects EffectPort) *Simulator {
	s := &Simulator{
		cfg:          cfg,
		border:       cfg.Border.Border(),
		drones:       make(map[string]*drone.Drone),
		missions:     make(map[string]*drone.Mission),
		targetDrones: cfg.NumDrones,
		tickInterval: cfg.UpdateInterval.Std(),
		writer:       writer,
		alertWriter:  alertWriter,
		effects:      effects,
		log:          slog.Default(),
		rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
	}
	s.startTime = s.now()
	s.zones = s.generateHotZones(cfg.HotZoneCount)
	s.populate(cfg.NumDrones)
	return s
}

// SetBroadcaster attaches a live-subscriber sink.
func (s *Simulator) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	s.broadcaster = b
	s.mu.Unlock()
}

// SetMetrics attaches instrumentation.
func (s *Simulator) SetMetrics(m *metrics.Metrics) {
	s.mu.Lock()
	s.metrics = m
	s.mu.Unlock()
}

// populate spawns n drones; half of them start with a mission. Caller holds
// no lock (construction or reset path).
func (s *Simulator) populate(n int) {
	for i := 0; i < n; i++ {
		d := s.randomDrone("", nil)
		if s.rand.Float64() < 0.5 {
			m := s.newMission(d.Type)
			d.Heading = wrapHeading(geo.Bearing(d.Location, m.Target))
			s.missions[d.ID] = m
		}
		s.drones[d.ID] = d
	}
}

// newAlert constructs an alert record without appending it.
func (s *Simulator) newAlert(d *drone.Drone, at drone.AlertType, level drone.ThreatLevel, desc string) *drone.Alert {
	return &drone.Alert{
		ID:          uuid.NewString(),
		Timestamp:   s.now(),
		DroneID:     d.ID,
		AlertType:   at,
		Location:    d.Location,
		Description: desc,
		ThreatLevel: level,
	}
}

// Snapshot returns copies of all live drones, ordered by id.
func (s *Simulator) Snapshot() []drone.Drone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulator) snapshotLocked() []drone.Drone {
	out := make([]drone.Drone, 0, len(s.drones))
	for _, d := range s.drones {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetDrone returns a copy of one drone.
func (s *Simulator) GetDrone(id string) (drone.Drone, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drones[id]
	if !ok {
		return drone.Drone{}, false
	}
	return d.Clone(), true
}

// GetMission returns a copy of a drone's active mission.
func (s *Simulator) GetMission(droneID string) (drone.Mission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.missions[droneID]
	if !ok {
		return drone.Mission{}, false
	}
	return *m, true
}

// Alerts returns the newest alerts first. limit <= 0 means all; acknowledged
// filters by the acknowledgement flag when non-nil.
func (s *Simulator) Alerts(limit int, acknowledged *bool) []drone.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]drone.Alert, 0, len(s.alerts))
	for i := len(s.alerts) - 1; i >= 0; i-- {
		a := s.alerts[i]
		if acknowledged != nil && a.IsAcknowledged != *acknowledged {
			continue
		}
		out = append(out, a)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Acknowledge marks an alert as handled.
func (s *Simulator) Acknowledge(alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == alertID {
			s.alerts[i].IsAcknowledged = true
			return nil
		}
	}
	return fmt.Errorf("alert %s not found", alertID)
}

// AddTestDrone spawns one drone outside the regular cadence and returns a
// copy of it.
func (s *Simulator) AddTestDrone() drone.Drone {
	s.mu.Lock()
	defer s.mu.Unlock()

	var m *drone.Mission
	d := s.randomDrone("", nil)
	if s.rand.Float64() < 0.5 {
		m = s.newMission(d.Type)
		d.Heading = wrapHeading(geo.Bearing(d.Location, m.Target))
		s.missions[d.ID] = m
	}
	s.drones[d.ID] = d
	s.recordAlert(s.newAlert(d, drone.AlertNewDetection, d.ThreatLevel,
		fmt.Sprintf("new %s drone detected: %s", d.Type, d.ID)))
	return d.Clone()
}

// RemoveDrone retires a drone and drops its mission.
func (s *Simulator) RemoveDrone(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drones[id]; !ok {
		return fmt.Errorf("drone %s not found", id)
	}
	delete(s.drones, id)
	delete(s.missions, id)
	return nil
}

// Reset wipes the registry and alert log, rebuilds the zone layout, and
// spawns a fresh population.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drones = make(map[string]*drone.Drone)
	s.missions = make(map[string]*drone.Mission)
	s.alerts = nil
	s.tickCount = 0
	s.startTime = s.now()
	s.zones = s.generateHotZones(s.cfg.HotZoneCount)
	s.populate(s.targetDrones)
}

// ConfigUpdate carries optional runtime configuration changes. Nil fields
// are left untouched.
type ConfigUpdate struct {
	NumDrones      *int           `json:"num_drones,omitempty"`
	UpdateInterval *time.Duration `json:"update_interval,omitempty"`
	Border         *geo.Border    `json:"border,omitempty"`
}

// UpdateConfig applies a runtime configuration change. A border change
// rebuilds the zone layout; a drone-count change converges the population
// immediately.
func (s *Simulator) UpdateConfig(u ConfigUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.UpdateInterval != nil {
		if *u.UpdateInterval < 100*time.Millisecond || *u.UpdateInterval > 10*time.Second {
			return fmt.Errorf("update interval %s out of range", *u.UpdateInterval)
		}
		s.tickInterval = *u.UpdateInterval
	}
	if u.Border != nil {
		if u.Border.Width <= 0 || u.Border.Height <= 0 {
			return fmt.Errorf("border dimensions must be positive")
		}
		s.border = *u.Border
		s.zones = s.generateHotZones(s.cfg.HotZoneCount)
	}
	if u.NumDrones != nil {
		if *u.NumDrones < 0 || *u.NumDrones > 20 {
			return fmt.Errorf("num_drones %d out of range", *u.NumDrones)
		}
		s.targetDrones = *u.NumDrones
		for len(s.drones) < s.targetDrones {
			d := s.randomDrone("", nil)
			s.drones[d.ID] = d
		}
		for len(s.drones) > s.targetDrones {
			for id := range s.drones {
				delete(s.drones, id)
				delete(s.missions, id)
				break
			}
		}
	}
	return nil
}

// TickInterval returns the current update period.
func (s *Simulator) TickInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickInterval
}

// Border returns the current operating area.
func (s *Simulator) Border() geo.Border {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.border
}

// Zones returns a copy of the zone layout.
func (s *Simulator) Zones() []drone.HotZone {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]drone.HotZone, len(s.zones))
	copy(out, s.zones)
	return out
}

// Stats aggregates current counts for the API layer.
func (s *Simulator) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		UptimeSeconds:  s.now().Sub(s.startTime).Seconds(),
		TickCount:      s.tickCount,
		ActiveDrones:   len(s.drones),
		ActiveMissions: len(s.missions),
		TotalAlerts:    len(s.alerts),
		DronesByType:   make(map[drone.Type]int),
		DronesByThreat: make(map[drone.ThreatLevel]int),
		HotZones:       len(s.zones),
	}
	for _, d := range s.drones {
		st.DronesByType[d.Type]++
		st.DronesByThreat[d.ThreatLevel]++
	}
	for _, a := range s.alerts {
		if !a.IsAcknowledged {
			st.UnacknowledgedAlerts++
		}
	}
	return st
}
