// Package countermeasure implements the mock jamming, takeover, and physical
// capture modules. Each module owns its own state behind a mutex and exposes
// its effect on a drone as an EffectPatch; only the simulation engine merges
// patches into drone records.
package countermeasure

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"borderops-sim/internal/drone"
	"borderops-sim/internal/geo"
)

// JammerType selects the jamming hardware profile.
type JammerType string

const (
	JammerDirectional JammerType = "directional"
	JammerBroadband   JammerType = "broadband"
	JammerSelective   JammerType = "selective"
)

// JammerMode selects when the jammer transmits.
type JammerMode string

const (
	ModeContinuous  JammerMode = "continuous"
	ModeReactive    JammerMode = "reactive"
	ModeIntelligent JammerMode = "intelligent"
	ModeSweep       JammerMode = "sweep"
)

// Common drone control/video/navigation frequencies in Hz.
var frequencyPresets = map[string][]float64{
	"control_2.4ghz":    {2.4e9},
	"video_5.8ghz":      {5.8e9},
	"gps_l1":            {1.57542e9},
	"telemetry_433mhz":  {433e6},
	"telemetry_915mhz":  {915e6},
	"dji_lightbridge":   {2.4e9},
	"dji_ocusync":       {2.4e9, 5.8e9},
	"futaba_fhss":       {2.4e9},
	"spektrum_dsm2":     {2.4e9},
	"frsky_accst":       {2.4e9},
}

var droneProtocols = map[string][]string{
	"dji":    {"control_2.4ghz", "video_5.8ghz", "dji_lightbridge", "dji_ocusync"},
	"parrot": {"control_2.4ghz", "video_5.8ghz"},
	"yuneec": {"control_2.4ghz", "video_5.8ghz"},
	"autel":  {"control_2.4ghz", "video_5.8ghz"},
	"skydio": {"control_2.4ghz", "video_5.8ghz"},
}

var gpsFrequencies = []float64{1.57542e9, 1.2276e9, 1.17645e9, 1.602e9, 1.246e9}

// JammingSession is one active jamming transmission.
type JammingSession struct {
	ID          string        `json:"id"`
	Frequencies []float64     `json:"frequencies"`
	PowerLevel  float64       `json:"power_level"`
	StartTime   time.Time     `json:"start_time"`
	Duration    time.Duration `json:"duration"`
}

// JammerStatus is the read-only aggregate for display and broadcast.
type JammerStatus struct {
	Active   bool                      `json:"active"`
	Mode     JammerMode                `json:"mode"`
	Type     JammerType                `json:"jammer_type"`
	Sessions map[string]JammingSession `json:"jammers"`
}

// Jammer simulates RF jamming equipment. Duration-bounded sessions expire via
// time.AfterFunc; the timers only touch jammer state, never drone records.
type Jammer struct {
	mu       sync.Mutex
	mode     JammerMode
	jtype    JammerType
	sessions map[string]*JammingSession
	timers   map[string]*time.Timer

	rng *rand.Rand
	now func() time.Time
	log *slog.Logger
}

// NewJammer creates an idle jammer.
func NewJammer(log *slog.Logger, rng *rand.Rand) *Jammer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Jammer{
		mode:     ModeContinuous,
		jtype:    JammerDirectional,
		sessions: make(map[string]*JammingSession),
		timers:   make(map[string]*time.Timer),
		rng:      rng,
		now:      time.Now,
		log:      log,
	}
}

// Activate starts a jamming session on the given frequencies. duration <= 0
// means continuous. An existing session with the same id is replaced.
func (j *Jammer) Activate(id string, frequencies []float64, powerLevel float64, duration time.Duration) JammingSession {
	j.mu.Lock()
	defer j.mu.Unlock()

	if id == "" {
		id = "default"
	}
	if powerLevel < 0 {
		powerLevel = 0
	} else if powerLevel > 100 {
		powerLevel = 100
	}

	s := &JammingSession{
		ID:          id,
		Frequencies: frequencies,
		PowerLevel:  powerLevel,
		StartTime:   j.now(),
		Duration:    duration,
	}
	j.sessions[id] = s

	if t, ok := j.timers[id]; ok {
		t.Stop()
		delete(j.timers, id)
	}
	if duration > 0 {
		j.timers[id] = time.AfterFunc(duration, func() {
			if err := j.Deactivate(id); err != nil {
				j.log.Debug("jammer session already gone", "jammer_id", id)
			}
		})
	}

	j.log.Info("jammer activated",
		"jammer_id", id, "frequencies", len(frequencies),
		"power", powerLevel, "duration", duration)
	return *s
}

// Deactivate stops a jamming session.
func (j *Jammer) Deactivate(id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	s, ok := j.sessions[id]
	if !ok {
		return fmt.Errorf("jammer %s: %w", id, ErrNotActive)
	}
	delete(j.sessions, id)
	if t, ok := j.timers[id]; ok {
		t.Stop()
		delete(j.timers, id)
	}
	j.log.Info("jammer deactivated", "jammer_id", id, "ran_for", j.now().Sub(s.StartTime))
	return nil
}

// JamDroneControl jams the control frequencies known for a drone type, or the
// common 2.4/5.8 GHz bands when the type is unknown.
func (j *Jammer) JamDroneControl(droneType string, powerLevel float64, duration time.Duration) JammingSession {
	id := fmt.Sprintf("control_%s_%d", droneType, j.now().Unix())
	var frequencies []float64
	if protocols, ok := droneProtocols[droneType]; ok {
		for _, p := range protocols {
			frequencies = append(frequencies, frequencyPresets[p]...)
		}
	} else {
		frequencies = []float64{2.4e9, 5.8e9}
	}
	return j.Activate(id, frequencies, powerLevel, duration)
}

// JamGPS jams GNSS navigation bands.
func (j *Jammer) JamGPS(powerLevel float64, duration time.Duration) JammingSession {
	id := fmt.Sprintf("gps_%d", j.now().Unix())
	return j.Activate(id, gpsFrequencies, powerLevel, duration)
}

// SetMode changes the jamming mode.
func (j *Jammer) SetMode(mode JammerMode) error {
	switch mode {
	case ModeContinuous, ModeReactive, ModeIntelligent, ModeSweep:
	default:
		return fmt.Errorf("invalid jammer mode %q", mode)
	}
	j.mu.Lock()
	j.mode = mode
	j.mu.Unlock()
	return nil
}

// EmergencyShutdown stops all sessions.
func (j *Jammer) EmergencyShutdown() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := len(j.sessions)
	for id, t := range j.timers {
		t.Stop()
		delete(j.timers, id)
	}
	j.sessions = make(map[string]*JammingSession)
	j.log.Warn("emergency shutdown of all jammers", "stopped", n)
	return n
}

// Status returns a copy of the jammer state.
func (j *Jammer) Status() JammerStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	st := JammerStatus{
		Active:   len(j.sessions) > 0,
		Mode:     j.mode,
		Type:     j.jtype,
		Sessions: make(map[string]JammingSession, len(j.sessions)),
	}
	for id, s := range j.sessions {
		st.Sessions[id] = *s
	}
	return st
}

// Effect computes the jamming patch for a drone at the given distance from
// the jammer. Effectiveness scales with the strongest active session and
// falls off inversely with distance.
func (j *Jammer) Effect(d drone.Drone, distanceMeters float64) drone.EffectPatch {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.sessions) == 0 {
		return drone.EffectPatch{}
	}

	var maxPower float64
	for _, s := range j.sessions {
		if s.PowerLevel > maxPower {
			maxPower = s.PowerLevel
		}
	}

	distanceFactor := 1.0
	if distanceMeters > 1 {
		distanceFactor = 100 / distanceMeters
		if distanceFactor > 1 {
			distanceFactor = 1
		}
	}
	effect := maxPower * distanceFactor

	patch := drone.EffectPatch{
		SignalStrength: drone.Float(d.SignalStrength - effect*0.5),
		IsJammed:       drone.Bool(effect > 30),
		JammingLevel:   drone.Float(effect),
	}

	// Heavy jamming disrupts navigation: random positional drift.
	if effect > 50 {
		drift := (effect - 50) / 100
		loc := geo.Point{
			Latitude:  d.Location.Latitude + (j.rng.Float64()*0.0002-0.0001)*drift,
			Longitude: d.Location.Longitude + (j.rng.Float64()*0.0002-0.0001)*drift,
			Altitude:  d.Location.Altitude,
		}
		patch.Location = &loc
	}

	if effect > 80 {
		patch.ControlCompromised = drone.Bool(true)
		patch.ThreatLevel = drone.Threat(drone.ThreatHigh)
	}

	return patch
}
