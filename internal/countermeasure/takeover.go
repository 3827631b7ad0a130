package countermeasure

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"borderops-sim/internal/drone"
	"borderops-sim/internal/geo"
)

// ErrNotActive is returned when an operation or session does not exist.
var ErrNotActive = errors.New("not active")

// TakeoverMethod is the attack vector used to seize control of a drone.
type TakeoverMethod string

const (
	MethodGPSSpoofing      TakeoverMethod = "gps_spoofing"
	MethodCommandInjection TakeoverMethod = "command_injection"
	MethodProtocolExploit  TakeoverMethod = "protocol_exploit"
	MethodMavlinkHijack    TakeoverMethod = "mavlink_hijack"
)

// TakeoverCommand is the order issued to a compromised drone.
type TakeoverCommand string

const (
	CommandLand       TakeoverCommand = "land"
	CommandReturnHome TakeoverCommand = "return_home"
	CommandHover      TakeoverCommand = "hover"
	CommandMoveTo     TakeoverCommand = "move_to"
	CommandDisconnect TakeoverCommand = "disconnect"
	CommandShutdown   TakeoverCommand = "shutdown"
)

// Per-method probability that a takeover attempt sticks.
var takeoverSuccessRates = map[TakeoverMethod]float64{
	MethodGPSSpoofing:      0.85,
	MethodCommandInjection: 0.70,
	MethodProtocolExploit:  0.60,
	MethodMavlinkHijack:    0.90,
}

// TakeoverState is the lifecycle of one operation.
type TakeoverState string

const (
	TakeoverAttempting TakeoverState = "attempting"
	TakeoverControlled TakeoverState = "controlled"
	TakeoverFailed     TakeoverState = "failed"
)

// TakeoverOperation tracks a control attempt against a single drone.
type TakeoverOperation struct {
	DroneID   string          `json:"drone_id"`
	Method    TakeoverMethod  `json:"method"`
	Command   TakeoverCommand `json:"command"`
	Target    *geo.Point      `json:"target,omitempty"`
	Home      geo.Point       `json:"home"`
	State     TakeoverState   `json:"state"`
	StartTime time.Time       `json:"start_time"`
	Duration  time.Duration   `json:"duration"`
}

// Vulnerability is a weakness reported by a pre-attack scan.
type Vulnerability struct {
	Method      TakeoverMethod `json:"method"`
	Severity    string         `json:"severity"`
	Description string         `json:"description"`
}

// Takeover simulates hijacking of drone control links.
type Takeover struct {
	mu         sync.Mutex
	operations map[string]*TakeoverOperation
	timers     map[string]*time.Timer

	rng *rand.Rand
	now func() time.Time
	log *slog.Logger
}

// NewTakeover creates an idle takeover module.
func NewTakeover(log *slog.Logger, rng *rand.Rand) *Takeover {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Takeover{
		operations: make(map[string]*TakeoverOperation),
		timers:     make(map[string]*time.Timer),
		rng:        rng,
		now:        time.Now,
		log:        log,
	}
}

// Start begins a takeover attempt on a drone. The success roll happens once,
// at start; failed operations stay visible until stopped or expired. home is
// the point a return_home command steers toward; target is required for
// move_to.
func (t *Takeover) Start(droneID string, method TakeoverMethod, command TakeoverCommand, target *geo.Point, home geo.Point, duration time.Duration) (TakeoverOperation, error) {
	rate, ok := takeoverSuccessRates[method]
	if !ok {
		return TakeoverOperation{}, fmt.Errorf("unknown takeover method %q", method)
	}
	if command == CommandMoveTo && target == nil {
		return TakeoverOperation{}, errors.New("move_to requires a target location")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	op := &TakeoverOperation{
		DroneID:   droneID,
		Method:    method,
		Command:   command,
		Target:    target,
		Home:      home,
		State:     TakeoverAttempting,
		StartTime: t.now(),
		Duration:  duration,
	}
	if t.rng.Float64() < rate {
		op.State = TakeoverControlled
	} else {
		op.State = TakeoverFailed
	}
	t.operations[droneID] = op

	if old, ok := t.timers[droneID]; ok {
		old.Stop()
	}
	if duration > 0 {
		t.timers[droneID] = time.AfterFunc(duration, func() {
			if err := t.Stop(droneID); err != nil {
				t.log.Debug("takeover already stopped", "drone_id", droneID)
			}
		})
	}

	t.log.Info("takeover attempt",
		"drone_id", droneID, "method", method, "command", command, "state", op.State)
	return *op, nil
}

// Stop releases control of a drone.
func (t *Takeover) Stop(droneID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.operations[droneID]; !ok {
		return fmt.Errorf("takeover of %s: %w", droneID, ErrNotActive)
	}
	delete(t.operations, droneID)
	if timer, ok := t.timers[droneID]; ok {
		timer.Stop()
		delete(t.timers, droneID)
	}
	t.log.Info("takeover released", "drone_id", droneID)
	return nil
}

// ForceLanding is a convenience wrapper for the land command.
func (t *Takeover) ForceLanding(droneID string, home geo.Point) (TakeoverOperation, error) {
	return t.Start(droneID, MethodMavlinkHijack, CommandLand, nil, home, 0)
}

// ForceReturnHome steers the drone back toward its origin.
func (t *Takeover) ForceReturnHome(droneID string, home geo.Point) (TakeoverOperation, error) {
	return t.Start(droneID, MethodGPSSpoofing, CommandReturnHome, nil, home, 0)
}

// EmergencyShutdown releases every active operation.
func (t *Takeover) EmergencyShutdown() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.operations)
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
	t.operations = make(map[string]*TakeoverOperation)
	t.log.Warn("emergency shutdown of all takeovers", "released", n)
	return n
}

// DetectVulnerabilities scans a drone for exploitable weaknesses. Results
// depend on drone type and signal quality.
func (t *Takeover) DetectVulnerabilities(d drone.Drone) []Vulnerability {
	var vulns []Vulnerability
	vulns = append(vulns, Vulnerability{
		Method:      MethodGPSSpoofing,
		Severity:    "high",
		Description: "civilian GPS receiver accepts unauthenticated signals",
	})
	switch d.Type {
	case drone.TypeCommercial:
		vulns = append(vulns, Vulnerability{
			Method:      MethodCommandInjection,
			Severity:    "medium",
			Description: "unencrypted control link on 2.4 GHz",
		})
	case drone.TypeDIY:
		vulns = append(vulns,
			Vulnerability{
				Method:      MethodMavlinkHijack,
				Severity:    "critical",
				Description: "MAVLink telemetry without link signing",
			},
			Vulnerability{
				Method:      MethodProtocolExploit,
				Severity:    "high",
				Description: "open telemetry port on 915 MHz",
			})
	}
	if d.SignalStrength < 40 {
		vulns = append(vulns, Vulnerability{
			Method:      MethodProtocolExploit,
			Severity:    "medium",
			Description: "degraded link susceptible to session hijack",
		})
	}
	return vulns
}

// Operations returns a snapshot of all tracked operations.
func (t *Takeover) Operations() map[string]TakeoverOperation {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]TakeoverOperation, len(t.operations))
	for id, op := range t.operations {
		out[id] = *op
	}
	return out
}

// Effect computes the takeover patch for a drone. Controlled drones execute
// the issued command; failed attempts leave the drone resisting with a raised
// threat level.
func (t *Takeover) Effect(d drone.Drone) drone.EffectPatch {
	t.mu.Lock()
	op, ok := t.operations[d.ID]
	if ok {
		opCopy := *op
		op = &opCopy
	}
	t.mu.Unlock()

	if !ok {
		return drone.EffectPatch{}
	}

	if op.State == TakeoverFailed {
		// Target detected the attempt and is resisting.
		return drone.EffectPatch{
			ThreatLevel:    drone.Threat(drone.ThreatHigh),
			TakeoverStatus: drone.String("resisting"),
		}
	}

	patch := drone.EffectPatch{
		ControlCompromised: drone.Bool(true),
		TakeoverStatus:     drone.String("controlled"),
		ControlledAction:   drone.String(string(op.Command)),
	}

	switch op.Command {
	case CommandLand:
		alt := d.Location.Altitude - 10
		if alt < 0 {
			alt = 0
		}
		loc := d.Location
		loc.Altitude = alt
		patch.Location = &loc
		patch.Speed = drone.Float(0)
	case CommandHover:
		patch.Speed = drone.Float(0)
	case CommandReturnHome:
		loc := stepToward(d.Location, op.Home, 0.1)
		patch.Location = &loc
	case CommandMoveTo:
		if op.Target != nil {
			loc := stepToward(d.Location, *op.Target, 0.1)
			patch.Location = &loc
		}
	case CommandDisconnect:
		patch.SignalStrength = drone.Float(d.SignalStrength * 0.3)
	case CommandShutdown:
		patch.Speed = drone.Float(0)
		patch.SignalStrength = drone.Float(0)
		loc := d.Location
		loc.Altitude = 0
		patch.Location = &loc
	}

	return patch
}

// stepToward moves fraction of the way from a to b, including altitude.
func stepToward(a, b geo.Point, fraction float64) geo.Point {
	return geo.Point{
		Latitude:  a.Latitude + (b.Latitude-a.Latitude)*fraction,
		Longitude: a.Longitude + (b.Longitude-a.Longitude)*fraction,
		Altitude:  a.Altitude + (b.Altitude-a.Altitude)*fraction,
	}
}
