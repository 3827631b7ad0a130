package countermeasure

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"borderops-sim/internal/drone"
)

// CaptureMethod is the physical interception equipment used.
type CaptureMethod string

const (
	CaptureNetGun      CaptureMethod = "net_gun"
	CaptureDrone       CaptureMethod = "capture_drone"
	CaptureInterceptor CaptureMethod = "interceptor"
	CaptureNetLauncher CaptureMethod = "net_launcher"
)

// Equipment describes the capability envelope of one capture method.
type Equipment struct {
	Method       CaptureMethod `json:"method"`
	RangeMeters  float64       `json:"range_meters"`
	SuccessRate  float64       `json:"success_rate"`
	TimeToTarget time.Duration `json:"time_to_target"`
	Available    bool          `json:"available"`
}

func defaultEquipment() map[CaptureMethod]*Equipment {
	return map[CaptureMethod]*Equipment{
		CaptureNetGun:      {Method: CaptureNetGun, RangeMeters: 50, SuccessRate: 0.75, TimeToTarget: 3 * time.Second, Available: true},
		CaptureDrone:       {Method: CaptureDrone, RangeMeters: 500, SuccessRate: 0.85, TimeToTarget: 15 * time.Second, Available: true},
		CaptureInterceptor: {Method: CaptureInterceptor, RangeMeters: 2000, SuccessRate: 0.95, TimeToTarget: 30 * time.Second, Available: true},
		CaptureNetLauncher: {Method: CaptureNetLauncher, RangeMeters: 100, SuccessRate: 0.80, TimeToTarget: 5 * time.Second, Available: true},
	}
}

// CaptureState is the lifecycle of a capture operation.
type CaptureState string

const (
	CaptureApproaching CaptureState = "approaching"
	CaptureSucceeded   CaptureState = "captured"
	CaptureFailed      CaptureState = "failed"
	CaptureAborted     CaptureState = "aborted"
)

// CaptureOperation tracks one physical interception attempt.
type CaptureOperation struct {
	DroneID   string        `json:"drone_id"`
	Method    CaptureMethod `json:"method"`
	State     CaptureState  `json:"state"`
	StartTime time.Time     `json:"start_time"`
	ETA       time.Time     `json:"eta"`
}

// Physical simulates net guns, capture drones, and interceptors. One
// operation per target drone; the resolution roll fires when the equipment
// reaches the target.
type Physical struct {
	mu         sync.Mutex
	equipment  map[CaptureMethod]*Equipment
	operations map[string]*CaptureOperation
	timers     map[string]*time.Timer

	rng *rand.Rand
	now func() time.Time
	log *slog.Logger
}

// NewPhysical creates a capture module with the default equipment loadout.
func NewPhysical(log *slog.Logger, rng *rand.Rand) *Physical {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Physical{
		equipment:  defaultEquipment(),
		operations: make(map[string]*CaptureOperation),
		timers:     make(map[string]*time.Timer),
		rng:        rng,
		now:        time.Now,
		log:        log,
	}
}

// Deploy launches capture equipment at a drone. distanceMeters is the current
// range to the target; it must be within the equipment envelope.
func (p *Physical) Deploy(droneID string, method CaptureMethod, distanceMeters float64) (CaptureOperation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	eq, ok := p.equipment[method]
	if !ok {
		return CaptureOperation{}, fmt.Errorf("unknown capture method %q", method)
	}
	if !eq.Available {
		return CaptureOperation{}, fmt.Errorf("%s is not available", method)
	}
	if distanceMeters > eq.RangeMeters {
		return CaptureOperation{}, fmt.Errorf("target at %.0fm exceeds %s range of %.0fm",
			distanceMeters, method, eq.RangeMeters)
	}
	if op, ok := p.operations[droneID]; ok && op.State == CaptureApproaching {
		return CaptureOperation{}, fmt.Errorf("capture of %s already in progress", droneID)
	}

	now := p.now()
	op := &CaptureOperation{
		DroneID:   droneID,
		Method:    method,
		State:     CaptureApproaching,
		StartTime: now,
		ETA:       now.Add(eq.TimeToTarget),
	}
	p.operations[droneID] = op
	eq.Available = false

	p.timers[droneID] = time.AfterFunc(eq.TimeToTarget, func() {
		p.resolve(droneID)
	})

	p.log.Info("capture deployed",
		"drone_id", droneID, "method", method,
		"distance_m", distanceMeters, "eta", eq.TimeToTarget)
	return *op, nil
}

// resolve fires when the equipment reaches the target and rolls success.
func (p *Physical) resolve(droneID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	op, ok := p.operations[droneID]
	if !ok || op.State != CaptureApproaching {
		return
	}
	eq := p.equipment[op.Method]
	if p.rng.Float64() < eq.SuccessRate {
		op.State = CaptureSucceeded
	} else {
		op.State = CaptureFailed
	}
	eq.Available = true
	delete(p.timers, droneID)
	p.log.Info("capture resolved", "drone_id", droneID, "method", op.Method, "state", op.State)
}

// Abort recalls the equipment before it reaches the target.
func (p *Physical) Abort(droneID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	op, ok := p.operations[droneID]
	if !ok {
		return fmt.Errorf("capture of %s: %w", droneID, ErrNotActive)
	}
	if op.State == CaptureApproaching {
		op.State = CaptureAborted
		p.equipment[op.Method].Available = true
	}
	if t, ok := p.timers[droneID]; ok {
		t.Stop()
		delete(p.timers, droneID)
	}
	delete(p.operations, droneID)
	p.log.Info("capture aborted", "drone_id", droneID)
	return nil
}

// EmergencyShutdown aborts every in-flight operation.
func (p *Physical) EmergencyShutdown() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for id, op := range p.operations {
		if op.State == CaptureApproaching {
			p.equipment[op.Method].Available = true
			n++
		}
		if t, ok := p.timers[id]; ok {
			t.Stop()
			delete(p.timers, id)
		}
		delete(p.operations, id)
	}
	p.log.Warn("emergency shutdown of all captures", "aborted", n)
	return n
}

// EquipmentStatus returns a copy of the equipment inventory.
func (p *Physical) EquipmentStatus() map[CaptureMethod]Equipment {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[CaptureMethod]Equipment, len(p.equipment))
	for m, eq := range p.equipment {
		out[m] = *eq
	}
	return out
}

// Operations returns a snapshot of all tracked capture operations.
func (p *Physical) Operations() map[string]CaptureOperation {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]CaptureOperation, len(p.operations))
	for id, op := range p.operations {
		out[id] = *op
	}
	return out
}

// Effect computes the capture patch for a drone. Approaching equipment marks
// the drone and reports progress; a successful capture grounds it.
func (p *Physical) Effect(d drone.Drone) drone.EffectPatch {
	p.mu.Lock()
	op, ok := p.operations[d.ID]
	var eq Equipment
	if ok {
		opCopy := *op
		op = &opCopy
		eq = *p.equipment[op.Method]
	}
	now := p.now()
	p.mu.Unlock()

	if !ok {
		return drone.EffectPatch{}
	}

	switch op.State {
	case CaptureApproaching:
		progress := 1.0
		if eq.TimeToTarget > 0 {
			progress = float64(now.Sub(op.StartTime)) / float64(eq.TimeToTarget)
			if progress > 1 {
				progress = 1
			} else if progress < 0 {
				progress = 0
			}
		}
		return drone.EffectPatch{
			CaptureApproaching: drone.Bool(true),
			CaptureMethod:      drone.String(string(op.Method)),
			CaptureProgress:    drone.Float(progress),
		}
	case CaptureSucceeded:
		loc := d.Location
		loc.Altitude = 0
		return drone.EffectPatch{
			Captured:           drone.Bool(true),
			CaptureApproaching: drone.Bool(false),
			CaptureMethod:      drone.String(string(op.Method)),
			CaptureProgress:    drone.Float(1),
			Speed:              drone.Float(0),
			Location:           &loc,
		}
	default:
		return drone.EffectPatch{}
	}
}
