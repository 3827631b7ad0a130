package countermeasure

import (
	"log/slog"
	"math/rand"
	"time"

	"borderops-sim/internal/drone"
	"borderops-sim/internal/geo"
)

// Suite bundles the three countermeasure modules behind one effect port. The
// simulation engine calls Apply once per drone per tick and merges the
// returned record; the modules themselves never touch the drone registry.
type Suite struct {
	Jammer   *Jammer
	Takeover *Takeover
	Physical *Physical

	// Position of the jamming emitter, used for the inverse-distance model.
	EmitterLocation geo.Point
}

// NewSuite creates a suite with all modules idle. The emitter sits at the
// given point, typically the border center.
func NewSuite(log *slog.Logger, rng *rand.Rand, emitter geo.Point) *Suite {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	// each module gets its own generator; they lock independently
	return &Suite{
		Jammer:          NewJammer(log, rand.New(rand.NewSource(rng.Int63()))),
		Takeover:        NewTakeover(log, rand.New(rand.NewSource(rng.Int63()))),
		Physical:        NewPhysical(log, rand.New(rand.NewSource(rng.Int63()))),
		EmitterLocation: emitter,
	}
}

// Apply runs every module's effect against the drone and returns the patched
// copy. Jamming is distance-dependent; takeover and capture are per-target.
func (s *Suite) Apply(d drone.Drone) drone.Drone {
	distKM := geo.Distance(d.Location, s.EmitterLocation)
	out := drone.ApplyPatch(d, s.Jammer.Effect(d, distKM*1000))
	out = drone.ApplyPatch(out, s.Takeover.Effect(out))
	out = drone.ApplyPatch(out, s.Physical.Effect(out))
	return out
}

// Status is the aggregate countermeasure snapshot broadcast to clients.
type Status struct {
	Jammer    JammerStatus                 `json:"jammer"`
	Takeovers map[string]TakeoverOperation `json:"takeovers"`
	Captures  map[string]CaptureOperation  `json:"captures"`
	Equipment map[CaptureMethod]Equipment  `json:"equipment"`
}

// Status collects the state of all three modules.
func (s *Suite) Status() Status {
	return Status{
		Jammer:    s.Jammer.Status(),
		Takeovers: s.Takeover.Operations(),
		Captures:  s.Physical.Operations(),
		Equipment: s.Physical.EquipmentStatus(),
	}
}

// EmergencyShutdown deactivates everything across all modules and returns the
// number of stopped operations.
func (s *Suite) EmergencyShutdown() int {
	n := s.Jammer.EmergencyShutdown()
	n += s.Takeover.EmergencyShutdown()
	n += s.Physical.EmergencyShutdown()
	return n
}
