package sim

import (
	"fmt"
	"strings"

	"borderops-sim/internal/drone"
	"borderops-sim/internal/geo"
)

// randomDroneType draws from the observed traffic mix: mostly commercial,
// some DIY builds, rare military or unidentified craft.
func (s *Simulator) randomDroneType() drone.Type {
	switch roll := s.rand.Float64(); {
	case roll < 0.70:
		return drone.TypeCommercial
	case roll < 0.90:
		return drone.TypeDIY
	case roll < 0.95:
		return drone.TypeMilitary
	default:
		return drone.TypeUnknown
	}
}

// randomDrone creates a drone with type-specific characteristics. A spawn
// inside the restricted zone raises the baseline threat by one step. When a
// mission is supplied the drone starts out heading at its target.
func (s *Simulator) randomDrone(id string, m *drone.Mission) *drone.Drone {
	dtype := s.randomDroneType()
	loc := s.sampleLocation(true)

	var signal, speed, confidence, size float64
	var threat drone.ThreatLevel
	switch dtype {
	case drone.TypeMilitary:
		// signal dampening, high speed, hard to identify
		signal = 30 + s.rand.Float64()*40
		speed = 10 + s.rand.Float64()*30
		threat = pickThreat(s, drone.ThreatMedium, drone.ThreatHigh)
		confidence = 0.5 + s.rand.Float64()*0.3
		size = 2 + s.rand.Float64()*3
	case drone.TypeCommercial:
		signal = 60 + s.rand.Float64()*30
		speed = 5 + s.rand.Float64()*10
		threat = pickThreat(s, drone.ThreatNone, drone.ThreatLow)
		confidence = 0.7 + s.rand.Float64()*0.25
		size = 0.3 + s.rand.Float64()*1.2
	case drone.TypeDIY:
		signal = 50 + s.rand.Float64()*35
		speed = 3 + s.rand.Float64()*17
		threat = pickThreat(s, drone.ThreatLow, drone.ThreatMedium)
		confidence = 0.6 + s.rand.Float64()*0.3
		size = 0.2 + s.rand.Float64()*0.8
	default:
		signal = 20 + s.rand.Float64()*40
		speed = 5 + s.rand.Float64()*20
		threat = pickThreat(s, drone.ThreatLow, drone.ThreatMedium, drone.ThreatHigh)
		confidence = 0.3 + s.rand.Float64()*0.4
		size = 0.5 + s.rand.Float64()*2.5
	}

	if s.inRestrictedZone(loc) {
		threat = threat.Escalate()
	}

	if id == "" {
		id = fmt.Sprintf("%s%04d", strings.ToUpper(string(dtype[0])), s.rand.Intn(10000))
	}

	d := &drone.Drone{
		ID:             id,
		Timestamp:      s.now(),
		Location:       loc,
		Type:           dtype,
		SignalStrength: signal,
		Speed:          speed,
		Heading:        s.rand.Float64() * 360,
		ThreatLevel:    threat,
		EstimatedSize:  size,
		Confidence:     confidence,
		Metadata: map[string]string{
			"battery":   fmt.Sprintf("%.0f", 30+s.rand.Float64()*70),
			"model":     fmt.Sprintf("Drone-%d", 100+s.rand.Intn(900)),
			"frequency": fmt.Sprintf("%.1f GHz", 2.4+s.rand.Float64()*3.4),
		},
	}
	if m != nil {
		d.Heading = wrapHeading(geo.Bearing(d.Location, m.Target))
	}
	return d
}

func pickThreat(s *Simulator, levels ...drone.ThreatLevel) drone.ThreatLevel {
	return levels[s.rand.Intn(len(levels))]
}
