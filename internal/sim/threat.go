package sim

import (
	"fmt"

	"borderops-sim/internal/drone"
)

// analyzeThreat inspects a drone for anomalous signal, speed, or altitude
// and returns a possibly-elevated threat level. The level only ever goes up.
// An alert is emitted when the analysis changed the level to high or worse;
// repeated analysis of an unchanged drone stays silent.
func (s *Simulator) analyzeThreat(d *drone.Drone) (drone.ThreatLevel, *drone.Alert) {
	prior := d.ThreatLevel
	level := prior

	// Very weak signals suggest stealth gear; implausibly strong ones
	// suggest a spoofed transponder.
	if d.SignalStrength < 20 || d.SignalStrength > 95 {
		if !level.AtLeast(drone.ThreatMedium) {
			level = drone.ThreatMedium
		}
	}
	if d.Speed > 30 {
		if !level.AtLeast(drone.ThreatHigh) {
			level = drone.ThreatHigh
		}
	}
	if d.Location.Altitude < 10 || d.Location.Altitude > 1000 {
		if !level.AtLeast(drone.ThreatMedium) {
			level = drone.ThreatMedium
		}
	}

	if level != prior && level.AtLeast(drone.ThreatHigh) {
		alert := s.newAlert(d, drone.AlertUnauthorizedFlight, level,
			fmt.Sprintf("drone %s flight profile escalated to %s threat", d.ID, level))
		return level, alert
	}
	return level, nil
}
