package sim

import (
	"context"
	"fmt"
	"time"

	"borderops-sim/internal/drone"
	"borderops-sim/internal/logging"
)

// Run starts the simulation loop and stops when the context is done. The
// ticker follows runtime interval changes at the next tick boundary.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	s.mu.Lock()
	s.log = log
	interval := s.tickInterval
	s.mu.Unlock()

	log.Info("starting simulator", "tick_interval", interval, "drones", len(s.drones))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
			if next := s.TickInterval(); next != interval {
				interval = next
				ticker.Reset(interval)
				log.Info("tick interval changed", "tick_interval", interval)
			}
		case <-ctx.Done():
			log.Info("stopping simulator")
			return
		}
	}
}

// tick runs one full update cycle: advance every drone, analyze threats,
// fire alerts, apply countermeasure effects, adjust the population, and
// broadcast the results.
func (s *Simulator) tick() {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickCount++
	dt := s.tickInterval.Seconds()

	for _, d := range s.drones {
		s.updateDrone(d, dt)
	}
	s.applyEffects()
	s.adjustPopulation()

	batch := s.snapshotLocked()
	if bw, ok := s.writer.(batchDroneWriter); ok {
		if err := bw.WriteBatch(batch); err != nil {
			s.log.Error("batch write failed", "err", err)
		}
	} else if s.writer != nil {
		for _, d := range batch {
			if err := s.writer.Write(d); err != nil {
				s.log.Error("write failed", "drone_id", d.ID, "err", err)
			}
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.Broadcast("drones", batch)
		if s.effects != nil {
			s.broadcaster.Broadcast("countermeasure_status", s.effects.Status())
		}
	}

	if s.metrics != nil {
		s.metrics.TicksTotal.Inc()
		s.metrics.TickDuration.Observe(time.Since(start).Seconds())
		s.metrics.ActiveDrones.Set(float64(len(s.drones)))
	}
}

// updateDrone advances one drone by one tick. The whole update is atomic:
// position, threat analysis, and alert checks all happen before the next
// drone is touched.
func (s *Simulator) updateDrone(d *drone.Drone, dt float64) {
	if d.Captured {
		// grounded; nothing moves
		d.Timestamp = s.now()
		return
	}

	if m, ok := s.missions[d.ID]; ok {
		if !s.advanceMission(d, m, dt) {
			delete(s.missions, d.ID)
			if s.rand.Float64() < 0.7 {
				next := s.newMission(d.Type)
				s.missions[d.ID] = next
			}
		}
	} else {
		s.driftFree(d, dt)
	}
	d.Timestamp = s.now()

	// Lingering in the restricted zone draws attention.
	if s.inRestrictedZone(d.Location) && s.rand.Float64() < 0.3 {
		d.ThreatLevel = d.ThreatLevel.Escalate()
	}

	level, alert := s.analyzeThreat(d)
	d.ThreatLevel = level
	if alert != nil {
		s.recordAlert(alert)
	}
	s.checkZoneAlerts(d, alert != nil)
}

// driftFree is the missionless path: small random jitter on heading, speed,
// and signal, then dead-reckoning with reflection at the border.
func (s *Simulator) driftFree(d *drone.Drone, dt float64) {
	if s.rand.Float64() < 0.3 {
		d.Heading = wrapHeading(d.Heading + s.rand.Float64()*30 - 15)
	}
	if s.rand.Float64() < 0.3 {
		d.Speed += s.rand.Float64()*2 - 1
		if d.Speed < 0 {
			d.Speed = 0
		}
	}
	d.SignalStrength += s.rand.Float64()*10 - 5
	if d.SignalStrength < 0 {
		d.SignalStrength = 0
	} else if d.SignalStrength > 100 {
		d.SignalStrength = 100
	}
	d.Location.Altitude += s.rand.Float64()*20 - 10
	if d.Location.Altitude < 0 {
		d.Location.Altitude = 0
	}
	s.moveWithReflect(d, dt)
}

// checkZoneAlerts fires the position-based alerts: restricted zone entry and
// westward border violation. unauthorized_flight is also raised for high or
// critical drones unless the analyzer already reported the escalation.
func (s *Simulator) checkZoneAlerts(d *drone.Drone, analyzerFired bool) {
	if s.inRestrictedZone(d.Location) {
		s.recordAlert(s.newAlert(d, drone.AlertRestrictedZone, d.ThreatLevel,
			fmt.Sprintf("drone %s inside restricted zone", d.ID)))
	}
	if d.Location.Longitude < s.border.Center.Longitude-s.border.Width/2 {
		// crossing westward over the boundary is always treated as serious
		s.recordAlert(s.newAlert(d, drone.AlertBorderViolation, drone.ThreatHigh,
			fmt.Sprintf("drone %s crossed the border", d.ID)))
	}
	if !analyzerFired && d.ThreatLevel.AtLeast(drone.ThreatHigh) {
		s.recordAlert(s.newAlert(d, drone.AlertUnauthorizedFlight, d.ThreatLevel,
			fmt.Sprintf("drone %s operating at %s threat", d.ID, d.ThreatLevel)))
	}
}

// applyEffects runs the countermeasure ports against every drone and
// records alerts on effect edges (newly jammed, newly controlled).
func (s *Simulator) applyEffects() {
	if s.effects == nil {
		return
	}
	for _, d := range s.drones {
		before := d.Clone()
		after := s.effects.Apply(before)

		if !before.IsJammed && after.IsJammed {
			s.recordAlert(s.newAlert(d, drone.AlertSignalInterference, after.ThreatLevel,
				fmt.Sprintf("drone %s signal jammed", d.ID)))
		}
		if !before.ControlCompromised && after.ControlCompromised {
			s.recordAlert(s.newAlert(d, drone.AlertSignalInterference, after.ThreatLevel,
				fmt.Sprintf("drone %s control link compromised", d.ID)))
		}
		*d = after
	}
}

// adjustPopulation occasionally spawns or retires a drone, keeping the
// registry within a soft band around the configured size.
func (s *Simulator) adjustPopulation() {
	if s.rand.Float64() >= 0.05 {
		return
	}
	if s.rand.Float64() < 0.7 {
		if len(s.drones) >= s.targetDrones+3 {
			return
		}
		d := s.randomDrone("", nil)
		if s.rand.Float64() < 0.5 {
			m := s.newMission(d.Type)
			s.missions[d.ID] = m
		}
		s.drones[d.ID] = d
		s.recordAlert(s.newAlert(d, drone.AlertNewDetection, d.ThreatLevel,
			fmt.Sprintf("new %s drone detected: %s", d.Type, d.ID)))
		s.log.Debug("drone spawned", "drone_id", d.ID, "type", d.Type)
	} else {
		if len(s.drones) <= s.targetDrones-2 {
			return
		}
		for id := range s.drones {
			delete(s.drones, id)
			delete(s.missions, id)
			s.log.Debug("drone signal lost", "drone_id", id)
			break
		}
	}
}

// recordAlert appends to the alert log and pushes the alert to the sinks.
// Caller holds the lock.
func (s *Simulator) recordAlert(a *drone.Alert) {
	s.alerts = append(s.alerts, *a)
	if s.alertWriter != nil {
		if err := s.alertWriter.WriteAlert(*a); err != nil {
			s.log.Error("alert write failed", "alert_id", a.ID, "err", err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast("alert", *a)
	}
	if s.metrics != nil {
		s.metrics.AlertsTotal.WithLabelValues(string(a.AlertType)).Inc()
	}
}
