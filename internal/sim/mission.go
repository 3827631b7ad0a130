package sim

import (
	"math"
	"time"

	"borderops-sim/internal/drone"
	"borderops-sim/internal/geo"
)

// Per-type mission envelopes. Military drones fly faster and longer and can
// evade; commercial drones favor survey patterns; DIY builds wander.
type missionProfile struct {
	minSpeed, maxSpeed float64 // m/s
	minDur, maxDur     time.Duration
	behaviors          []drone.Behavior
}

var missionProfiles = map[drone.Type]missionProfile{
	drone.TypeMilitary: {
		minSpeed: 15, maxSpeed: 35,
		minDur: 5 * time.Minute, maxDur: 15 * time.Minute,
		behaviors: []drone.Behavior{drone.BehaviorDirect, drone.BehaviorEvasive, drone.BehaviorGrid},
	},
	drone.TypeCommercial: {
		minSpeed: 5, maxSpeed: 15,
		minDur: 2 * time.Minute, maxDur: 10 * time.Minute,
		behaviors: []drone.Behavior{drone.BehaviorDirect, drone.BehaviorCircling, drone.BehaviorHovering, drone.BehaviorGrid},
	},
	drone.TypeDIY: {
		minSpeed: 3, maxSpeed: 10,
		minDur: time.Minute, maxDur: 5 * time.Minute,
		behaviors: []drone.Behavior{drone.BehaviorRandom, drone.BehaviorHovering, drone.BehaviorCircling},
	},
	drone.TypeUnknown: {
		minSpeed: 2, maxSpeed: 30,
		minDur: time.Minute, maxDur: 15 * time.Minute,
		behaviors: []drone.Behavior{
			drone.BehaviorDirect, drone.BehaviorCircling, drone.BehaviorHovering,
			drone.BehaviorEvasive, drone.BehaviorRandom, drone.BehaviorGrid,
		},
	},
}

// newMission builds a mission for a drone type against the current zone
// layout. 30% of missions run at the restricted zone; half of the rest
// patrol a hot zone; the remainder wander the border.
func (s *Simulator) newMission(dtype drone.Type) *drone.Mission {
	prof, ok := missionProfiles[dtype]
	if !ok {
		prof = missionProfiles[drone.TypeUnknown]
	}

	m := &drone.Mission{
		Speed:     prof.minSpeed + s.rand.Float64()*(prof.maxSpeed-prof.minSpeed),
		Duration:  prof.minDur + time.Duration(s.rand.Float64()*float64(prof.maxDur-prof.minDur)),
		StartTime: s.now(),
	}

	switch roll := s.rand.Float64(); {
	case roll < 0.3:
		if z, ok := s.restrictedZone(); ok {
			m.Type = drone.MissionInfiltration
			m.Target = z.Center
		} else {
			m.Type = drone.MissionReconnaissance
			m.Target = s.border.Center
		}
		m.Target.Altitude = 50 + s.rand.Float64()*450
	case roll < 0.65 && len(s.zones) > 0:
		if s.rand.Float64() < 0.5 {
			m.Type = drone.MissionPatrol
		} else {
			m.Type = drone.MissionReconnaissance
		}
		z := s.pickZone()
		m.Target = z.Center
		m.Target.Altitude = 50 + s.rand.Float64()*450
	default:
		m.Type = drone.MissionPatrol
		m.Target = geo.RandomPointInBorder(s.rand, s.border, 0.2, 0, 1)
	}

	if m.Type == drone.MissionInfiltration {
		m.Behavior = drone.BehaviorDirect
	} else {
		m.Behavior = prof.behaviors[s.rand.Intn(len(prof.behaviors))]
	}
	return m
}

type behaviorFunc func(s *Simulator, d *drone.Drone, m *drone.Mission, dt float64)

var behaviorHandlers = map[drone.Behavior]behaviorFunc{
	drone.BehaviorDirect:   (*Simulator).flyDirect,
	drone.BehaviorCircling: (*Simulator).flyCircling,
	drone.BehaviorHovering: (*Simulator).flyHovering,
	drone.BehaviorEvasive:  (*Simulator).flyEvasive,
	drone.BehaviorRandom:   (*Simulator).flyRandom,
	drone.BehaviorGrid:     (*Simulator).flyGrid,
}

// advanceMission moves a mission-active drone by one tick. Returns false when
// the mission has completed and should be dropped.
func (s *Simulator) advanceMission(d *drone.Drone, m *drone.Mission, dt float64) bool {
	if s.now().Sub(m.StartTime) > m.Duration {
		m.Completed = true
		return false
	}
	handler, ok := behaviorHandlers[m.Behavior]
	if !ok {
		handler = (*Simulator).flyDirect
	}
	handler(s, d, m, dt)
	return !m.Completed
}

// flyDirect heads straight at the target with a little heading noise. On
// arrival, infiltrators settle into a hover, patrols start orbiting, and
// reconnaissance runs are done.
func (s *Simulator) flyDirect(d *drone.Drone, m *drone.Mission, dt float64) {
	if distanceDeg(d.Location, m.Target) < 0.05 {
		switch m.Type {
		case drone.MissionInfiltration:
			m.Behavior = drone.BehaviorHovering
		case drone.MissionPatrol:
			m.Behavior = drone.BehaviorCircling
		default:
			m.Completed = true
		}
		return
	}
	d.Heading = wrapHeading(geo.Bearing(d.Location, m.Target) + s.rand.Float64()*10 - 5)
	d.Speed = m.Speed
	d.Location = geo.Project(d.Location, d.Heading, d.Speed, dt)
}

// flyCircling steers toward the target until close, then flies perpendicular
// to the target bearing, producing an orbit.
func (s *Simulator) flyCircling(d *drone.Drone, m *drone.Mission, dt float64) {
	var heading float64
	if distanceDeg(d.Location, m.Target) > 0.03 {
		heading = geo.Bearing(d.Location, m.Target)
	} else {
		heading = geo.Bearing(m.Target, d.Location) + 90
	}
	d.Heading = wrapHeading(heading + s.rand.Float64()*6 - 3)
	d.Speed = m.Speed
	d.Location = geo.Project(d.Location, d.Heading, d.Speed, dt)
}

// flyHovering holds position with micro-drift while speed bleeds off.
func (s *Simulator) flyHovering(d *drone.Drone, m *drone.Mission, dt float64) {
	d.Location.Latitude += s.rand.Float64()*0.0002 - 0.0001
	d.Location.Longitude += s.rand.Float64()*0.0002 - 0.0001
	d.Location.Altitude += s.rand.Float64()*10 - 5
	if d.Location.Altitude < 0 {
		d.Location.Altitude = 0
	}
	hoverSpeed := 0.5 + s.rand.Float64()*2.5
	d.Speed = d.Speed*0.7 + hoverSpeed*0.3
	d.Heading = wrapHeading(d.Heading + s.rand.Float64()*60 - 30)
}

// flyEvasive makes large random speed and heading swings, bouncing off the
// border and occasionally pulling back toward the target when it strays.
func (s *Simulator) flyEvasive(d *drone.Drone, m *drone.Mission, dt float64) {
	d.Speed += s.rand.Float64()*6 - 3
	if d.Speed < 1 {
		d.Speed = 1
	}
	d.Heading = wrapHeading(d.Heading + s.rand.Float64()*90 - 45)
	if distanceDeg(d.Location, m.Target) > 0.1 && s.rand.Float64() < 0.3 {
		toTarget := geo.Bearing(d.Location, m.Target)
		d.Heading = wrapHeading(d.Heading*0.7 + toTarget*0.3)
	}
	s.moveWithReflect(d, dt)
}

// flyRandom jitters gently most ticks with the occasional sharp turn or
// speed jump.
func (s *Simulator) flyRandom(d *drone.Drone, m *drone.Mission, dt float64) {
	if s.rand.Float64() < 0.2 {
		d.Heading = wrapHeading(d.Heading + s.rand.Float64()*180 - 90)
	} else {
		d.Heading = wrapHeading(d.Heading + s.rand.Float64()*20 - 10)
	}
	if s.rand.Float64() < 0.1 {
		d.Speed += s.rand.Float64()*10 - 5
	} else {
		d.Speed += s.rand.Float64()*2 - 1
	}
	if d.Speed < 1 {
		d.Speed = 1
	}
	s.moveWithReflect(d, dt)
}

// flyGrid sweeps a 3x3 boustrophedon lattice centered on the target, then
// settles into a hover.
func (s *Simulator) flyGrid(d *drone.Drone, m *drone.Mission, dt float64) {
	if len(m.Waypoints) == 0 {
		m.Waypoints = gridWaypoints(m.Target, 0.02)
		m.CurrentWaypoint = 0
	}
	wp := m.Waypoints[m.CurrentWaypoint]
	if distanceDeg(d.Location, wp) < 0.01 {
		m.CurrentWaypoint++
		if m.CurrentWaypoint >= len(m.Waypoints) {
			m.CurrentWaypoint = 0
			m.Behavior = drone.BehaviorHovering
			return
		}
		wp = m.Waypoints[m.CurrentWaypoint]
	}
	d.Heading = wrapHeading(geo.Bearing(d.Location, wp) + s.rand.Float64()*4 - 2)
	d.Speed = m.Speed
	d.Location = geo.Project(d.Location, d.Heading, d.Speed, dt)
}

// gridWaypoints builds the zigzag survey lattice: rows scan alternating
// directions so the path never doubles back.
func gridWaypoints(center geo.Point, spacing float64) []geo.Point {
	const n = 3
	wps := make([]geo.Point, 0, n*n)
	for row := 0; row < n; row++ {
		lat := center.Latitude + float64(row-1)*spacing
		for col := 0; col < n; col++ {
			c := col
			if row%2 == 1 {
				c = n - 1 - col
			}
			wps = append(wps, geo.Point{
				Latitude:  lat,
				Longitude: center.Longitude + float64(c-1)*spacing,
				Altitude:  center.Altitude,
			})
		}
	}
	return wps
}

// moveWithReflect projects the drone forward, reversing heading when the
// projected position would leave the border.
func (s *Simulator) moveWithReflect(d *drone.Drone, dt float64) {
	next := geo.Project(d.Location, d.Heading, d.Speed, dt)
	if !geo.InBorder(next, s.border) {
		d.Heading = wrapHeading(d.Heading + 180)
		next = geo.Project(d.Location, d.Heading, d.Speed, dt)
	}
	d.Location = next
}

// wrapHeading normalizes a heading into [0,360).
func wrapHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}
