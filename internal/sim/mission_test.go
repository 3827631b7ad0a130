package sim

import (
	"testing"
	"time"

	"borderops-sim/internal/drone"
	"borderops-sim/internal/geo"
)

func validBehaviorFor(dtype drone.Type, b drone.Behavior) bool {
	for _, allowed := range missionProfiles[dtype].behaviors {
		if allowed == b {
			return true
		}
	}
	// infiltration missions force direct approach regardless of profile
	return b == drone.BehaviorDirect
}

func TestNewMissionEnvelopes(t *testing.T) {
	s := newTestSim(0)
	types := []drone.Type{drone.TypeMilitary, drone.TypeCommercial, drone.TypeDIY, drone.TypeUnknown}

	for _, dtype := range types {
		prof := missionProfiles[dtype]
		for i := 0; i < 100; i++ {
			m := s.newMission(dtype)
			if m.Speed < prof.minSpeed || m.Speed > prof.maxSpeed {
				t.Fatalf("%s mission speed %f outside [%f,%f]", dtype, m.Speed, prof.minSpeed, prof.maxSpeed)
			}
			if m.Duration < prof.minDur || m.Duration > prof.maxDur {
				t.Fatalf("%s mission duration %s outside [%s,%s]", dtype, m.Duration, prof.minDur, prof.maxDur)
			}
			if !validBehaviorFor(dtype, m.Behavior) {
				t.Fatalf("%s mission got behavior %s outside its profile", dtype, m.Behavior)
			}
			if m.Type == drone.MissionInfiltration {
				z, ok := s.restrictedZone()
				if !ok {
					t.Fatal("infiltration mission without a restricted zone")
				}
				if m.Target.Latitude != z.Center.Latitude || m.Target.Longitude != z.Center.Longitude {
					t.Fatalf("infiltration must target the restricted zone, got %+v", m.Target)
				}
			}
		}
	}
}

func TestMissionExpires(t *testing.T) {
	s := newTestSim(0)
	d := &drone.Drone{ID: "T1", Location: s.Border().Center, Speed: 10}
	m := &drone.Mission{
		Type:      drone.MissionPatrol,
		Behavior:  drone.BehaviorDirect,
		Target:    s.Border().Center,
		Speed:     10,
		Duration:  time.Minute,
		StartTime: s.now().Add(-2 * time.Minute),
	}
	if s.advanceMission(d, m, 1.0) {
		t.Fatal("expired mission must complete")
	}
	if !m.Completed {
		t.Fatal("completed flag not set")
	}
}

func TestDirectArrivalTransitions(t *testing.T) {
	s := newTestSim(0)
	center := s.Border().Center

	cases := []struct {
		mtype drone.MissionType
		want  drone.Behavior
		done  bool
	}{
		{drone.MissionPatrol, drone.BehaviorCircling, false},
		{drone.MissionInfiltration, drone.BehaviorHovering, false},
		{drone.MissionReconnaissance, drone.BehaviorDirect, true},
	}
	for _, tc := range cases {
		d := &drone.Drone{ID: "T1", Location: center, Speed: 10}
		m := &drone.Mission{
			Type: tc.mtype, Behavior: drone.BehaviorDirect,
			Target: center, Speed: 10,
			Duration: time.Hour, StartTime: s.now(),
		}
		s.flyDirect(d, m, 1.0)
		if tc.done {
			if !m.Completed {
				t.Fatalf("%s should complete on arrival", tc.mtype)
			}
			continue
		}
		if m.Behavior != tc.want {
			t.Fatalf("%s on arrival: expected %s, got %s", tc.mtype, tc.want, m.Behavior)
		}
	}
}

func TestDirectApproachesTarget(t *testing.T) {
	s := newTestSim(0)
	b := s.Border()
	d := &drone.Drone{
		ID:       "T1",
		Location: geo.Point{Latitude: b.Center.Latitude - 0.04, Longitude: b.Center.Longitude - 0.04, Altitude: 100},
		Speed:    20,
	}
	m := &drone.Mission{
		Type: drone.MissionReconnaissance, Behavior: drone.BehaviorDirect,
		Target: b.Center, Speed: 20,
		Duration: time.Hour, StartTime: s.now(),
	}
	before := geo.Distance(d.Location, m.Target)
	for i := 0; i < 10; i++ {
		s.flyDirect(d, m, 1.0)
	}
	if after := geo.Distance(d.Location, m.Target); after >= before {
		t.Fatalf("direct flight must close on the target: %.3fkm -> %.3fkm", before, after)
	}
}

func TestHoveringStaysPut(t *testing.T) {
	s := newTestSim(0)
	start := s.Border().Center
	start.Altitude = 100
	d := &drone.Drone{ID: "T1", Location: start, Speed: 20, Heading: 90}
	m := &drone.Mission{Behavior: drone.BehaviorHovering, Target: start, Speed: 5}

	for i := 0; i < 50; i++ {
		s.flyHovering(d, m, 1.0)
	}
	if dist := geo.Distance(d.Location, start); dist > 1.0 {
		t.Fatalf("hovering drone drifted %.3f km", dist)
	}
	if d.Speed > 10 {
		t.Fatalf("hover speed should bleed off, still %.1f m/s", d.Speed)
	}
	if d.Location.Altitude < 0 {
		t.Fatal("altitude went negative")
	}
}

func TestEvasiveStaysInBorder(t *testing.T) {
	s := newTestSim(0)
	d := &drone.Drone{ID: "T1", Location: s.Border().Center, Speed: 20, Heading: 45}
	m := &drone.Mission{Behavior: drone.BehaviorEvasive, Target: s.Border().Center, Speed: 20}

	for i := 0; i < 200; i++ {
		s.flyEvasive(d, m, 1.0)
		if !geo.InBorder(d.Location, s.Border()) {
			t.Fatalf("evasive drone escaped the border at step %d: %+v", i, d.Location)
		}
		if d.Speed < 1 {
			t.Fatalf("evasive speed floor violated: %f", d.Speed)
		}
	}
}

func TestRandomWalkStaysInBorder(t *testing.T) {
	s := newTestSim(0)
	d := &drone.Drone{ID: "T1", Location: s.Border().Center, Speed: 10, Heading: 0}
	m := &drone.Mission{Behavior: drone.BehaviorRandom, Target: s.Border().Center, Speed: 10}

	for i := 0; i < 200; i++ {
		s.flyRandom(d, m, 1.0)
		if !geo.InBorder(d.Location, s.Border()) {
			t.Fatalf("random-walk drone escaped the border at step %d", i)
		}
	}
}

func TestGridWaypointLattice(t *testing.T) {
	center := geo.Point{Latitude: 16.7769, Longitude: 98.9761, Altitude: 200}
	wps := gridWaypoints(center, 0.02)
	if len(wps) != 9 {
		t.Fatalf("expected 9 waypoints, got %d", len(wps))
	}
	// boustrophedon: middle row scans back the other way
	if wps[2].Longitude != wps[3].Longitude {
		t.Fatalf("row transition must not jump across the lattice: %f vs %f",
			wps[2].Longitude, wps[3].Longitude)
	}
	for _, wp := range wps {
		if wp.Altitude != center.Altitude {
			t.Fatal("waypoints keep the target altitude")
		}
	}
}

func TestGridSweepCompletes(t *testing.T) {
	s := newTestSim(0)
	center := s.Border().Center
	center.Altitude = 200
	d := &drone.Drone{ID: "T1", Location: center, Speed: 30}
	m := &drone.Mission{
		Behavior: drone.BehaviorGrid, Target: center, Speed: 30,
		Duration: time.Hour, StartTime: s.now(),
	}

	for i := 0; i < 2000 && m.Behavior == drone.BehaviorGrid; i++ {
		s.flyGrid(d, m, 1.0)
	}
	if m.Behavior != drone.BehaviorHovering {
		t.Fatalf("grid sweep should settle into hovering, stuck at waypoint %d", m.CurrentWaypoint)
	}
}

func TestMissionRenewalAfterCompletion(t *testing.T) {
	s := newTestSim(0)
	d := s.randomDrone("T9999", nil)
	s.mu.Lock()
	s.drones[d.ID] = d
	s.missions[d.ID] = &drone.Mission{
		Type: drone.MissionPatrol, Behavior: drone.BehaviorDirect,
		Target: s.border.Center, Speed: 10,
		Duration: time.Second, StartTime: s.now().Add(-time.Minute),
	}
	s.mu.Unlock()

	renewed, dropped := 0, 0
	for i := 0; i < 100; i++ {
		s.mu.Lock()
		s.missions[d.ID] = &drone.Mission{
			Type: drone.MissionPatrol, Behavior: drone.BehaviorDirect,
			Target: s.border.Center, Speed: 10,
			Duration: time.Second, StartTime: s.now().Add(-time.Minute),
		}
		s.updateDrone(d, 1.0)
		if _, ok := s.missions[d.ID]; ok {
			renewed++
		} else {
			dropped++
		}
		s.mu.Unlock()
	}
	// 70% renewal chance: both outcomes must occur over 100 trials
	if renewed == 0 || dropped == 0 {
		t.Fatalf("mission renewal should be probabilistic: renewed=%d dropped=%d", renewed, dropped)
	}
}
