package sim

import (
	"math"

	"borderops-sim/internal/drone"
	"borderops-sim/internal/geo"
)

// generateHotZones lays out count weighted zones on random edges of the
// border plus one restricted zone at the center. The layout is fixed until
// the next reset.
func (s *Simulator) generateHotZones(count int) []drone.HotZone {
	zones := make([]drone.HotZone, 0, count+1)
	minDim := math.Min(s.border.Width, s.border.Height)

	for i := 0; i < count; i++ {
		var center geo.Point
		// Place the zone on a random edge, offset within 80% of its half-length.
		if s.rand.Float64() < 0.5 {
			// horizontal edge, top or bottom
			sign := 1.0
			if s.rand.Float64() < 0.5 {
				sign = -1.0
			}
			center = geo.Point{
				Latitude:  s.border.Center.Latitude + sign*s.border.Height/2,
				Longitude: s.border.Center.Longitude + (s.rand.Float64()*2-1)*0.8*s.border.Width/2,
			}
		} else {
			// vertical edge, east or west
			sign := 1.0
			if s.rand.Float64() < 0.5 {
				sign = -1.0
			}
			center = geo.Point{
				Latitude:  s.border.Center.Latitude + (s.rand.Float64()*2-1)*0.8*s.border.Height/2,
				Longitude: s.border.Center.Longitude + sign*s.border.Width/2,
			}
		}
		zones = append(zones, drone.HotZone{
			Center: center,
			Radius: minDim * (0.05 + s.rand.Float64()*0.10),
			Weight: 0.5 + s.rand.Float64()*0.5,
		})
	}

	zones = append(zones, drone.HotZone{
		Center:     s.border.Center,
		Radius:     minDim * 0.1,
		Weight:     0.8,
		Restricted: true,
	})
	return zones
}

// sampleLocation picks a spawn or target point. With preferHotZones set it
// lands inside a weighted-random zone 70% of the time; otherwise it falls
// back to an edge-biased random point in the border.
func (s *Simulator) sampleLocation(preferHotZones bool) geo.Point {
	if preferHotZones && len(s.zones) > 0 && s.rand.Float64() < 0.7 {
		z := s.pickZone()
		// sqrt for area-uniform sampling within the disk
		r := z.Radius * math.Sqrt(s.rand.Float64())
		theta := s.rand.Float64() * 2 * math.Pi
		return geo.Point{
			Latitude:  z.Center.Latitude + r*math.Sin(theta),
			Longitude: z.Center.Longitude + r*math.Cos(theta),
			Altitude:  50 + s.rand.Float64()*450,
		}
	}
	return geo.RandomPointInBorder(s.rand, s.border, 0.4, 0, 1)
}

// pickZone selects a hot zone with probability proportional to its weight.
func (s *Simulator) pickZone() drone.HotZone {
	total := 0.0
	for _, z := range s.zones {
		total += z.Weight
	}
	roll := s.rand.Float64() * total
	for _, z := range s.zones {
		roll -= z.Weight
		if roll <= 0 {
			return z
		}
	}
	return s.zones[len(s.zones)-1]
}

// restrictedZone returns the zone flagged restricted, if the layout has one.
func (s *Simulator) restrictedZone() (drone.HotZone, bool) {
	for _, z := range s.zones {
		if z.Restricted {
			return z, true
		}
	}
	return drone.HotZone{}, false
}

// inRestrictedZone checks the restricted hot zone and, as a safety net, a
// legacy circle of radius min(width,height)/6 around the border center.
// Either test is sufficient.
func (s *Simulator) inRestrictedZone(p geo.Point) bool {
	for _, z := range s.zones {
		if !z.Restricted {
			continue
		}
		if geo.Distance(p, z.Center)/111.0 < z.Radius {
			return true
		}
	}
	fallback := math.Min(s.border.Width, s.border.Height) / 6
	return geo.Distance(p, s.border.Center)/111.0 < fallback
}

// distanceDeg measures separation in border units (degrees). Mission
// behavior thresholds are expressed on this scale.
func distanceDeg(a, b geo.Point) float64 {
	return geo.Distance(a, b) / 111.0
}
