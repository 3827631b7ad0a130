// Package geo holds the coordinate math used by the border simulation:
// great-circle distances, bearings, dead-reckoning projection, and sampling
// inside the rotated border rectangle.
package geo

import (
	"math"
	"math/rand"
)

// EarthRadiusKM is the spherical Earth radius used for haversine distances.
const EarthRadiusKM = 6371.0

// kmPerDegree approximates one degree of latitude. Longitude shrinks with
// cos(lat). Downstream "border unit" thresholds assume exactly this constant;
// do not swap it for a different approximation.
const kmPerDegree = 111.32

// Point is an immutable geographic coordinate. Altitude is meters above
// ground and may be zero when unknown.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude,omitempty"`
}

// Border is the rotated-rectangle operating area. Width and height are in
// degrees; rotation is degrees clockwise from north.
type Border struct {
	Center   Point   `json:"center"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// Distance returns the haversine distance between two points in kilometers.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKM * c
}

// Bearing returns the initial bearing from a to b in degrees [0,360),
// 0 = north, 90 = east. Coincident points yield 0.
func Bearing(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	deg := degrees(math.Atan2(y, x))
	return math.Mod(deg+360, 360)
}

// Project dead-reckons a new position from a start point, a compass heading
// in degrees, a speed in m/s, and an elapsed time in seconds. Flat-earth
// approximation, fine at the ~10km scale of a border box. Altitude carries
// over unchanged.
func Project(start Point, headingDeg, speedMPS, dtSeconds float64) Point {
	// Compass convention: 0° is north, 90° is east.
	headingRad := radians(90 - headingDeg)
	distanceKM := speedMPS * dtSeconds / 1000

	lonKMPerDegree := kmPerDegree * math.Cos(radians(start.Latitude))
	latOffset := distanceKM * math.Sin(headingRad) / kmPerDegree
	lonOffset := distanceKM * math.Cos(headingRad) / lonKMPerDegree

	return Point{
		Latitude:  start.Latitude + latOffset,
		Longitude: start.Longitude + lonOffset,
		Altitude:  start.Altitude,
	}
}

// InBorder reports whether a point lies inside the border rectangle. The
// point is translated relative to the center, inverse-rotated, and tested
// against the axis-aligned half extents.
func InBorder(p Point, b Border) bool {
	dx := p.Longitude - b.Center.Longitude
	dy := p.Latitude - b.Center.Latitude

	if b.Rotation != 0 {
		r := radians(-b.Rotation)
		dx, dy = dx*math.Cos(r)-dy*math.Sin(r), dx*math.Sin(r)+dy*math.Cos(r)
	}

	halfW := b.Width / 2
	halfH := b.Height / 2
	return dx >= -halfW && dx <= halfW && dy >= -halfH && dy <= halfH
}

// RandomPointInBorder samples a point inside the border. edgeBias pushes the
// sample toward maxDist (0 = uniform radial fraction); minDist and maxDist
// are fractions of the half extents in [0,1]. Altitude is drawn uniformly
// from 50-500m. edgeBias is clamped below 1 because the bias exponent
// divides by (1 - edgeBias).
func RandomPointInBorder(rng *rand.Rand, b Border, edgeBias, minDist, maxDist float64) Point {
	if maxDist <= 0 {
		maxDist = 1.0
	}
	minDist = clamp(minDist, 0, 1)
	maxDist = math.Max(minDist, clamp(maxDist, 0, 1))
	edgeBias = clamp(edgeBias, 0, 0.999)

	var dist float64
	if edgeBias > 0 {
		dist = minDist + (maxDist-minDist)*(1.0-math.Pow(1.0-rng.Float64(), 1.0/(1.0-edgeBias)))
	} else {
		dist = minDist + (maxDist-minDist)*rng.Float64()
	}

	angle := rng.Float64() * 2 * math.Pi
	dx := dist * (b.Width / 2) * math.Cos(angle)
	dy := dist * (b.Height / 2) * math.Sin(angle)

	if b.Rotation != 0 {
		r := radians(b.Rotation)
		dx, dy = dx*math.Cos(r)-dy*math.Sin(r), dx*math.Sin(r)+dy*math.Cos(r)
	}

	return Point{
		Latitude:  b.Center.Latitude + dy,
		Longitude: b.Center.Longitude + dx,
		Altitude:  50 + rng.Float64()*450,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
