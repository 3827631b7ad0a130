package geo

import (
	"math"
	"math/rand"
	"testing"
)

var maeSot = Point{Latitude: 16.7769, Longitude: 98.9761}

func TestDistanceIdentity(t *testing.T) {
	if d := Distance(maeSot, maeSot); d != 0 {
		t.Errorf("distance to self should be 0, got %f", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := Point{Latitude: 16.7769, Longitude: 98.9761}
	b := Point{Latitude: 16.8, Longitude: 99.1}
	if da, db := Distance(a, b), Distance(b, a); math.Abs(da-db) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", da, db)
	}
}

func TestDistanceKnownValue(t *testing.T) {
	a := Point{Latitude: 16.7769, Longitude: 98.9761}
	b := Point{Latitude: 16.7869, Longitude: 98.9861}
	d := Distance(a, b)
	if d < 1.3 || d > 1.5 {
		t.Errorf("expected ~1.3-1.5 km, got %f", d)
	}
}

func TestBearingCardinal(t *testing.T) {
	north := Point{Latitude: maeSot.Latitude + 0.01, Longitude: maeSot.Longitude}
	east := Point{Latitude: maeSot.Latitude, Longitude: maeSot.Longitude + 0.01}

	if b := Bearing(maeSot, north); math.Abs(b) > 0.5 {
		t.Errorf("bearing due north should be ~0, got %f", b)
	}
	if b := Bearing(maeSot, east); math.Abs(b-90) > 0.5 {
		t.Errorf("bearing due east should be ~90, got %f", b)
	}
}

func TestBearingCoincidentPoints(t *testing.T) {
	if b := Bearing(maeSot, maeSot); b != 0 {
		t.Errorf("bearing of coincident points should be 0, got %f", b)
	}
}

func TestBearingRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		a := Point{Latitude: rng.Float64()*120 - 60, Longitude: rng.Float64()*360 - 180}
		b := Point{Latitude: rng.Float64()*120 - 60, Longitude: rng.Float64()*360 - 180}
		br := Bearing(a, b)
		if br < 0 || br >= 360 {
			t.Fatalf("bearing out of [0,360): %f", br)
		}
	}
}

func TestProjectEastward(t *testing.T) {
	start := Point{Latitude: 16.7769, Longitude: 98.9761, Altitude: 100}
	p := Project(start, 90, 10, 60)

	if p.Longitude <= start.Longitude {
		t.Errorf("heading east should increase longitude: %f -> %f", start.Longitude, p.Longitude)
	}
	if math.Abs(p.Latitude-start.Latitude) > 0.001 {
		t.Errorf("heading east should keep latitude, drifted %f", p.Latitude-start.Latitude)
	}
	if p.Altitude != 100 {
		t.Errorf("altitude should be preserved, got %f", p.Altitude)
	}
}

func TestProjectDistanceMatchesSpeed(t *testing.T) {
	start := Point{Latitude: 16.7769, Longitude: 98.9761}
	p := Project(start, 45, 20, 30) // 600m
	d := Distance(start, p)
	if d < 0.5 || d > 0.7 {
		t.Errorf("expected ~0.6 km traveled, got %f", d)
	}
}

func TestInBorder(t *testing.T) {
	b := Border{Center: maeSot, Width: 0.1, Height: 0.1}

	if !InBorder(maeSot, b) {
		t.Error("center point should be inside the border")
	}
	outside := Point{Latitude: maeSot.Latitude + 1, Longitude: maeSot.Longitude}
	if InBorder(outside, b) {
		t.Error("point a full degree north should be outside a 0.1 degree box")
	}
}

func TestInBorderRotated(t *testing.T) {
	// A tall thin box rotated 90 degrees becomes wide and flat.
	b := Border{Center: maeSot, Width: 0.02, Height: 0.2, Rotation: 90}
	wide := Point{Latitude: maeSot.Latitude, Longitude: maeSot.Longitude + 0.08}
	tall := Point{Latitude: maeSot.Latitude + 0.08, Longitude: maeSot.Longitude}

	if !InBorder(wide, b) {
		t.Error("rotated box should contain the wide offset point")
	}
	if InBorder(tall, b) {
		t.Error("rotated box should not contain the tall offset point")
	}
}

func TestRandomPointInBorderStaysInside(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := Border{Center: maeSot, Width: 0.1, Height: 0.1}
	for i := 0; i < 500; i++ {
		p := RandomPointInBorder(rng, b, 0.4, 0, 1)
		if !InBorder(p, b) {
			t.Fatalf("sampled point outside border: %+v", p)
		}
		if p.Altitude < 50 || p.Altitude > 500 {
			t.Fatalf("altitude out of [50,500]: %f", p.Altitude)
		}
	}
}

func TestRandomPointInBorderFullEdgeBias(t *testing.T) {
	// edge_bias=1 would divide by zero in the bias exponent; it must be
	// clamped rather than producing NaN.
	rng := rand.New(rand.NewSource(1))
	b := Border{Center: maeSot, Width: 0.1, Height: 0.1}
	for i := 0; i < 100; i++ {
		p := RandomPointInBorder(rng, b, 1.0, 0, 1)
		if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) {
			t.Fatal("edge bias 1.0 produced NaN coordinates")
		}
	}
}

func TestRandomPointInBorderEdgeBiasShape(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	b := Border{Center: maeSot, Width: 0.1, Height: 0.1}

	farBiased, farUniform := 0, 0
	const n = 2000
	for i := 0; i < n; i++ {
		pb := RandomPointInBorder(rng, b, 0.9, 0, 1)
		pu := RandomPointInBorder(rng, b, 0, 0, 1)
		if radialFraction(pb, b) > 0.7 {
			farBiased++
		}
		if radialFraction(pu, b) > 0.7 {
			farUniform++
		}
	}
	if farBiased <= farUniform {
		t.Errorf("edge bias should concentrate samples outward: biased=%d uniform=%d", farBiased, farUniform)
	}
}

func radialFraction(p Point, b Border) float64 {
	dx := (p.Longitude - b.Center.Longitude) / (b.Width / 2)
	dy := (p.Latitude - b.Center.Latitude) / (b.Height / 2)
	return math.Hypot(dx, dy)
}
