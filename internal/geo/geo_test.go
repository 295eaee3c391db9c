package geo

import (
	"math"
	"testing"
)

func TestDistanceKmZero(t *testing.T) {
	if d := DistanceKm(51.5, -0.12, 51.5, -0.12); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestDistanceKmKnownPair(t *testing.T) {
	// Paris -> London is roughly 344 km great-circle.
	d := DistanceKm(48.8566, 2.3522, 51.5074, -0.1278)
	if d < 330 || d > 355 {
		t.Fatalf("expected ~344km, got %f", d)
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	a := DistanceKm(10, 20, -30, 40)
	b := DistanceKm(-30, 40, 10, 20)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestETAMinutes(t *testing.T) {
	if m := ETAMinutes(20, 40); m != 30 {
		t.Fatalf("expected 30 minutes, got %f", m)
	}
	if m := ETAMinutes(5, 0); !math.IsInf(m, 1) {
		t.Fatalf("expected +Inf for zero speed, got %f", m)
	}
	if m := ETAMinutes(5, -10); !math.IsInf(m, 1) {
		t.Fatalf("expected +Inf for negative speed, got %f", m)
	}
	if m := ETAMinutes(math.NaN(), 40); !math.IsInf(m, 1) {
		t.Fatalf("expected +Inf for NaN distance, got %f", m)
	}
	if m := ETAMinutes(math.Inf(1), 40); !math.IsInf(m, 1) {
		t.Fatalf("expected +Inf for infinite distance, got %f", m)
	}
}
