package step

import (
	"math"
	"testing"
)

func TestScaleDecaysWithLambda(t *testing.T) {
	s := New(3.0, 1.0, 4, 4, NRG, 1, false)
	got := s.Scale()
	want := math.Pow(3.0, -2.0)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Scale() = %v, want %v", got, want)
	}
}

func TestScaleSubstepFolding(t *testing.T) {
	s := New(4.0, 1.0, 2, 2, NRG, 2, true)
	got := s.Scale()
	want := math.Pow(4.0, -1.0) * math.Pow(4.0, 1.0/4.0)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Scale() substep = %v, want %v", got, want)
	}
}

func TestFirstAndLastZeroLength(t *testing.T) {
	s := New(3.0, 1.0, 0, 0, NRG, 1, false)
	if !s.First() {
		t.Errorf("First() = false, want true at ndxN=0")
	}
	if !s.Last(0) {
		t.Errorf("Last(0) = false, want true when Nmax=0 (scenario C)")
	}
}

func TestTeffAndScT(t *testing.T) {
	s := New(3.0, 2.0, 0, 0, NRG, 1, false)
	if math.Abs(s.Teff()-s.Scale()/2.0) > 1e-12 {
		t.Errorf("Teff() inconsistent with BetaBar")
	}
	if math.Abs(s.ScT(0.5)-s.Scale()/0.5) > 1e-12 {
		t.Errorf("ScT() inconsistent")
	}
}
