package scalar

import "testing"

func TestConjReal(t *testing.T) {
	if Conj(3.5) != 3.5 {
		t.Errorf("Conj(3.5) should be identity for real kind")
	}
}

func TestConjComplex(t *testing.T) {
	got := Conj(complex(1, 2))
	want := complex(1, -2)
	if got != want {
		t.Errorf("Conj(1+2i) = %v, want %v", got, want)
	}
}

func TestAbs2(t *testing.T) {
	if got := Abs2(3.0); got != 9.0 {
		t.Errorf("Abs2(3.0) = %v, want 9", got)
	}
	if got := Abs2(complex(3, 4)); got != 25.0 {
		t.Errorf("Abs2(3+4i) = %v, want 25", got)
	}
}

func TestIsComplex(t *testing.T) {
	if IsComplex[float64]() {
		t.Errorf("IsComplex[float64]() = true, want false")
	}
	if !IsComplex[complex128]() {
		t.Errorf("IsComplex[complex128]() = false, want true")
	}
}
