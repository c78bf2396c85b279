package chain

import "testing"

func TestSetAndAt(t *testing.T) {
	s := New(2, 5)
	s.Set(0, 3, 1.5, 0.25)
	zeta, xi := s.At(0, 3)
	if zeta != 1.5 || xi != 0.25 {
		t.Errorf("At(0,3) = (%v,%v), want (1.5,0.25)", zeta, xi)
	}
}

func TestKappaDefaultsZero(t *testing.T) {
	s := New(1, 2)
	if got := s.KappaAt(0, 1); got != 0 {
		t.Errorf("KappaAt() = %v, want 0 when not enabled", got)
	}
}

func TestEnableAnomalous(t *testing.T) {
	s := New(1, 2)
	s.EnableAnomalous()
	s.Kappa[0][1] = 0.1
	if got := s.KappaAt(0, 1); got != 0.1 {
		t.Errorf("KappaAt() = %v, want 0.1", got)
	}
}

func TestOutOfRangePanics(t *testing.T) {
	s := New(1, 2)
	defer func() {
		if recover() == nil {
			t.Errorf("At() with out-of-range site did not panic")
		}
	}()
	s.At(0, 99)
}

func TestPolarizedRequiresEnable(t *testing.T) {
	s := New(1, 2)
	defer func() {
		if recover() == nil {
			t.Errorf("PolarizedAt() without EnablePolarized did not panic")
		}
	}()
	s.PolarizedAt(0, 0)
}
