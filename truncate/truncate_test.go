package truncate

import (
	"math"
	"testing"

	"github.com/mihasalamun/nrgljubljana/config"
	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/nrgerr"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"gonum.org/v1/gonum/mat"
)

func subspace(values ...float64) *spectrum.Subspace {
	n := len(values)
	vecs := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		vecs.Set(i, i, 1)
	}
	s := spectrum.New(values, vecs)
	s.SubtractGroundState(0)
	return s
}

func baseParams() *config.Params {
	return &config.Params{
		Lambda: 2, Keep: 4, KeepMin: 1, Safeguard: 1e-6, SafeguardMax: 2, BetaBar: 1,
	}
}

func TestTruncateByCountPlainCut(t *testing.T) {
	d := spectrum.NewDiagState()
	d.Spectra[invariant.New(0)] = subspace(0, 1, 2, 3, 4, 5)

	p := baseParams()
	res, err := Truncate(d, p, 1.0, false)
	if err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if res.Nrkeep != 4 {
		t.Errorf("Nrkeep = %d, want 4", res.Nrkeep)
	}
	if math.Abs(res.Emax-3) > 1e-12 {
		t.Errorf("Emax = %v, want 3", res.Emax)
	}
	s := d.Spectra[invariant.New(0)]
	if s.Kept != 4 {
		t.Errorf("Kept = %d, want 4", s.Kept)
	}
}

func TestTruncateSafeguardExtendsPastDegenerateGap(t *testing.T) {
	d := spectrum.NewDiagState()
	// Base cut lands at index 4 (value 3), but 3 and 3+1e-9 are
	// near-degenerate: the safeguard must push the cut past the cluster.
	d.Spectra[invariant.New(0)] = subspace(0, 1, 2, 3, 3 + 1e-9, 5)

	p := baseParams()
	res, err := Truncate(d, p, 1.0, false)
	if err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if res.SafeguardExtra == 0 {
		t.Fatalf("expected safeguard to add states, got SafeguardExtra=0, Nrkeep=%d", res.Nrkeep)
	}
	if math.Abs(res.Emax-(3+1e-9)) > 1e-12 {
		t.Errorf("Emax = %v, want %v", res.Emax, 3+1e-9)
	}
}

func TestTruncateByEnergyCutoff(t *testing.T) {
	d := spectrum.NewDiagState()
	d.Spectra[invariant.New(0)] = subspace(0, 1, 2, 3, 4, 5)

	p := baseParams()
	p.KeepEnergy = 2.5 // count{0,1,2} = 3, +1 discarded = 4
	res, err := Truncate(d, p, 1.0, false)
	if err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if res.Nrkeep != 4 {
		t.Errorf("Nrkeep = %d, want 4", res.Nrkeep)
	}
}

func TestTruncateKeepAllOnLastStep(t *testing.T) {
	d := spectrum.NewDiagState()
	d.Spectra[invariant.New(0)] = subspace(0, 1, 2, 3, 4, 5)

	p := baseParams()
	p.KeepAllLast = true
	_, err := Truncate(d, p, 1.0, true)
	if err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	s := d.Spectra[invariant.New(0)]
	if s.Kept != 6 {
		t.Errorf("Kept = %d, want 6 (keep-all override)", s.Kept)
	}
}

func TestTruncateInsufficientStatesDetected(t *testing.T) {
	d := spectrum.NewDiagState()
	// Only 2 states computed out of a dim of 10 (simulated via a
	// truncated diagonalization); cut at Keep=4 can't be satisfied, and
	// the top computed eigenvalue (1) differs from the would-be Emax.
	small := subspace(0, 1)
	small.Vectors = mat.NewDense(2, 10, nil) // Dim() == 10, Computed() == 2
	d.Spectra[invariant.New(0)] = small
	d.Spectra[invariant.New(1)] = subspace(0.5, 2, 3, 4, 5, 6)

	p := baseParams()
	_, err := Truncate(d, p, 1.0, false)
	if err == nil {
		t.Fatal("expected InsufficientStates error, got nil")
	}
	if !nrgerr.Is(err, nrgerr.InsufficientStates) {
		t.Errorf("error kind: got %v, want InsufficientStates", err)
	}
}
