package densitymatrix

import (
	"math"
	"math/big"
	"testing"

	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"github.com/mihasalamun/nrgljubljana/symmetry"
	"gonum.org/v1/gonum/mat"
)

func TestBuildLastTraceIsOne(t *testing.T) {
	d := spectrum.NewDiagState()
	s1 := spectrum.New([]float64{0, 1, 2}, mat.NewDense(3, 3, nil))
	s1.SubtractGroundState(0)
	s2 := spectrum.New([]float64{0.5, 3}, mat.NewDense(2, 2, nil))
	s2.SubtractGroundState(0)
	d.Spectra[invariant.New(0)] = s1
	d.Spectra[invariant.New(1)] = s2

	rho := BuildLast(d, symmetry.QSZ{}, 1.0)
	if err := CheckTrace(rho, symmetry.QSZ{}, 1e-8); err != nil {
		t.Errorf("CheckTrace: %v", err)
	}
}

func TestReduceBackwardConservesTraceUnderIdentity(t *testing.T) {
	I := invariant.New(5)
	anc := invariant.New(0)

	// An identity eigenvector matrix (one block, width = dim) makes
	// the projection U^T rho U == rho exactly.
	vecs := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	s := spectrum.New([]float64{0, 1}, vecs)
	s.Split([]int{2})

	rho := mat.NewDense(2, 2, nil)
	rho.Set(0, 0, 0.5)
	rho.Set(1, 1, 0.5)

	newRho := map[invariant.Label]*mat.Dense{I: rho}
	newSpectra := map[invariant.Label]*spectrum.Subspace{I: s}
	ancestors := Ancestors{I: {anc}}

	out := ReduceBackward(newRho, newSpectra, ancestors, symmetry.QSZ{})
	got, ok := out[anc]
	if !ok {
		t.Fatal("expected ancestor entry in reduced rho")
	}
	if math.Abs(Trace(got)-1) > 1e-12 {
		t.Errorf("trace = %v, want 1 (identity projection preserves trace)", Trace(got))
	}
}

func bigSlice(vals ...float64) []*big.Float {
	out := make([]*big.Float, len(vals))
	for i, v := range vals {
		out[i] = newBig(v)
	}
	return out
}

func TestComputeWeightsSumToOne(t *testing.T) {
	znDG := bigSlice(1.0, 0.5, 2.0, 0.1)
	wn := ComputeWeights(znDG, 2)
	if err := CheckWeightSum(wn); err != nil {
		t.Errorf("CheckWeightSum: %v", err)
	}
}

func TestZShellSumsMultiplicityWeighted(t *testing.T) {
	dims := map[invariant.Label]spectrum.SubspaceDims{
		invariant.New(0): {AbsEG: []float64{0, 1}},
		invariant.New(1): {AbsEG: []float64{2}},
	}
	z := ZShell(dims, symmetry.QSZ{}, 1.0, ZnDG)
	f, _ := z.Float64()
	want := math.Exp(0) + math.Exp(-1) + math.Exp(-2)
	if math.Abs(f-want) > 1e-9 {
		t.Errorf("ZShell = %v, want %v", f, want)
	}
}

func TestBuildRhoFDMPerShellWeight(t *testing.T) {
	I := invariant.New(0)
	shells := []Shell{
		{Dims: map[invariant.Label]spectrum.SubspaceDims{
			I: {Kept: 1, Total: 3, AbsEN: []float64{0, 1, 2}},
		}},
		{Dims: map[invariant.Label]spectrum.SubspaceDims{
			I: {Kept: 0, Total: 2, AbsEN: []float64{0, 0.5}},
		}},
	}
	wn := bigSlice(0.3, 0.7)

	rhoFDM := BuildRhoFDM(shells, wn, symmetry.QSZ{}, 1.0)
	if len(rhoFDM) != 2 {
		t.Fatalf("got %d shells, want 2", len(rhoFDM))
	}
	for idx, shell := range rhoFDM {
		wf, _ := wn[idx].Float64()
		got := TraceFDM(shell, symmetry.QSZ{})
		if math.Abs(got-wf) > 1e-9 {
			t.Errorf("shell %d: trace(rhoFDM) = %v, want %v (== wn[%d])", idx, got, wf, idx)
		}
	}
}
