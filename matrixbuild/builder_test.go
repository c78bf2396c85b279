package matrixbuild

import (
	"testing"

	"github.com/mihasalamun/nrgljubljana/chain"
	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/operator"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"github.com/mihasalamun/nrgljubljana/symmetry"
	"gonum.org/v1/gonum/mat"
)

func prevState(t *testing.T) *spectrum.DiagState {
	t.Helper()
	d := spectrum.NewDiagState()
	for _, q := range []int32{-1, 0, 1} {
		s := spectrum.New([]float64{0, 1}, mat.NewDense(2, 2, []float64{1, 0, 0, 1}))
		s.SubtractGroundState(0)
		s.Kept = 2
		d.Insert(invariant.New(q, 1), s)
	}
	return d
}

func TestComputeLayoutSumsKeptDims(t *testing.T) {
	prev := prevState(t)
	cap := symmetry.QSZ{}
	I := invariant.New(0, 0)
	layout := ComputeLayout(cap, prev, I, cap.Ancestors(I))
	sum := 0
	for _, r := range layout.RMax {
		sum += r
	}
	if sum != layout.Total {
		t.Errorf("RMax does not sum to Total: %d != %d", sum, layout.Total)
	}
}

func TestRescaleFactorOrdinary(t *testing.T) {
	got := RescaleFactor(9.0, 1, false)
	if got != 3.0 {
		t.Errorf("RescaleFactor(9,1,false) = %v, want 3", got)
	}
}

func TestRescaleFactorSubstep(t *testing.T) {
	got := RescaleFactor(16.0, 2, true)
	want := 2.0 // 16^(1/4)
	if got != want {
		t.Errorf("RescaleFactor(16,2,true) = %v, want %v", got, want)
	}
}

func TestBuildProducesSymmetricMatrix(t *testing.T) {
	prev := prevState(t)
	cap := symmetry.QSZ{}
	sh := chain.New(1, 2)
	sh.Set(0, 1, 0, 0.3)
	hopping := []*operator.Set{operator.NewSet(symmetry.CharacterDoublet)}
	I := invariant.New(0, 0)
	ancestors := cap.Ancestors(I)
	for i, a := range ancestors {
		for j, b := range ancestors {
			if i == j {
				continue
			}
			hopping[0].Put(a, b, mat.NewDense(2, 2, []float64{1, 0, 0, 1}))
		}
	}
	h, layout := Build(cap, prev, sh, hopping, I, 1, 9.0, false)
	if layout.Total == 0 {
		t.Skip("no ancestors triangle-allowed for this fixture")
	}
	n := layout.Total
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if h.At(r, c) != h.At(c, r) {
				t.Fatalf("matrix not symmetric at (%d,%d)", r, c)
			}
		}
	}
}
