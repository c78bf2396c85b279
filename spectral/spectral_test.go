package spectral

import (
	"math"
	"testing"

	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"gonum.org/v1/gonum/mat"
)

func TestLogBinsAddAndTotalWeight(t *testing.T) {
	b := NewLogBins(1e-6, 1e2, 10)
	b.Add(1.0, 2.5)
	b.Add(-1.0, 1.5)
	if b.TotalWeight() != 4.0 {
		t.Errorf("TotalWeight = %v, want 4.0", b.TotalWeight())
	}
	idx := b.indexOf(1.0)
	if b.Pos[idx] != 2.5 {
		t.Errorf("Pos[%d] = %v, want 2.5", idx, b.Pos[idx])
	}
	if b.Neg[idx] != 1.5 {
		t.Errorf("Neg[%d] = %v, want 1.5", idx, b.Neg[idx])
	}
}

func TestLogBinsClampsOutOfRange(t *testing.T) {
	b := NewLogBins(1e-3, 1.0, 5)
	b.Add(1e6, 1.0)
	if b.Pos[b.NBins()-1] != 1.0 {
		t.Errorf("expected out-of-range contribution clamped to last bin")
	}
}

func testSubspace(values []float64, kept int) *spectrum.Subspace {
	n := len(values)
	vecs := mat.NewDense(n, n, nil)
	s := spectrum.New(values, vecs)
	s.SubtractGroundState(0)
	s.Kept = kept
	return s
}

func TestFTBinsSymmetricDelta(t *testing.T) {
	diagI1 := testSubspace([]float64{0, 1}, 2)
	diagIp := testSubspace([]float64{0, 1}, 2)
	op := mat.NewDense(2, 2, []float64{0, 1, 1, 0})

	ft := NewFT(1.0, 1e-6, 1e2, 10)
	ft.Add(Contribution{
		Scale: 1.0, ScT: 0, DiagI1: diagI1, DiagIp: diagIp,
		Op1: op, Op2: op, Factor: 1, Sign: Fermionic,
	})
	if ft.Bins().TotalWeight() == 0 {
		t.Error("expected nonzero binned weight")
	}
}

func TestFTGuardSkipsMissingOperator(t *testing.T) {
	diagI1 := testSubspace([]float64{0, 1}, 2)
	diagIp := testSubspace([]float64{0, 1}, 2)
	ft := NewFT(1.0, 1e-6, 1e2, 10)
	ft.Add(Contribution{DiagI1: diagI1, DiagIp: diagIp, Op1: nil, Op2: nil})
	if ft.Bins().TotalWeight() != 0 {
		t.Error("expected guarded contribution to be skipped")
	}
}

func TestCFSMatchesReferenceOracle(t *testing.T) {
	values := []float64{0, 1, 2, 3}
	diagI1 := testSubspace(values, 2)
	diagIp := testSubspace(values, 2)
	op1 := mat.NewDense(4, 4, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	})
	op2 := op1
	rho := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		rho.Set(i, i, 0.25)
	}

	contrib := Contribution{
		Scale: 1.0, DiagI1: diagI1, DiagIp: diagIp,
		Op1: op1, Op2: op2, Factor: 1, Sign: Fermionic, Rho: rho,
		I1: invariant.New(1), Ip: invariant.New(2),
	}

	cfs := NewCFS(1e-6, 1e2, 20)
	cfs.Add(contrib)
	cfs.End()
	optimized := cfs.Bins()

	reference := cfsReference([]Contribution{contrib}, 1e-6, 1e2, 20)

	if math.Abs(totalWeight(optimized)-totalWeight(reference)) > 1e-9 {
		t.Errorf("optimized total=%v reference total=%v, want equal", totalWeight(optimized), totalWeight(reference))
	}
	for i := 0; i < optimized.NBins(); i++ {
		if math.Abs(optimized.Pos[i]-reference.Pos[i]) > 1e-9 {
			t.Errorf("Pos[%d]: optimized=%v reference=%v", i, optimized.Pos[i], reference.Pos[i])
		}
		if math.Abs(optimized.Neg[i]-reference.Neg[i]) > 1e-9 {
			t.Errorf("Neg[%d]: optimized=%v reference=%v", i, optimized.Neg[i], reference.Neg[i])
		}
	}
}

func TestFDMAppliesWnWeight(t *testing.T) {
	values := []float64{0, 1}
	diagI1 := testSubspace(values, 1)
	diagIp := testSubspace(values, 1)
	op := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	rho := mat.NewDense(2, 2, nil)
	rho.Set(0, 0, 1)
	rho.Set(1, 1, 1)

	base := Contribution{
		Scale: 1.0, DiagI1: diagI1, DiagIp: diagIp,
		Op1: op, Op2: op, Factor: 1, Sign: Bosonic, Rho: rho,
	}

	full := NewFDM(1e-6, 1e2, 10)
	full.Add(base)
	full.End()
	fullWeight := totalWeight(full.Bins())

	half := NewFDM(1e-6, 1e2, 10)
	halved := base
	halved.Wn = 0.5
	half.Add(halved)
	half.End()
	halfWeight := totalWeight(half.Bins())

	if fullWeight == 0 {
		t.Fatal("expected nonzero weight from Wn=1 run")
	}
	if math.Abs(halfWeight-fullWeight/2) > 1e-9 {
		t.Errorf("Wn=0.5 weight = %v, want half of %v", halfWeight, fullWeight)
	}
}

func TestMatsubaraGridNearestBin(t *testing.T) {
	g := NewMatsubaraGrid(0.1, true, 5)
	target := g.Omega(2)
	g.Add(target+1e-9, 3.0)
	if g.Weights[2] != 3.0 {
		t.Errorf("Weights[2] = %v, want 3.0", g.Weights[2])
	}
}
