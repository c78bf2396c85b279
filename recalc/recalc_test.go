package recalc

import (
	"math"
	"testing"

	"github.com/mihasalamun/nrgljubljana/config"
	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/operator"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"github.com/mihasalamun/nrgljubljana/symmetry"
	"gonum.org/v1/gonum/mat"
)

// newSubspaceIdentity builds a trivial Subspace whose eigenvector matrix
// is an n x n identity, split into a single block spanning all n
// columns, so BlockViewRows acts as a plain row-truncation of the old
// basis and the recalculated operator should equal the old one exactly.
func newSubspaceIdentity(n, kept int) *spectrum.Subspace {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	vecs := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		vecs.Set(i, i, 1)
	}
	s := spectrum.New(values, vecs)
	s.Kept = kept
	s.Split([]int{n})
	return s
}

func TestRecalculateIdentityTransformPreservesBlock(t *testing.T) {
	anc := invariant.New(0)
	I1 := invariant.New(1)
	Ip := invariant.New(2)

	old := operator.NewSet(symmetry.CharacterDoublet)
	oldBlock := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
	old.Put(anc, anc, oldBlock)

	table := symmetry.RecalcTable{
		invariant.Pair{I1: I1, I2: Ip}: {
			{I1Old: 0, IpOld: 0, Factor: 1, AncestorIN1: anc, AncestorINp: anc},
		},
	}

	newSpectra := map[invariant.Label]*spectrum.Subspace{
		I1: newSubspaceIdentity(3, 3),
		Ip: newSubspaceIdentity(3, 3),
	}

	out := Recalculate(old, table, newSpectra, config.StrategyAll, false)
	got, ok := out.Get(I1, Ip)
	if !ok {
		t.Fatal("expected (I1, Ip) block in output")
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(got.At(i, j)-oldBlock.At(i, j)) > 1e-12 {
				t.Errorf("got[%d][%d] = %v, want %v", i, j, got.At(i, j), oldBlock.At(i, j))
			}
		}
	}
}

func TestRecalculateKeptStrategyTruncatesRows(t *testing.T) {
	anc := invariant.New(0)
	I1 := invariant.New(1)
	Ip := invariant.New(2)

	old := operator.NewSet(symmetry.CharacterDoublet)
	oldBlock := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	old.Put(anc, anc, oldBlock)

	table := symmetry.RecalcTable{
		invariant.Pair{I1: I1, I2: Ip}: {
			{I1Old: 0, IpOld: 0, Factor: 1, AncestorIN1: anc, AncestorINp: anc},
		},
	}
	newSpectra := map[invariant.Label]*spectrum.Subspace{
		I1: newSubspaceIdentity(3, 2),
		Ip: newSubspaceIdentity(3, 2),
	}

	out := Recalculate(old, table, newSpectra, config.StrategyKept, false)
	got, ok := out.Get(I1, Ip)
	if !ok {
		t.Fatal("expected (I1, Ip) block in output")
	}
	r, c := got.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("dims = (%d,%d), want (2,2)", r, c)
	}
}

func TestRecalculateForceAllIgnoresStrategy(t *testing.T) {
	anc := invariant.New(0)
	I1 := invariant.New(1)
	Ip := invariant.New(2)

	old := operator.NewSet(symmetry.CharacterDoublet)
	old.Put(anc, anc, mat.NewDense(3, 3, nil))

	table := symmetry.RecalcTable{
		invariant.Pair{I1: I1, I2: Ip}: {
			{I1Old: 0, IpOld: 0, Factor: 1, AncestorIN1: anc, AncestorINp: anc},
		},
	}
	newSpectra := map[invariant.Label]*spectrum.Subspace{
		I1: newSubspaceIdentity(3, 1),
		Ip: newSubspaceIdentity(3, 1),
	}

	out := Recalculate(old, table, newSpectra, config.StrategyKept, true)
	got, _ := out.Get(I1, Ip)
	r, c := got.Dims()
	if r != 3 || c != 3 {
		t.Fatalf("forceAll: dims = (%d,%d), want (3,3)", r, c)
	}
}

func TestRecalculateMissingAncestorBlockIsSkipped(t *testing.T) {
	anc := invariant.New(0)
	missingAnc := invariant.New(99)
	I1 := invariant.New(1)
	Ip := invariant.New(2)

	old := operator.NewSet(symmetry.CharacterDoublet)
	old.Put(anc, anc, mat.NewDense(3, 3, nil))

	table := symmetry.RecalcTable{
		invariant.Pair{I1: I1, I2: Ip}: {
			{I1Old: 0, IpOld: 0, Factor: 1, AncestorIN1: missingAnc, AncestorINp: missingAnc},
		},
	}
	newSpectra := map[invariant.Label]*spectrum.Subspace{
		I1: newSubspaceIdentity(3, 3),
		Ip: newSubspaceIdentity(3, 3),
	}

	out := Recalculate(old, table, newSpectra, config.StrategyAll, false)
	if _, ok := out.Get(I1, Ip); ok {
		t.Fatal("expected no block when every contribution's ancestor is missing")
	}
}
