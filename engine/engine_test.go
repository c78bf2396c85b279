package engine

import (
	"os"
	"testing"

	"github.com/mihasalamun/nrgljubljana/chain"
	"github.com/mihasalamun/nrgljubljana/config"
	"github.com/mihasalamun/nrgljubljana/densitymatrix"
	"github.com/mihasalamun/nrgljubljana/diag"
	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/operator"
	"github.com/mihasalamun/nrgljubljana/persist"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"github.com/mihasalamun/nrgljubljana/symmetry"
)

// seedQSZ builds the impurity-only initial state: a single invariant
// (Q=0, Sz2=0) with two eigenstates, no hopping coupling yet (the
// chain's hopping amplitudes are left zero so MatrixBuilder's
// off-diagonal contributions vanish and every block diagonalizes to a
// known closed form).
func seedQSZ() Seed {
	I := invariant.New(0, 0)
	d := spectrum.NewDiagState()
	d.Spectra[I] = &spectrum.Subspace{
		VOrig: []float64{0, 1}, VZero: []float64{0, 1}, Kept: 2,
		AbsE: []float64{0, 1}, AbsEG: []float64{0, 1}, AbsEN: []float64{0, 1},
	}
	return Seed{Diag: d, Ops: operator.NewCollection(1, 1)}
}

func testParams() *config.Params {
	return &config.Params{
		Lambda: 2.0, Nmax: 1,
		Keep: 4, KeepMin: 0, Safeguard: 0, SafeguardMax: 0,
		T: 0.1, BetaBar: 1.0,
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	os.Setenv("NRG_WORKDIR", dir)
	t.Cleanup(func() { os.Unsetenv("NRG_WORKDIR") })
	wd, err := persist.NewWorkdir()
	if err != nil {
		t.Fatalf("NewWorkdir: %v", err)
	}
	t.Cleanup(func() { wd.Close() })

	ch := chain.New(1, 1)
	return New(testParams(), symmetry.QSZ{}, ch, diag.SharedPool{Workers: 1}, wd)
}

func TestRunForwardProducesOneResultPerStep(t *testing.T) {
	e := newTestEngine(t)
	results, err := e.RunForward(seedQSZ())
	if err != nil {
		t.Fatalf("RunForward: %v", err)
	}
	if len(results) != e.Params.Nmax+1 {
		t.Fatalf("len(results) = %d, want %d", len(results), e.Params.Nmax+1)
	}
	for n, r := range results {
		if len(r.Invariants) == 0 {
			t.Errorf("step %d: no invariants produced", n)
		}
		if r.Diag == nil || len(r.Diag.Spectra) == 0 {
			t.Errorf("step %d: empty diag state", n)
		}
	}
}

func TestRunForwardGroundStateIsShiftedToZero(t *testing.T) {
	e := newTestEngine(t)
	results, err := e.RunForward(seedQSZ())
	if err != nil {
		t.Fatalf("RunForward: %v", err)
	}
	last := results[len(results)-1]
	min := last.Diag.Spectra[last.Invariants[0]].VZero[0]
	for _, I := range last.Invariants {
		for _, v := range last.Diag.Spectra[I].VZero {
			if v < min {
				min = v
			}
		}
	}
	if min < -1e-9 || min > 1e-9 {
		t.Errorf("global ground state VZero = %v, want 0", min)
	}
}

func TestRunBackwardProducesRhoForEveryStep(t *testing.T) {
	e := newTestEngine(t)
	forward, err := e.RunForward(seedQSZ())
	if err != nil {
		t.Fatalf("RunForward: %v", err)
	}
	backward, err := e.RunBackward(forward)
	if err != nil {
		t.Fatalf("RunBackward: %v", err)
	}
	if len(backward.Rho) != len(forward) {
		t.Fatalf("len(backward.Rho) = %d, want %d", len(backward.Rho), len(forward))
	}
	trace := 0.0
	for _, m := range backward.Rho[0] {
		trace += densitymatrix.Trace(m)
	}
	if trace < 1-1e-6 || trace > 1+1e-6 {
		t.Errorf("trace(rho[0]) = %v, want 1", trace)
	}

	wnSum := 0.0
	for _, w := range backward.Wn {
		f, _ := w.Float64()
		wnSum += f
	}
	if wnSum < 1-1e-6 || wnSum > 1+1e-6 {
		t.Errorf("sum(wn) = %v, want 1", wnSum)
	}
}

func TestWriteOutputsCreatesExpectedFiles(t *testing.T) {
	e := newTestEngine(t)
	forward, err := e.RunForward(seedQSZ())
	if err != nil {
		t.Fatalf("RunForward: %v", err)
	}
	backward, err := e.RunBackward(forward)
	if err != nil {
		t.Fatalf("RunBackward: %v", err)
	}
	dir := t.TempDir()
	if err := e.WriteOutputs(dir, forward, backward, nil); err != nil {
		t.Fatalf("WriteOutputs: %v", err)
	}
	for _, name := range []string{"td", "tdfdm", "annotated.dat", "energies.nrg", "subspaces.dat", "absolute_energies.dat", "DONE"} {
		if _, err := os.Stat(dir + "/" + name); err != nil {
			t.Errorf("expected output file %s: %v", name, err)
		}
	}
}
