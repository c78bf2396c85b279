package engine

import (
	"math"

	"github.com/mihasalamun/nrgljubljana/diag"
	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/matrixbuild"
	"github.com/mihasalamun/nrgljubljana/nrgerr"
	"github.com/mihasalamun/nrgljubljana/nrglog"
	"github.com/mihasalamun/nrgljubljana/operator"
	"github.com/mihasalamun/nrgljubljana/recalc"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"github.com/mihasalamun/nrgljubljana/stats"
	"github.com/mihasalamun/nrgljubljana/step"
	"github.com/mihasalamun/nrgljubljana/symmetry"
	"github.com/mihasalamun/nrgljubljana/truncate"
	"gonum.org/v1/gonum/mat"
)

// restartFactor is the diagratio multiplier spec.md §4.2's retry policy
// applies after an insufficient-states signal ("diagratio :=
// min(diagratio*restart_factor, 1)"); spec.md §8 scenario D names the
// factor 2 explicitly.
const restartFactor = 2.0

// ShellResult is one forward-pass step's outcome, retained for the
// backward density-matrix pass and for output-file writers.
type ShellResult struct {
	Step       step.State
	Invariants []invariant.Label
	Diag       *spectrum.DiagState
	Truncate   map[invariant.Label]truncate.Result
	Thermo     stats.Result
	Ops        *operator.Collection
}

// RunForward executes spec.md §2's forward pass: MatrixBuilder ->
// Diagonalizer -> Truncator -> (store spectra/snapshot) -> Recalculator,
// looped over chain sites 0..Params.Nmax. It persists each step's
// eigenvector transform via Workdir (spec.md §4.7) so the backward pass
// and the DM-seeded spectral re-run can load it back.
func (e *Engine) RunForward(seed Seed) ([]ShellResult, error) {
	nrglog.Infof("forward pass: %d steps, Lambda=%.4g, Keep=%d", e.Params.Nmax+1, e.Params.Lambda, e.Params.Keep)
	results := make([]ShellResult, 0, e.Params.Nmax+1)

	prevDiag := seed.Diag
	prevInvariants := prevDiag.Invariants()
	ops := seed.Ops
	var acc stats.Accumulator

	for ndx := 0; ndx <= e.Params.Nmax; ndx++ {
		st := step.New(e.Params.Lambda, e.Params.BetaBar, ndx, ndx, step.NRG, e.Chain.Channels(), e.Params.Substeps)
		last := st.Last(e.Params.Nmax)

		candidates := prevInvariants
		if ndx > 0 {
			candidates = nextInvariants(e.Cap, prevInvariants)
		}

		tasks := e.buildTasks(prevDiag, candidates, ndx, ops)

		diagratio := 1.0
		var diagState *spectrum.DiagState
		var truncResult map[invariant.Label]truncate.Result
		var egs float64
		for {
			var err error
			diagState, err = e.Backend.Diagonalize(tasks, diagratio)
			if err != nil {
				return results, err
			}
			egs = subtractGroundState(diagState)

			tr, err := e.truncateAll(diagState, st, last)
			if err == nil {
				truncResult = tr
				break
			}
			if !nrgerr.Is(err, nrgerr.InsufficientStates) || last {
				return results, err
			}
			diagratio = math.Min(diagratio*restartFactor, 1)
			nrglog.Warnf("step %d: insufficient states, retrying at diagratio=%.3g", ndx, diagratio)
		}

		nrglog.Debugf("step %d: %d invariant blocks, scale=%.6g", ndx, len(candidates), st.Scale())

		offset := acc.Advance(egs, st.Scale())
		for _, s := range diagState.Spectra {
			s.SetAbsoluteEnergies(st.Scale(), offset)
		}

		diagState.SnapshotAll(last)

		if e.Workdir != nil {
			if err := e.Workdir.SaveUnitary(ndx, vectorsOf(diagState)); err != nil {
				return results, err
			}
		}

		thermo := stats.Step(diagState, e.Cap, st.ScT(e.Params.T))

		if !last {
			ops = e.recalcCollection(ops, candidates, diagState)
		}

		results = append(results, ShellResult{
			Step: st, Invariants: candidates, Diag: diagState,
			Truncate: truncResult, Thermo: thermo, Ops: ops,
		})

		for _, s := range diagState.Spectra {
			s.DropVectors()
		}
		prevDiag = diagState
		prevInvariants = diagState.Invariants()
	}

	acc.GSEnergy = acc.TotalEnergy
	for _, r := range results {
		for I, s := range r.Diag.Spectra {
			s.ReferenceToGlobal(acc.GSEnergy)
			snap := s.Snapshot(r.Diag.Dims[I].Last)
			// Vectors were dropped above, so s.Dim() is 0 here; keep the
			// basis dimension recorded before the drop.
			snap.Total = r.Diag.Dims[I].Total
			r.Diag.Dims[I] = snap
		}
	}

	return results, nil
}

// buildTasks constructs one Diagonalizer task per candidate invariant,
// per spec.md §4.1/§4.2.
func (e *Engine) buildTasks(prev *spectrum.DiagState, candidates []invariant.Label, site int, ops *operator.Collection) []diag.Task {
	tasks := make([]diag.Task, 0, len(candidates))
	for _, I := range candidates {
		h, layout := matrixbuild.Build(e.Cap, prev, e.Chain, hoppingAt(ops), I, site, e.Params.Lambda, e.Params.Substeps)
		tasks = append(tasks, diag.Task{I: I, Real: h, BlockWidths: layout.RMax})
	}
	return tasks
}

func hoppingAt(ops *operator.Collection) []*operator.Set {
	if ops == nil {
		return nil
	}
	out := make([]*operator.Set, len(ops.Hopping))
	for c, flavors := range ops.Hopping {
		if len(flavors) > 0 {
			out[c] = flavors[0]
		}
	}
	return out
}

// subtractGroundState finds the global minimum eigenvalue across every
// subspace of d and shifts every subspace's v_zero by it, per spec.md
// §3 ("v_zero = v_orig - Egs") and §8 invariant 1. It returns Egs
// itself, which stats.Accumulator.Advance needs to fold into the
// running absolute-energy total (spec.md §3 "Stats").
func subtractGroundState(d *spectrum.DiagState) float64 {
	egs := math.Inf(1)
	for _, s := range d.Spectra {
		if len(s.VOrig) > 0 && s.VOrig[0] < egs {
			egs = s.VOrig[0]
		}
	}
	if math.IsInf(egs, 1) {
		return 0
	}
	for _, s := range d.Spectra {
		s.SubtractGroundState(egs)
	}
	return egs
}

// truncateAll runs Truncator once over the whole shell (truncate.Truncate
// already concatenates across subspaces) and reports a Result per
// subspace for bookkeeping, keyed by invariant for ShellResult.
func (e *Engine) truncateAll(d *spectrum.DiagState, st step.State, last bool) (map[invariant.Label]truncate.Result, error) {
	unscale := 1 / st.Scale()
	res, err := truncate.Truncate(d, e.Params, unscale, last)
	if err != nil {
		return nil, err
	}
	out := make(map[invariant.Label]truncate.Result, len(d.Spectra))
	for I := range d.Spectra {
		out[I] = res
	}
	return out, nil
}

func vectorsOf(d *spectrum.DiagState) map[invariant.Label]*mat.Dense {
	out := make(map[invariant.Label]*mat.Dense, len(d.Spectra))
	for I, s := range d.Spectra {
		out[I] = s.Vectors
	}
	return out
}

// recalcCollection rebuilds every named operator-block family and the
// hopping array in the new basis, per spec.md §4.4. Doublet/triplet/
// quadruplet families use the symmetry's own coefficient tables
// (spec.md §4.4 step 1, supplied as opaque per-symmetry data per
// spec.md §1); singlet-character families (which by construction only
// ever connect an invariant to itself) use the trivial identity table
// built directly from the ancestor layout, since no Clebsch-Gordan-like
// coefficient is needed when I1 == Ip.
func (e *Engine) recalcCollection(old *operator.Collection, candidates []invariant.Label, d *spectrum.DiagState) *operator.Collection {
	doubletTable := buildTable(e.Cap.RecalcDoublet, candidates)
	tripletTable := buildTable(e.Cap.RecalcTriplet, candidates)
	quadTable := buildTable(e.Cap.RecalcQuadruplet, candidates)
	identityTable := identitySingletTable(e.Cap, candidates)

	newSpectra := d.Spectra
	strategy := e.Params.Strategy

	out := operator.NewCollection(len(old.Hopping), maxFlavors(old.Hopping))
	for name, s := range old.Singlets {
		out.Singlets[name] = recalc.Recalculate(s, identityTable, newSpectra, strategy, false)
	}
	for name, s := range old.SingletsOdd {
		out.SingletsOdd[name] = recalc.Recalculate(s, identityTable, newSpectra, strategy, false)
	}
	for name, s := range old.GlobalSinglets {
		out.GlobalSinglets[name] = recalc.Recalculate(s, identityTable, newSpectra, strategy, false)
	}
	for name, s := range old.Doublets {
		out.Doublets[name] = recalc.Recalculate(s, doubletTable, newSpectra, strategy, false)
	}
	for name, s := range old.Triplets {
		out.Triplets[name] = recalc.Recalculate(s, tripletTable, newSpectra, strategy, false)
	}
	for name, s := range old.Quadruplets {
		out.Quadruplets[name] = recalc.Recalculate(s, quadTable, newSpectra, strategy, false)
	}
	for name, s := range old.OrbitalTriplets {
		out.OrbitalTriplets[name] = recalc.Recalculate(s, tripletTable, newSpectra, strategy, false)
	}
	for c, flavors := range old.Hopping {
		for f, s := range flavors {
			out.Hopping[c][f] = recalc.Recalculate(s, doubletTable, newSpectra, strategy, false)
		}
	}
	return out
}

func maxFlavors(hop [][]*operator.Set) int {
	m := 0
	for _, flavors := range hop {
		if len(flavors) > m {
			m = len(flavors)
		}
	}
	return m
}

func buildTable(method func(I1, Ip invariant.Label) []symmetry.RecalcEntry, labels []invariant.Label) symmetry.RecalcTable {
	table := make(symmetry.RecalcTable)
	for _, i1 := range labels {
		for _, ip := range labels {
			entries := method(i1, ip)
			if len(entries) > 0 {
				table[invariant.Pair{I1: i1, I2: ip}] = entries
			}
		}
	}
	return table
}

// identitySingletTable builds, for every candidate invariant I, a
// single-entry-per-ancestor table transforming the old (I,I) block via
// U(I)^T[block i] * cold(anc_i,anc_i) * U(I)[block i], factor 1, summed
// over ancestor index i — the trivial recalculation a character-singlet
// operator always uses (spec.md §4.4: operators that commute with every
// symmetry generator connect an invariant only to itself).
func identitySingletTable(cap symmetry.Capability, candidates []invariant.Label) symmetry.RecalcTable {
	table := make(symmetry.RecalcTable)
	for _, I := range candidates {
		ancestors := cap.Ancestors(I)
		entries := make([]symmetry.RecalcEntry, 0, len(ancestors))
		for i, anc := range ancestors {
			entries = append(entries, symmetry.RecalcEntry{
				AncestorIndex: i, I1Old: i, IpOld: i, Factor: 1,
				AncestorIN1: anc, AncestorINp: anc,
			})
		}
		table[invariant.Pair{I1: I, I2: I}] = entries
	}
	return table
}
