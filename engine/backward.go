package engine

import (
	"errors"
	"math/big"

	"github.com/mihasalamun/nrgljubljana/densitymatrix"
	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/nrgerr"
	"github.com/mihasalamun/nrgljubljana/nrglog"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"github.com/mihasalamun/nrgljubljana/stats"
	"gonum.org/v1/gonum/mat"
)

// BackwardResult is the outcome of the density-matrix backward pass:
// per-step reduced and FDM density matrices (already persisted to the
// working directory) plus the global FDM thermodynamics they feed.
type BackwardResult struct {
	Rho     []map[invariant.Label]*mat.Dense
	RhoFDM  []map[invariant.Label]*mat.Dense
	Wn      []*big.Float
	Thermo  stats.FDMResult
}

// RunBackward implements spec.md §4.6: builds rho at the last stored
// shell directly, then walks backward reducing it one shell at a time,
// persisting rho<N> at each step (spec.md §4.7); separately computes the
// FDM weights wn[N] and the per-shell rhoFDM blocks, and the FDM
// thermodynamics they feed (spec.md §4.8's "true" Z_fdm/F_fdm/...).
//
// It reloads each step's eigenvector transform from Workdir rather than
// keeping it in RunForward's in-memory ShellResults, since RunForward
// already dropped every Subspace's Vectors once that step's
// recalculation was done (spec.md §3 lifecycle) — exactly the handoff
// spec.md §4.7's persisted unitary<N> exists to support.
func (e *Engine) RunBackward(forward []ShellResult) (BackwardResult, error) {
	n := len(forward)
	if n == 0 {
		return BackwardResult{}, nil
	}
	nrglog.Infof("backward pass: %d shells", n)

	combs := 0
	if len(forward[0].Invariants) > 0 {
		combs = len(e.Cap.Ancestors(forward[0].Invariants[0]))
	}

	dimsPerShell := make([]map[invariant.Label]spectrum.SubspaceDims, n)
	for i, r := range forward {
		dimsPerShell[i] = r.Diag.Dims
	}

	znDG := make([]*big.Float, n)
	for i, dims := range dimsPerShell {
		znDG[i] = densitymatrix.ZShell(dims, e.Cap, e.Params.T, densitymatrix.ZnDG)
	}
	wn := densitymatrix.ComputeWeights(znDG, combs)
	if err := densitymatrix.CheckWeightSum(wn); err != nil {
		return BackwardResult{}, err
	}

	shells := make([]densitymatrix.Shell, n)
	for i, dims := range dimsPerShell {
		shells[i] = densitymatrix.Shell{Dims: dims}
	}
	rhoFDM := densitymatrix.BuildRhoFDM(shells, wn, e.Cap, e.Params.T)
	thermo := stats.FDM(shells, e.Cap, e.Params.T, combs)

	rho := make([]map[invariant.Label]*mat.Dense, n)
	last := forward[n-1]
	lastStep := last.Step
	rho[n-1] = densitymatrix.BuildLast(last.Diag, e.Cap, lastStep.ScT(e.Params.T))
	if err := densitymatrix.CheckTrace(rho[n-1], e.Cap, 1e-8); err != nil {
		nrglog.Warnf("rho trace check failed at last shell: %v", err)
		return BackwardResult{}, err
	}

	if e.Workdir != nil {
		if err := e.Workdir.SaveRho(n-1, rho[n-1]); err != nil {
			return BackwardResult{}, err
		}
		if err := e.Workdir.SaveRhoFDM(n-1, rhoFDM[n-1]); err != nil {
			return BackwardResult{}, err
		}
	}

	for i := n - 2; i >= 0; i-- {
		childVectors, err := e.loadVectors(i + 1)
		if err != nil {
			return BackwardResult{}, err
		}
		childSpectra := reconstructSpectra(dimsPerShell[i+1], childVectors)
		ancestors := make(densitymatrix.Ancestors, len(forward[i+1].Invariants))
		for _, I := range forward[i+1].Invariants {
			ancestors[I] = e.Cap.Ancestors(I)
		}

		rho[i] = densitymatrix.ReduceBackward(rho[i+1], childSpectra, ancestors, e.Cap)
		if e.Workdir != nil {
			if err := e.Workdir.SaveRho(i, rho[i]); err != nil {
				return BackwardResult{}, err
			}
			if err := e.Workdir.SaveRhoFDM(i, rhoFDM[i]); err != nil {
				return BackwardResult{}, err
			}
		}
	}

	return BackwardResult{Rho: rho, RhoFDM: rhoFDM, Wn: wn, Thermo: thermo}, nil
}

func (e *Engine) loadVectors(step int) (map[invariant.Label]*mat.Dense, error) {
	if e.Workdir == nil {
		return nil, nrgerr.WithFile(nrgerr.IOFailure, "", errors.New("no working directory configured for backward pass"))
	}
	return e.Workdir.LoadUnitary(step)
}

// reconstructSpectra rebuilds enough of each Subspace for
// densitymatrix.ReduceBackward to walk: the eigenvector matrix (loaded
// back from persist) and the column-block layout recovered from the
// persisted SubspaceDims' offsets (widths are the gaps between
// consecutive offsets, since Split always assigns contiguous blocks).
func reconstructSpectra(dims map[invariant.Label]spectrum.SubspaceDims, vectors map[invariant.Label]*mat.Dense) map[invariant.Label]*spectrum.Subspace {
	out := make(map[invariant.Label]*spectrum.Subspace, len(dims))
	for I, d := range dims {
		v, ok := vectors[I]
		if !ok {
			continue
		}
		blocks := make([]spectrum.ColumnBlock, len(d.BlockOffsets))
		for i, off := range d.BlockOffsets {
			width := d.Total - off
			if i+1 < len(d.BlockOffsets) {
				width = d.BlockOffsets[i+1] - off
			}
			blocks[i] = spectrum.ColumnBlock{Offset: off, Width: width}
		}
		out[I] = &spectrum.Subspace{Vectors: v, VZero: d.VZero, Kept: d.Kept, Blocks: blocks}
	}
	return out
}
