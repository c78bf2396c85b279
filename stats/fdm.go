package stats

import (
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
	"github.com/mihasalamun/nrgljubljana/densitymatrix"
	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"github.com/mihasalamun/nrgljubljana/symmetry"
)

// FDMResult holds the "true" FDM thermodynamics of spec.md §4.8,
// referenced to the absolute ground state rather than each shell's own
// local ground state.
type FDMResult struct {
	Z, E, E2, C, F, S float64
}

// shellMoments returns a shell's own partition function and its
// Boltzmann-weighted absE_G first and second moments, all in extended
// precision, using the same ZnDG (global ground-state) energy reference
// densitymatrix.ZShell sums over with multiplicity for ComputeWeights.
func shellMoments(dims map[invariant.Label]spectrum.SubspaceDims, cap symmetry.Capability, T float64) (z, sumE, sumE2 *big.Float) {
	z = newBig(0)
	sumE = newBig(0)
	sumE2 = newBig(0)
	tNeg := newBig(-1 / T)

	for I, d := range dims {
		mult := newBig(float64(cap.Multiplicity(I)))
		for _, e := range densitymatrix.ZnDG(d) {
			eb := newBig(e)
			exponent := new(big.Float).SetPrec(precision).Mul(tNeg, eb)
			w := bigfloat.Exp(exponent)
			w.Mul(w, mult)

			z.Add(z, w)
			ew := new(big.Float).SetPrec(precision).Mul(eb, w)
			sumE.Add(sumE, ew)
			e2w := new(big.Float).SetPrec(precision).Mul(eb, ew)
			sumE2.Add(sumE2, e2w)
		}
	}
	return z, sumE, sumE2
}

// FDM computes Z_fdm, <E>_fdm, <E²>_fdm, C_fdm, F_fdm, S_fdm from the
// per-shell dimension snapshots and the FDM shell weights wn
// (densitymatrix.ComputeWeights), per spec.md §4.8: thermal averages
// over the full discarded-state tower are the wn-weighted sum of each
// shell's own Boltzmann average (densitymatrix.BuildRhoFDM builds the
// matching per-shell density-matrix blocks); Z_fdm is the same ZZG
// normalization constant the weights themselves were built from
// (densitymatrix.ComputeWeights), recomputed here directly from the
// shell Z's and combs powers so this package does not need to reach
// back into the weight-construction internals.
func FDM(shells []densitymatrix.Shell, cap symmetry.Capability, T float64, combs int) FDMResult {
	n := len(shells)
	if n == 0 {
		return FDMResult{}
	}

	shellZ := make([]*big.Float, n)
	shellE := make([]*big.Float, n)
	shellE2 := make([]*big.Float, n)
	for i, shell := range shells {
		z, e, e2 := shellMoments(shell.Dims, cap, T)
		shellZ[i] = z
		shellE[i] = e
		shellE2[i] = e2
	}

	zzg := newBig(0)
	weighted := make([]*big.Float, n)
	for N := 0; N < n; N++ {
		p := combsPow(combs, n-N-1)
		term := new(big.Float).SetPrec(precision).Mul(p, shellZ[N])
		zzg.Add(zzg, term)
		weighted[N] = p
	}

	sumE := newBig(0)
	sumE2 := newBig(0)
	for N := 0; N < n; N++ {
		zf, _ := shellZ[N].Float64()
		if zf == 0 {
			continue
		}
		meanE := new(big.Float).SetPrec(precision).Quo(shellE[N], shellZ[N])
		meanE2 := new(big.Float).SetPrec(precision).Quo(shellE2[N], shellZ[N])
		wn := new(big.Float).SetPrec(precision).Mul(weighted[N], shellZ[N])
		wn.Quo(wn, zzg)

		sumE.Add(sumE, new(big.Float).SetPrec(precision).Mul(wn, meanE))
		sumE2.Add(sumE2, new(big.Float).SetPrec(precision).Mul(wn, meanE2))
	}

	zf, _ := zzg.Float64()
	if zf == 0 {
		return FDMResult{}
	}
	ef, _ := sumE.Float64()
	e2f, _ := sumE2.Float64()

	cBig := new(big.Float).SetPrec(precision).Sub(sumE2, new(big.Float).SetPrec(precision).Mul(sumE, sumE))
	cf, _ := cBig.Float64()

	lnZ := math.Log(zf)
	return FDMResult{
		Z: zf, E: ef, E2: e2f, C: cf,
		F: -T * lnZ,
		S: ef/T + lnZ,
	}
}

// combsPow returns combs^exp in extended precision, matching
// densitymatrix.ComputeWeights's own combsPow helper (duplicated here
// rather than exported from densitymatrix, since it is a one-line
// arithmetic primitive, not a physics concept the two packages should
// share a type for).
func combsPow(combs, exp int) *big.Float {
	result := newBig(1)
	base := newBig(float64(combs))
	for i := 0; i < exp; i++ {
		result = new(big.Float).SetPrec(precision).Mul(result, base)
	}
	return result
}
