// Package stats computes the per-step thermodynamic quantities of
// spec.md §4.8 (Z, <E>, <E²>, C, F, S) and, from the FDM shell weights
// densitymatrix produces, the "true" FDM thermodynamics referenced to
// the absolute ground state.
//
// Grounded on spec.md §4.8 and §9's extended-precision note directly;
// the heat-capacity cancellation <E²>−<E>² reuses the
// math/big + github.com/ALTree/bigfloat accumulation pattern
// densitymatrix/fdmweights.go already established for ZnDG/ZnDN, since
// both are the same double-precision significance loss spec.md §9
// calls out.
package stats

import (
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"github.com/mihasalamun/nrgljubljana/symmetry"
)

// precision matches densitymatrix's FDM accumulator precision
// (spec.md §9: "a bignum-float library with >=400-bit precision").
const precision = 400

func newBig(x float64) *big.Float {
	return new(big.Float).SetPrec(precision).SetFloat64(x)
}

// Result holds one step's thermodynamic quantities, all in units of
// the current β̄·scale (spec.md §4.8).
type Result struct {
	Z, E, E2, C, F, S float64
}

// Step computes Z, <E>, <E²>, C, F, S over every subspace of d, with
// scT the dimensionless v_zero·(scale/T) exponent spec.md §3 and §4.5
// use to weight Boltzmann factors. The three accumulators (Z, weighted
// E, weighted E²) are carried in extended precision throughout, since
// C = <E²> − <E>² is exactly the cancellation spec.md §9 warns about.
func Step(d *spectrum.DiagState, cap symmetry.Capability, scT float64) Result {
	z := newBig(0)
	sumE := newBig(0)
	sumE2 := newBig(0)

	for I, s := range d.Spectra {
		mult := newBig(float64(cap.Multiplicity(I)))
		for _, v := range s.VZero {
			x := newBig(v * scT)
			w := bigfloat.Exp(new(big.Float).SetPrec(precision).Neg(x))
			w.Mul(w, mult)

			z.Add(z, w)

			ew := new(big.Float).SetPrec(precision).Mul(x, w)
			sumE.Add(sumE, ew)

			e2w := new(big.Float).SetPrec(precision).Mul(x, ew)
			sumE2.Add(sumE2, e2w)
		}
	}

	zf, _ := z.Float64()
	if zf == 0 {
		return Result{}
	}

	meanE := new(big.Float).SetPrec(precision).Quo(sumE, z)
	meanE2 := new(big.Float).SetPrec(precision).Quo(sumE2, z)
	meanESq := new(big.Float).SetPrec(precision).Mul(meanE, meanE)
	c := new(big.Float).SetPrec(precision).Sub(meanE2, meanESq)

	ef, _ := meanE.Float64()
	e2f, _ := meanE2.Float64()
	cf, _ := c.Float64()
	lnZ := math.Log(zf)

	return Result{
		Z: zf, E: ef, E2: e2f, C: cf,
		F: -lnZ,
		S: ef + lnZ,
	}
}
