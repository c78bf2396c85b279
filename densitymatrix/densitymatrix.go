// Package densitymatrix builds the reduced density matrix rho at each
// shell (spec.md §4.6). BuildLast constructs rho at the last stored
// shell directly from its eigenvalues; ReduceBackward projects a
// shell's rho one step back toward the impurity, through the same
// block-decomposed eigenvector transform Recalculator uses, weighted
// by the symmetry's per-subspace multiplicity.
//
// Grounded on spec.md §4.6 directly; the backward projection reuses
// recalc's U^T·X·U GEMM-contraction idiom (mat.Dense.Mul composed with
// Matrix.T()), since physically the two operations are the same kind
// of basis change.
package densitymatrix

import (
	"math"

	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/nrgerr"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"github.com/mihasalamun/nrgljubljana/symmetry"
	"gonum.org/v1/gonum/mat"
)

// BuildLast implements spec.md §4.6 step 1: rho[I] := diag_exp(v_zero[I];
// scT) / Z_N, with Z_N = Σ_I mult(I)·Σᵢ exp(−v_zero[I,i]·scT).
func BuildLast(d *spectrum.DiagState, cap symmetry.Capability, scT float64) map[invariant.Label]*mat.Dense {
	z := 0.0
	weights := make(map[invariant.Label][]float64, len(d.Spectra))
	for I, s := range d.Spectra {
		mult := float64(cap.Multiplicity(I))
		w := make([]float64, len(s.VZero))
		for i, v := range s.VZero {
			w[i] = expNeg(v * scT)
			z += mult * w[i]
		}
		weights[I] = w
	}

	out := make(map[invariant.Label]*mat.Dense, len(weights))
	for I, w := range weights {
		n := len(w)
		m := mat.NewDense(n, n, nil)
		for i, v := range w {
			m.Set(i, i, v/z)
		}
		out[I] = m
	}
	return out
}

func expNeg(x float64) float64 {
	if x > 700 {
		return 0
	}
	return math.Exp(-x)
}

// Ancestors gives, for each new-shell invariant, the list of ancestor
// invariants in the same order MatrixBuilder assigned to Subspace's
// column blocks (spec.md §4.1, §3 "column blocks partitioned by parent
// invariant").
type Ancestors map[invariant.Label][]invariant.Label

// ReduceBackward implements spec.md §4.6's backward recursion: "reduce
// rho to the prior shell by summing over the new site's states while
// applying the symmetry-specific multiplicity weights". For each new
// subspace I with rho[I], and each of its ancestor blocks b (ancestor
// invariant anc), it accumulates
//
//	rhoPrev[anc] += mult(I) · block(I,b)ᵀ · rho[I] · block(I,b)
//
// into the prior shell's density matrix, keyed by ancestor invariant.
func ReduceBackward(newRho map[invariant.Label]*mat.Dense, newSpectra map[invariant.Label]*spectrum.Subspace, ancestors Ancestors, cap symmetry.Capability) map[invariant.Label]*mat.Dense {
	accum := make(map[invariant.Label]*mat.Dense)

	for I, s := range newSpectra {
		rho, ok := newRho[I]
		if !ok {
			continue
		}
		mult := float64(cap.Multiplicity(I))
		ancs := ancestors[I]
		for bi, anc := range ancs {
			if bi >= len(s.Blocks) {
				continue
			}
			block := s.BlockView(bi)
			var tmp mat.Dense
			tmp.Mul(block.T(), rho)
			var contrib mat.Dense
			contrib.Mul(&tmp, block)
			if mult != 1 {
				contrib.Scale(mult, &contrib)
			}

			if existing, ok := accum[anc]; ok {
				existing.Add(existing, &contrib)
			} else {
				accum[anc] = &contrib
			}
		}
	}
	return accum
}

// Trace returns the unweighted matrix trace of m.
func Trace(m *mat.Dense) float64 {
	n, _ := m.Dims()
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += m.At(i, i)
	}
	return sum
}

// CheckTrace validates spec.md §8 invariant 5: trace(rho[I] summed with
// multiplicity) = 1 within tol (default 1e-8). It returns a
// ToleranceViolation error otherwise.
func CheckTrace(rho map[invariant.Label]*mat.Dense, cap symmetry.Capability, tol float64) error {
	total := 0.0
	for I, m := range rho {
		total += float64(cap.Multiplicity(I)) * Trace(m)
	}
	if abs(total-1) > tol {
		return nrgerr.New(nrgerr.ToleranceViolation, traceErr(total))
	}
	return nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

type densitymatrixErr string

func (e densitymatrixErr) Error() string { return string(e) }

func traceErr(total float64) error {
	return densitymatrixErr("densitymatrix: trace(rho) != 1 within tolerance")
}
