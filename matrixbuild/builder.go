// Package matrixbuild assembles the next-step block Hamiltonian from
// the previous step's spectra, the chain coefficients at the current
// site, and the symmetry's ancestor/triangle/make_matrix capabilities,
// per spec.md §4.1.
package matrixbuild

import (
	"math"

	"github.com/mihasalamun/nrgljubljana/chain"
	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/operator"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"github.com/mihasalamun/nrgljubljana/symmetry"
	"gonum.org/v1/gonum/mat"
)

// Layout records the block offsets computed for an invariant's ancestor
// list, so the caller (Diagonalizer, then Recalculator through
// Subspace.Split) can address the same blocks after diagonalization.
type Layout struct {
	Ancestors []invariant.Label
	RMax      []int // dim(anc[i]) if triangle-allowed, else 0
	Offset    []int // prefix sum of RMax
	Total     int
}

// ComputeLayout determines the block layout for invariant I given its
// ancestor list, by testing cap.Triangle(I, anc[i], Qop_i) for each
// ancestor, where Qop_i is the operator's own quantum number, taken as
// the component-wise additive difference I - anc[i] (spec.md §4.1:
// "rmax(i) = dim(anc[i]) if triangle_allowed... else 0").
func ComputeLayout(cap symmetry.Capability, prev *spectrum.DiagState, I invariant.Label, ancestors []invariant.Label) Layout {
	n := len(ancestors)
	layout := Layout{Ancestors: ancestors, RMax: make([]int, n), Offset: make([]int, n)}
	offset := 0
	for i, anc := range ancestors {
		qop := difference(cap.Schema(), I, anc)
		allowed := cap.Triangle(I, anc, qop)
		dim := 0
		if allowed {
			if s, ok := prev.Spectra[anc]; ok {
				dim = s.Kept
			}
		}
		layout.RMax[i] = dim
		layout.Offset[i] = offset
		offset += dim
	}
	layout.Total = offset
	return layout
}

func difference(schema invariant.Schema, a, b invariant.Label) invariant.Label {
	vals := make([]int32, schema.Arity())
	for i := 0; i < schema.Arity(); i++ {
		switch schema.Kinds[i] {
		case invariant.Additive:
			vals[i] = a.At(i) - b.At(i)
		case invariant.Multiplicative:
			// sign ratio; division in {-1,+1} is multiplication by
			// the inverse, which is itself.
			vals[i] = a.At(i) * b.At(i)
		}
	}
	return invariant.New(vals...)
}

// RescaleFactor returns √Λ in ordinary mode, or Λ^(1/(2·channels)) in
// substep mode, per spec.md §4.1 "Diagonal within block".
func RescaleFactor(lambda float64, channels int, substeps bool) float64 {
	if substeps && channels > 1 {
		return math.Pow(lambda, 1/(2*float64(channels)))
	}
	return math.Sqrt(lambda)
}

// Build assembles the dense symmetric block Hamiltonian for invariant I
// at the given site, per spec.md §4.1. hopping holds one hopping
// operator block set per channel, coupling ancestor subspaces.
func Build(cap symmetry.Capability, prev *spectrum.DiagState, shell *chain.Shell, hopping []*operator.Set, I invariant.Label, site int, lambda float64, substeps bool) (*mat.SymDense, Layout) {
	ancestors := cap.Ancestors(I)
	layout := ComputeLayout(cap, prev, I, ancestors)
	n := layout.Total
	h := mat.NewSymDense(n, nil)
	if n == 0 {
		return h, layout
	}

	rescale := RescaleFactor(lambda, shell.Channels(), substeps)

	// Diagonal: rescaled v_zero of the ancestor's previous spectrum.
	for i, anc := range ancestors {
		dim := layout.RMax[i]
		if dim == 0 {
			continue
		}
		off := layout.Offset[i]
		s := prev.Spectra[anc]
		for r := 0; r < dim; r++ {
			h.SetSym(off+r, off+r, rescale*s.VZero[r])
		}
	}

	// Off-diagonal: symmetry-specific hopping contributions, one table
	// lookup for the symmetry and channel count, applied to each channel
	// (spec.md §4.1: "table lookup is by symmetry and number of channels").
	contribs := cap.MakeMatrix(I, ancestors, shell.Channels())
	for _, c := range contribs {
		rdim, cdim := layout.RMax[c.AncestorRow], layout.RMax[c.AncestorCol]
		if rdim == 0 || cdim == 0 {
			continue // triangle inequality failed for one side: zero contribution
		}
		roff, coff := layout.Offset[c.AncestorRow], layout.Offset[c.AncestorCol]
		ancRow, ancCol := ancestors[c.AncestorRow], ancestors[c.AncestorCol]
		for ch := 0; ch < shell.Channels(); ch++ {
			_, xi := shell.At(ch, site)
			coeff := c.Coefficient * xi
			if coeff == 0 {
				continue
			}
			op := hoppingBlock(hopping, ch)
			if op == nil {
				continue
			}
			fmat, ok := op.Get(ancRow, ancCol)
			if !ok {
				continue
			}
			fr, fc := fmat.Dims()
			m := minOf(rdim, cdim, fr, fc)
			for k := 0; k < m; k++ {
				v := coeff * fmat.At(k, k)
				if roff+k < coff+k {
					h.SetSym(roff+k, coff+k, v)
				} else if roff+k > coff+k {
					h.SetSym(coff+k, roff+k, v)
				}
			}
		}
	}

	return h, layout
}

func minOf(vs ...int) int {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func hoppingBlock(hopping []*operator.Set, channel int) *operator.Set {
	if channel < 0 || channel >= len(hopping) {
		return nil
	}
	return hopping[channel]
}
