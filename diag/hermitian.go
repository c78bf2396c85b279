package diag

import (
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"gonum.org/v1/gonum/mat"
)

// CHermDense is a dense Hermitian matrix, stored as its real part
// (symmetric) and imaginary part (antisymmetric, zero diagonal).
// gonum's retrievable snapshot exposes a certain, verified symmetric
// real eigensolver (mat.EigenSym, spec.md's §4.2 "real (symmetric)"
// path) but no equally certain dedicated complex-Hermitian solver in
// this corpus snapshot; CHermDense is diagonalized via the standard
// real-embedding reduction instead of guessing at an unverified
// complex LAPACK binding (see solveComplex).
type CHermDense struct {
	N    int
	Real *mat.SymDense // Hermitian matrix's real part, symmetric
	Imag *mat.Dense    // Hermitian matrix's imaginary part, antisymmetric with zero diagonal
}

// NewCHermDense builds a Hermitian matrix from its real (symmetric) and
// imaginary (antisymmetric) parts.
func NewCHermDense(n int, re *mat.SymDense, im *mat.Dense) *CHermDense {
	return &CHermDense{N: n, Real: re, Imag: im}
}

// embed builds the 2n×2n real symmetric matrix
//
//	M = [ A  -B ]
//	    [ B   A ]
//
// whose spectrum is the spectrum of the Hermitian matrix H = A + iB,
// each eigenvalue doubled. This is the standard real-embedding
// reduction for Hermitian eigenproblems, chosen because it needs only
// the real symmetric solver this corpus snapshot actually shows
// (mat.EigenSym / mat/eigen.go), rather than an unverified complex
// LAPACK binding.
func (h *CHermDense) embed() *mat.SymDense {
	n := h.N
	m := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a := h.Real.At(i, j)
			m.SetSym(i, j, a)
			m.SetSym(n+i, n+j, a)
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			b := h.Imag.At(i, j)
			// Upper triangle of M only; SetSym mirrors automatically.
			if i <= n+j {
				m.SetSym(i, n+j, -b)
			}
			if j <= n+i {
				m.SetSym(j, n+i, b)
			}
		}
	}
	return m
}

// solveComplex diagonalizes h via the real-embedding reduction,
// recovering n genuine Hermitian eigenpairs (each eigenvalue of the
// 2n-dimensional embedding appears twice; only the first copy of each
// pair is retained) and keeping the lowest diagratio-fraction, mirroring
// solveReal's retry-policy behavior.
func solveComplex(h *CHermDense, diagratio float64, blockWidths []int) *spectrum.SubspaceComplex {
	embedded := h.embed()
	var eig mat.EigenSym
	ok := eig.Factorize(embedded, true)
	if !ok {
		panic("diag: Hermitian eigendecomposition failed to converge")
	}
	all := eig.Values(nil)
	var vecs mat.Dense
	vecs.EigenvectorsSym(&eig)

	n := h.N
	keep := n
	if diagratio < 1 {
		keep = intCeil(float64(n) * diagratio)
		if keep < 1 {
			keep = 1
		}
	}

	// Each physical eigenvalue appears twice consecutively (up to
	// numerical degeneracy splitting); take every second one starting
	// from the lowest, up to the kept count.
	values := make([]float64, 0, keep)
	cols := make([]int, 0, keep)
	for i := 0; i < 2*n && len(values) < keep; i += 2 {
		values = append(values, all[i])
		cols = append(cols, i)
	}

	vectors := mat.NewCDense(keep, n, nil)
	for r, col := range cols {
		for k := 0; k < n; k++ {
			re := vecs.At(k, col)
			im := vecs.At(n+k, col)
			vectors.Set(r, k, complex(re, im))
		}
	}

	s := spectrum.NewComplex(values, vectors)
	if blockWidths != nil {
		s.Split(blockWidths)
	}
	return s
}

func intCeil(x float64) int {
	i := int(x)
	if float64(i) < x {
		i++
	}
	return i
}
