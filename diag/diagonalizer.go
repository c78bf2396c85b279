// Package diag turns per-invariant blocks into eigenpairs, dispatching
// independent blocks in parallel (spec.md §4.2). Two interchangeable
// Backend implementations exist: SharedPool (goroutine worker pool) and
// Distributed (an in-process simulation of the root/worker message
// protocol spec.md §4.2 describes — see doc comment on Distributed for
// why it is simulated rather than backed by a real transport).
package diag

import (
	"math"
	"sort"

	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"gonum.org/v1/gonum/mat"
)

// Task is one invariant subspace's matrix to diagonalize. Real is set
// for the symmetric (real scalar kind) path; Complex is set for the
// Hermitian (complex scalar kind) path. Exactly one must be non-nil.
type Task struct {
	I           invariant.Label
	Real        *mat.SymDense
	Complex     *CHermDense
	BlockWidths []int // handed to Subspace.Split once diagonalized
}

// Size returns the task's matrix dimension, used to sort tasks
// largest-first for load balancing (spec.md §4.2, §5).
func (t Task) Size() int {
	if t.Real != nil {
		n := t.Real.Symmetric()
		return n
	}
	return t.Complex.N
}

// SortLargestFirst orders tasks by decreasing matrix size, the load
// balancing heuristic spec.md §4.2 specifies for both backends.
func SortLargestFirst(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Size() > tasks[j].Size() })
}

// Backend diagonalizes a batch of tasks into a DiagState, per spec.md
// §5 "Scheduling model".
type Backend interface {
	Diagonalize(tasks []Task, diagratio float64) (*spectrum.DiagState, error)
}

// solveReal runs mat.EigenSym on a, then keeps only the lowest
// diagratio-fraction of the resulting eigenpairs, simulating the
// partial-spectrum request of spec.md §4.2's diagratio hint (gonum's
// Syev binding, like LAPACK's, always computes the full spectrum; the
// partial-computation request is realized here as a post-hoc restriction
// of what gets stored, which is sufficient to drive the Truncator's
// insufficient-states retry loop the same way a true partial solve
// would).
func solveReal(a *mat.SymDense, diagratio float64, blockWidths []int) *spectrum.Subspace {
	n := a.Symmetric()
	var eig mat.EigenSym
	ok := eig.Factorize(a, true)
	if !ok {
		panic("diag: symmetric eigendecomposition failed to converge")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	vectors.EigenvectorsSym(&eig)

	keep := n
	if diagratio < 1 {
		keep = int(math.Ceil(float64(n) * diagratio))
		if keep < 1 {
			keep = 1
		}
	}

	retainedValues := append([]float64(nil), values[:keep]...)
	// EigenvectorsSym returns eigenvectors as columns; Subspace wants
	// them as rows (spec.md §3: "eigenvectors as a dense rectangular
	// matrix (rows = eigenpairs...)").
	retainedVectors := mat.NewDense(keep, n, nil)
	for r := 0; r < keep; r++ {
		for c := 0; c < n; c++ {
			retainedVectors.Set(r, c, vectors.At(c, r))
		}
	}
	s := spectrum.New(retainedValues, retainedVectors)
	if blockWidths != nil {
		s.Split(blockWidths)
	}
	return s
}
