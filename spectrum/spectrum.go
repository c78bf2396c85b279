// Package spectrum holds the per-subspace eigenvalue/eigenvector data
// of spec.md §3 "Subspace spectrum" and the per-step collection of it,
// DiagState. Eigenvectors are stored as a dense gonum matrix so that
// Recalculator's contractions can call into BLAS-backed mat.Dense.Mul
// directly, per spec.md §9 "Shared-memory matrices".
package spectrum

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ColumnBlock is one contiguous run of columns within Subspace.Vectors
// that originated from a single ancestor invariant subspace during
// MatrixBuilder's block assembly (spec.md §3: "a sequence of column
// blocks partitioned by the parent invariant subspace from which each
// column originated"). Keeping these contiguous lets Recalculator slice
// out tiles for GEMM instead of gathering scattered columns.
type ColumnBlock struct {
	Offset int // first column index in Vectors
	Width  int // number of columns
}

// Subspace is the per-invariant eigendata of one shell, spec.md §3.
type Subspace struct {
	// VOrig holds the original eigenvalues, sorted ascending.
	VOrig []float64
	// Vectors holds the eigenvectors as rows (row r is eigenpair r),
	// dim(basis) columns. It is set to nil once the step's transform
	// has been persisted and blocks have been recorded, per spec.md §3
	// lifecycle ("their eigenvectors are dropped to save memory").
	Vectors *mat.Dense
	// VZero holds the ground-state-shifted eigenvalues, VOrig - Egs.
	VZero []float64
	// AbsE, AbsEG, AbsEN hold the absolute energy in three reference
	// scales: raw accumulated, referenced to the global ground state,
	// and referenced to the n'th-shell ground state (spec.md §3).
	AbsE, AbsEG, AbsEN []float64
	// Kept is the number of eigenpairs retained for the next step,
	// Kept <= len(VOrig).
	Kept int
	// Blocks partitions the columns of Vectors by parent ancestor
	// subspace, once Split has been called.
	Blocks []ColumnBlock
}

// New builds a Subspace from ascending eigenvalues and their
// eigenvectors (rows = eigenpairs). It panics if the eigenvalues are
// not weakly increasing, enforcing spec.md §3's invariant.
func New(values []float64, vectors *mat.Dense) *Subspace {
	if !sort.Float64sAreSorted(values) {
		panic("spectrum: eigenvalues must be sorted ascending")
	}
	r, _ := vectors.Dims()
	if r != len(values) {
		panic(fmt.Sprintf("spectrum: %d eigenvalues but %d eigenvector rows", len(values), r))
	}
	return &Subspace{VOrig: values, Vectors: vectors, Kept: len(values)}
}

// Dim returns the basis dimension (number of columns of Vectors), or 0
// once Vectors has been dropped.
func (s *Subspace) Dim() int {
	if s.Vectors == nil {
		return 0
	}
	_, c := s.Vectors.Dims()
	return c
}

// Computed returns the number of eigenpairs actually computed
// (len(VOrig)), which may be less than Dim() under a partial diagratio
// diagonalization (spec.md §4.2).
func (s *Subspace) Computed() int { return len(s.VOrig) }

// SubtractGroundState shifts VOrig by egs into VZero. Called once per
// step after the global ground-state energy for the step is known
// (spec.md §3: "v_zero = v_orig − Egs").
func (s *Subspace) SubtractGroundState(egs float64) {
	s.VZero = make([]float64, len(s.VOrig))
	for i, v := range s.VOrig {
		s.VZero[i] = v - egs
	}
}

// SetAbsoluteEnergies fills AbsE and AbsEN from VOrig/VZero given the
// step's energy scale and the absolute ground-state energy accumulated
// through the previous step (totalBefore), per spec.md §3's raw and
// shell-referenced absolute energy scales. AbsE is the raw accumulated
// absolute energy; AbsEN, referenced to this shell's own ground state,
// reduces to a pure rescaling of VZero since totalBefore cancels
// exactly against this step's own Egs contribution.
func (s *Subspace) SetAbsoluteEnergies(scale, totalBefore float64) {
	s.AbsE = make([]float64, len(s.VOrig))
	for i, v := range s.VOrig {
		s.AbsE[i] = v*scale + totalBefore
	}
	s.AbsEN = make([]float64, len(s.VZero))
	for i, v := range s.VZero {
		s.AbsEN[i] = v * scale
	}
}

// ReferenceToGlobal fills AbsEG from AbsE once the global ground-state
// energy GSEnergy is known — only after the full forward pass
// completes, per spec.md §3 "Stats": "after the first pass GS_energy
// := total_energy".
func (s *Subspace) ReferenceToGlobal(gsEnergy float64) {
	s.AbsEG = make([]float64, len(s.AbsE))
	for i, v := range s.AbsE {
		s.AbsEG[i] = v - gsEnergy
	}
}

// Split partitions the columns of Vectors into contiguous blocks of
// the given widths, recording them in Blocks. The widths must sum to
// Dim(); this is MatrixBuilder's own block layout, handed back after
// diagonalization so Recalculator can address it (spec.md §3 "after
// split, block column counts sum to total columns").
func (s *Subspace) Split(widths []int) {
	total := 0
	for _, w := range widths {
		total += w
	}
	if total != s.Dim() {
		panic(fmt.Sprintf("spectrum: block widths sum to %d, want %d", total, s.Dim()))
	}
	blocks := make([]ColumnBlock, len(widths))
	offset := 0
	for i, w := range widths {
		blocks[i] = ColumnBlock{Offset: offset, Width: w}
		offset += w
	}
	s.Blocks = blocks
}

// BlockView returns the column slice of Vectors belonging to block i.
func (s *Subspace) BlockView(i int) mat.Matrix {
	b := s.Blocks[i]
	r, _ := s.Vectors.Dims()
	return s.Vectors.Slice(0, r, b.Offset, b.Offset+b.Width)
}

// BlockViewRows returns block i's column slice restricted to the first
// rows eigenstates, for Recalculator's strategy=kept path (spec.md
// §4.4: "strategy kept transforms only the kept rows/columns").
func (s *Subspace) BlockViewRows(i, rows int) mat.Matrix {
	b := s.Blocks[i]
	r, _ := s.Vectors.Dims()
	if rows < r {
		r = rows
	}
	return s.Vectors.Slice(0, r, b.Offset, b.Offset+b.Width)
}

// DropVectors releases the eigenvector matrix once the transform has
// been persisted, per spec.md §3 lifecycle.
func (s *Subspace) DropVectors() { s.Vectors = nil }

// SubspaceDims is the persistent snapshot of a Subspace that survives
// after the step ends and feeds DensityMatrixEngine (spec.md §3 "Shell
// state"): kept/total counts, block offsets, whether this is the final
// shell, and the eigenvalues at all three energy scales.
type SubspaceDims struct {
	Kept, Total int
	BlockOffsets []int
	Last         bool
	VZero, AbsE, AbsEG, AbsEN []float64
}

// Snapshot extracts the SubspaceDims record for s at the given step,
// to be retained after s.Vectors is dropped.
func (s *Subspace) Snapshot(last bool) SubspaceDims {
	offsets := make([]int, len(s.Blocks))
	for i, b := range s.Blocks {
		offsets[i] = b.Offset
	}
	return SubspaceDims{
		Kept: s.Kept, Total: s.Dim(), BlockOffsets: offsets, Last: last,
		VZero: append([]float64(nil), s.VZero...),
		AbsE:  append([]float64(nil), s.AbsE...),
		AbsEG: append([]float64(nil), s.AbsEG...),
		AbsEN: append([]float64(nil), s.AbsEN...),
	}
}
