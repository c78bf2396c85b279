package spectrum

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// SubspaceComplex is the Hermitian-model counterpart of Subspace: same
// shape, but with complex eigenvectors (spec.md §4.2: "symmetric (real)
// or Hermitian (complex)").
type SubspaceComplex struct {
	VOrig              []float64
	Vectors            *mat.CDense
	VZero              []float64
	AbsE, AbsEG, AbsEN []float64
	Kept               int
	Blocks             []ColumnBlock
}

// NewComplex builds a SubspaceComplex from ascending eigenvalues (real,
// since the matrix is Hermitian) and their eigenvectors (rows =
// eigenpairs).
func NewComplex(values []float64, vectors *mat.CDense) *SubspaceComplex {
	if !sort.Float64sAreSorted(values) {
		panic("spectrum: eigenvalues must be sorted ascending")
	}
	r, _ := vectors.Dims()
	if r != len(values) {
		panic(fmt.Sprintf("spectrum: %d eigenvalues but %d eigenvector rows", len(values), r))
	}
	return &SubspaceComplex{VOrig: values, Vectors: vectors, Kept: len(values)}
}

// Dim returns the basis dimension.
func (s *SubspaceComplex) Dim() int {
	if s.Vectors == nil {
		return 0
	}
	_, c := s.Vectors.Dims()
	return c
}

// SubtractGroundState mirrors Subspace.SubtractGroundState.
func (s *SubspaceComplex) SubtractGroundState(egs float64) {
	s.VZero = make([]float64, len(s.VOrig))
	for i, v := range s.VOrig {
		s.VZero[i] = v - egs
	}
}

// Split mirrors Subspace.Split.
func (s *SubspaceComplex) Split(widths []int) {
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

// DropVectors mirrors Subspace.DropVectors.
func (s *SubspaceComplex) DropVectors() { s.Vectors = nil }
