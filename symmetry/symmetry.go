// Package symmetry provides the per-symmetry capability object of
// spec.md §9: multiplicity, the triangle-inequality predicate, the
// ancestor-subspace list, invariant composition, and the
// matrix-construction and operator-recalculation routines. Every
// consumer receives a Capability explicitly; there is no inheritance
// hierarchy and no package-level active symmetry (spec.md §9 "Global
// state").
//
// Per-symmetry Clebsch-Gordan-like coefficient tables are treated as
// opaque data (spec.md §1 "Out of scope"): RecalcTable below is the
// shape Recalculator expects. The in-repo QS and QSZ symmetries fill
// their entries with unit-factor selection rules (recalctable.go's
// matchDelta), not with derived coupling coefficients.
package symmetry

import "github.com/mihasalamun/nrgljubljana/invariant"

// RecalcEntry is one contribution to a recalculated operator matrix
// element, as spec.md §4.4 describes: for ancestor index i, the triple
// (i1_old, ip_old, factor) plus the two ancestor invariants the old
// block came from.
type RecalcEntry struct {
	AncestorIndex        int
	I1Old, IpOld         int
	Factor               float64
	AncestorIN1, AncestorINp invariant.Label
}

// RecalcTable maps a (target I1, target Ip) pair to the list of
// contributions Recalculator must accumulate (spec.md §4.4 step 1).
type RecalcTable map[invariant.Pair][]RecalcEntry

// Character names the tensor character of an operator set (spec.md §3):
// doublets transform as spin-1/2 operators, triplets as spin-1 (or
// isospin-1), quadruplets as the four-fold combination used by some
// symmetries, orbital triplets as channel-space vectors.
type Character uint8

const (
	CharacterSinglet Character = iota
	CharacterSingletOdd
	CharacterGlobalSinglet
	CharacterDoublet
	CharacterTriplet
	CharacterQuadruplet
	CharacterOrbitalTriplet
)

// MatrixContribution is one off-diagonal hopping contribution
// make_matrix produces: the row/column ancestor indices within the
// block layout, the scalar coefficient, and which chain coefficient it
// draws from (spec.md §4.1).
type MatrixContribution struct {
	AncestorRow, AncestorCol int
	RowOffsetInBlock, ColOffsetInBlock int
	Coefficient float64
}

// Capability bundles everything MatrixBuilder, Diagonalizer's caller,
// Truncator, and Recalculator need from a specific symmetry, passed by
// reference rather than resolved through a global registry at call
// time (spec.md §9).
type Capability interface {
	// Name identifies the symmetry, e.g. "QS", "QSZ".
	Name() string

	// Schema describes the invariant label's components and their
	// composition kind.
	Schema() invariant.Schema

	// Multiplicity returns the symmetry-specific degeneracy of
	// invariant subspace I (spec.md §3).
	Multiplicity(I invariant.Label) int

	// Triangle reports whether I1 and I2 may be coupled by an operator
	// transforming as Iop (spec.md §3 triangle_allowed).
	Triangle(I1, I2, Iop invariant.Label) bool

	// Ancestors returns the list of invariants that combine with the
	// hopping operator to produce invariant I at the next site
	// (spec.md §4.1).
	Ancestors(I invariant.Label) []invariant.Label

	// MakeMatrix fills the off-diagonal hopping contributions between
	// ancestor blocks for invariant I, given the number of conduction
	// channels (spec.md §4.1: "a table of contributions; table lookup
	// is by symmetry and number of channels").
	MakeMatrix(I invariant.Label, ancestors []invariant.Label, channels int) []MatrixContribution

	// RecalcDoublet, RecalcTriplet, RecalcQuadruplet return the
	// per-symmetry coefficient tables Recalculator needs for operators
	// of each tensor character (spec.md §4.4).
	RecalcDoublet(I1, Ip invariant.Label) []RecalcEntry
	RecalcTriplet(I1, Ip invariant.Label) []RecalcEntry
	RecalcQuadruplet(I1, Ip invariant.Label) []RecalcEntry
}
