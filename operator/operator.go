// Package operator holds sparse operator-block maps and the named
// operator-block sets of spec.md §3: singlets, doublets, triplets,
// quadruplets, orbital triplets, and the channel×flavor hopping array.
package operator

import (
	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/symmetry"
	"gonum.org/v1/gonum/mat"
)

// Set is a sparse map from an invariant pair to its dense matrix block,
// spec.md §3 "Operator blocks": "Mapping (I1, I2) → dense rectangular
// matrix of size (dim(I1), dim(I2))".
type Set struct {
	Character symmetry.Character
	Blocks    map[invariant.Pair]*mat.Dense
}

// NewSet allocates an empty operator-block set of the given character.
func NewSet(character symmetry.Character) *Set {
	return &Set{Character: character, Blocks: make(map[invariant.Pair]*mat.Dense)}
}

// Get returns the block for (I1, I2), and whether it is present. A
// missing block means the operator vanishes identically between those
// subspaces (spec.md §4.5 guard: "if op1(II) ... is absent ... the pair
// is skipped").
func (s *Set) Get(I1, I2 invariant.Label) (*mat.Dense, bool) {
	m, ok := s.Blocks[invariant.Pair{I1: I1, I2: I2}]
	return m, ok
}

// Put stores the block for (I1, I2), replacing any existing one
// (spec.md §3 lifecycle: "replaced whole at each recalculation").
func (s *Set) Put(I1, I2 invariant.Label, m *mat.Dense) {
	s.Blocks[invariant.Pair{I1: I1, I2: I2}] = m
}

// Pairs returns the set's (I1, I2) keys in deterministic lexicographic
// order (spec.md §4.5 "Ordering of subspace-pair iteration is
// deterministic").
func (s *Set) Pairs() []invariant.Pair {
	out := make([]invariant.Pair, 0, len(s.Blocks))
	for p := range s.Blocks {
		out = append(out, p)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && less(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func less(a, b invariant.Pair) bool {
	if a.I1 != b.I1 {
		return invariant.Less(a.I1, b.I1)
	}
	return invariant.Less(a.I2, b.I2)
}

// Named is a collection of operator-block sets addressed by name, e.g.
// {"d_up": set, "d_down": set} for the impurity annihilation operators
// (spec.md §3: "each set is a mapping name → operator-block-set").
type Named map[string]*Set

// Collection bundles the seven named-set families of spec.md §3 plus
// the hopping array, the full "operator blocks" data model for one
// step.
type Collection struct {
	Singlets        Named
	SingletsOdd     Named
	GlobalSinglets  Named
	Doublets        Named
	Triplets        Named
	Quadruplets     Named
	OrbitalTriplets Named
	// Hopping is the channel×flavor array of hopping operator sets,
	// f_{channel,flavor} in spec.md §6.
	Hopping [][]*Set
}

// NewCollection allocates an empty Collection with a Hopping array
// sized for the given number of channels and flavors per channel.
func NewCollection(channels, flavorsPerChannel int) *Collection {
	hop := make([][]*Set, channels)
	for c := range hop {
		hop[c] = make([]*Set, flavorsPerChannel)
		for f := range hop[c] {
			hop[c][f] = NewSet(symmetry.CharacterDoublet)
		}
	}
	return &Collection{
		Singlets:        Named{},
		SingletsOdd:     Named{},
		GlobalSinglets:  Named{},
		Doublets:        Named{},
		Triplets:        Named{},
		Quadruplets:     Named{},
		OrbitalTriplets: Named{},
		Hopping:         hop,
	}
}

// Trim returns a new Set with every block restricted to its first
// keptRows rows and keptCols columns for each side's invariant, per
// spec.md §3 lifecycle: "trimmed to the kept dimensions for the next
// step". kept maps an invariant label to its kept-state count.
func Trim(s *Set, kept map[invariant.Label]int) *Set {
	out := NewSet(s.Character)
	for pair, m := range s.Blocks {
		k1, ok1 := kept[pair.I1]
		k2, ok2 := kept[pair.I2]
		if !ok1 || !ok2 {
			continue
		}
		r, c := m.Dims()
		if k1 > r {
			k1 = r
		}
		if k2 > c {
			k2 = c
		}
		if k1 == 0 || k2 == 0 {
			continue
		}
		view := m.Slice(0, k1, 0, k2)
		trimmed := mat.NewDense(k1, k2, nil)
		trimmed.Copy(view)
		out.Put(pair.I1, pair.I2, trimmed)
	}
	return out
}
