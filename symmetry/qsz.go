package symmetry

import "github.com/mihasalamun/nrgljubljana/invariant"

// QSZ implements Capability for the QSZ symmetry: conserved charge Q
// and conserved spin projection Sz (twice its value, to stay integral).
// QSZ is the simplest commonly used NRG symmetry (no SU(2) spin
// multiplet structure), used here as the baseline, always-available
// Capability and as scenario B's symmetry (spec.md §8).
type QSZ struct{}

var _ Capability = QSZ{}

func (QSZ) Name() string { return "QSZ" }

func (QSZ) Schema() invariant.Schema {
	return invariant.Schema{
		Names: []string{"Q", "Sz2"},
		Kinds: []invariant.Kind{invariant.Additive, invariant.Additive},
	}
}

// Multiplicity is always 1: QSZ has no extra degeneracy beyond the
// invariant label itself (no SU(2) multiplet to sum over).
func (QSZ) Multiplicity(invariant.Label) int { return 1 }

// Triangle holds whenever the operator's quantum numbers match the
// difference I1 - I2 exactly, since QSZ carries no multiplet structure
// to restrict via a true triangle inequality.
func (QSZ) Triangle(I1, I2, Iop invariant.Label) bool {
	return I1.At(0)-I2.At(0) == Iop.At(0) && I1.At(1)-I2.At(1) == Iop.At(1)
}

// Ancestors returns the single-particle pre-images of I under adding
// one more chain site: one fixed list, independent of the channel
// count, of I minus {0, +1, -1} in charge and {0, +1, -1} in Sz2,
// restricted to a physical fermionic hop
// (ΔQ, ΔSz2) ∈ {(0,0), (1,1), (1,-1), (-1,1), (-1,-1)}.
func (q QSZ) Ancestors(I invariant.Label) []invariant.Label {
	deltas := [][2]int32{{0, 0}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	out := make([]invariant.Label, 0, len(deltas))
	for _, d := range deltas {
		out = append(out, invariant.New(I.At(0)-d[0], I.At(1)-d[1]))
	}
	return out
}

// MakeMatrix assigns the hopping coefficient xi[channel] to the
// (ancestor, ancestor) pair that differs by exactly one fermion with
// the matching Sz2, per spec.md §4.1's "table of contributions; table
// lookup is by symmetry and number of channels" — here realized as a
// direct per-ancestor-pair rule rather than a literal lookup table,
// since QSZ's coupling structure is this simple closed form.
func (q QSZ) MakeMatrix(I invariant.Label, ancestors []invariant.Label, channels int) []MatrixContribution {
	var out []MatrixContribution
	for i, ai := range ancestors {
		for j, aj := range ancestors {
			if i == j {
				continue
			}
			dQ := aj.At(0) - ai.At(0)
			dSz := aj.At(1) - ai.At(1)
			if (dQ == 1 && (dSz == 1 || dSz == -1)) || (dQ == -1 && (dSz == 1 || dSz == -1)) {
				out = append(out, MatrixContribution{
					AncestorRow: i,
					AncestorCol: j,
					Coefficient: 1, // scaled by the caller's xi[channel]
				})
			}
		}
	}
	return out
}

// RecalcDoublet matches ancestor pairs differing by one unit of charge
// and one unit of Sz2, the same single-fermion selection rule
// MakeMatrix uses for the hopping operator.
func (q QSZ) RecalcDoublet(I1, Ip invariant.Label) []RecalcEntry {
	return matchDelta(q.Ancestors, I1, Ip, func(a, b invariant.Label) bool {
		dQ := a.At(0) - b.At(0)
		dSz := a.At(1) - b.At(1)
		return (dQ == 1 || dQ == -1) && (dSz == 1 || dSz == -1)
	})
}

// RecalcTriplet matches ancestor pairs at equal charge and either equal
// or ±2 units of Sz2, the S_z-operator/spin-flip selection rule.
func (q QSZ) RecalcTriplet(I1, Ip invariant.Label) []RecalcEntry {
	return matchDelta(q.Ancestors, I1, Ip, func(a, b invariant.Label) bool {
		if a.At(0) != b.At(0) {
			return false
		}
		dSz := a.At(1) - b.At(1)
		return dSz == 0 || dSz == 2 || dSz == -2
	})
}

// RecalcQuadruplet matches ancestor pairs differing by two units of
// charge at equal Sz2, the charge-pairing (η-pairing) operator's
// selection rule.
func (q QSZ) RecalcQuadruplet(I1, Ip invariant.Label) []RecalcEntry {
	return matchDelta(q.Ancestors, I1, Ip, func(a, b invariant.Label) bool {
		dQ := a.At(0) - b.At(0)
		return (dQ == 2 || dQ == -2) && a.At(1) == b.At(1)
	})
}
