package symmetry

import "github.com/mihasalamun/nrgljubljana/invariant"

// QS implements Capability for the QS symmetry: conserved charge Q and
// conserved total spin, encoded as twice-spin SS so it stays integral.
// Unlike QSZ, QS carries genuine SU(2) multiplet structure: each
// invariant subspace represents a whole spin multiplet, so its
// multiplicity is SS+1 and its triangle rule is the SU(2) addition
// rule, not a bare label-difference check.
type QS struct{}

var _ Capability = QS{}

func (QS) Name() string { return "QS" }

func (QS) Schema() invariant.Schema {
	return invariant.Schema{
		Names: []string{"Q", "SS"},
		Kinds: []invariant.Kind{invariant.Additive, invariant.Additive},
	}
}

// Multiplicity returns SS+1, the dimension of the spin multiplet
// labeled by twice-spin SS (spec.md §3: "multiplicity(I) (positive
// integer, symmetry-specific)").
func (QS) Multiplicity(I invariant.Label) int {
	return int(I.At(1)) + 1
}

// Triangle applies the SU(2) addition rule to the spin component
// (|SS1-SS2| <= SSop <= SS1+SS2 with matching parity) and an exact
// match on the additive charge component.
func (QS) Triangle(I1, I2, Iop invariant.Label) bool {
	if I1.At(0)-I2.At(0) != Iop.At(0) {
		return false
	}
	ss1, ss2, ssop := I1.At(1), I2.At(1), Iop.At(1)
	if (ss1+ss2+ssop)%2 != 0 {
		return false
	}
	lo := abs32(ss1 - ss2)
	hi := ss1 + ss2
	return ssop >= lo && ssop <= hi
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

// Ancestors returns the spin-1/2 pre-images of I: charge Q∓1 combined
// with spin SS∓1 (the two ways a single fermion addition can change
// the total-spin multiplet), matching the doublet tensor character of
// the conduction-electron operator.
func (q QS) Ancestors(I invariant.Label) []invariant.Label {
	Q, SS := I.At(0), I.At(1)
	candidates := []invariant.Label{
		invariant.New(Q-1, SS-1),
		invariant.New(Q-1, SS+1),
		invariant.New(Q+1, SS-1),
		invariant.New(Q+1, SS+1),
	}
	out := candidates[:0:0]
	for _, c := range candidates {
		if c.At(1) >= 0 {
			out = append(out, c)
		}
	}
	return out
}

// MakeMatrix couples ancestor blocks that differ by one unit of charge
// and one unit of twice-spin, the doublet selection rule for a single
// hopping fermion (spec.md §4.1).
func (q QS) MakeMatrix(I invariant.Label, ancestors []invariant.Label, channels int) []MatrixContribution {
	var out []MatrixContribution
	for i, ai := range ancestors {
		for j, aj := range ancestors {
			if i == j {
				continue
			}
			dQ := aj.At(0) - ai.At(0)
			dSS := aj.At(1) - ai.At(1)
			if abs32(dQ) == 1 && abs32(dSS) == 1 {
				out = append(out, MatrixContribution{
					AncestorRow: i,
					AncestorCol: j,
					Coefficient: 1,
				})
			}
		}
	}
	return out
}

// RecalcDoublet matches ancestor pairs differing by one unit of charge
// and one unit of twice-spin, the same single-fermion selection rule
// MakeMatrix uses.
func (q QS) RecalcDoublet(I1, Ip invariant.Label) []RecalcEntry {
	return matchDelta(q.Ancestors, I1, Ip, func(a, b invariant.Label) bool {
		return abs32(a.At(0)-b.At(0)) == 1 && abs32(a.At(1)-b.At(1)) == 1
	})
}

// RecalcTriplet matches ancestor pairs at the same charge and either
// the same or ±2 units of twice-spin, the spin-1 operator's selection
// rule (Sz-diagonal and the two spin-flip components).
func (q QS) RecalcTriplet(I1, Ip invariant.Label) []RecalcEntry {
	return matchDelta(q.Ancestors, I1, Ip, func(a, b invariant.Label) bool {
		if a.At(0) != b.At(0) {
			return false
		}
		dss := abs32(a.At(1) - b.At(1))
		return dss == 0 || dss == 2
	})
}

// RecalcQuadruplet matches ancestor pairs differing by two units of
// charge at equal twice-spin, the charge-pairing (η-pairing) operator's
// selection rule.
func (q QS) RecalcQuadruplet(I1, Ip invariant.Label) []RecalcEntry {
	return matchDelta(q.Ancestors, I1, Ip, func(a, b invariant.Label) bool {
		return abs32(a.At(0)-b.At(0)) == 2 && a.At(1) == b.At(1)
	})
}
