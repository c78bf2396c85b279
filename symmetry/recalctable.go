package symmetry

import "github.com/mihasalamun/nrgljubljana/invariant"

// matchDelta builds a concrete RecalcTable entry list for one (I1, Ip)
// target pair: it pairs up every ancestor of I1 with every ancestor of
// Ip and keeps those whose additive-label difference satisfies delta,
// the character's selection rule, with a fixed unit coefficient.
//
// This is a structural stand-in for the real Clebsch-Gordan-like
// multiplet coefficients spec.md §1 treats as externally supplied,
// opaque per-symmetry data — it reuses the same selection rules
// Capability.MakeMatrix already encodes for the doublet (hopping)
// character and extends them to triplet/quadruplet by analogy, so the
// in-repo QS/QSZ symmetries have a non-nil table to recalculate
// against end to end, rather than a derived coupling strength.
func matchDelta(ancestorsOf func(invariant.Label) []invariant.Label, I1, Ip invariant.Label, delta func(a, b invariant.Label) bool) []RecalcEntry {
	anc1 := ancestorsOf(I1)
	ancP := ancestorsOf(Ip)
	var out []RecalcEntry
	for i, a1 := range anc1 {
		for j, ap := range ancP {
			if delta(a1, ap) {
				out = append(out, RecalcEntry{
					AncestorIndex: i,
					I1Old:         i,
					IpOld:         j,
					Factor:        1,
					AncestorIN1:   a1,
					AncestorINp:   ap,
				})
			}
		}
	}
	return out
}
