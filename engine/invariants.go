package engine

import (
	"sort"

	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/symmetry"
)

// nextInvariants enumerates the invariants reachable at the next site
// from the previous step's invariant set, per spec.md §4.1: "ancestor
// invariants... that combine with the hopping operator to produce
// invariant I at the next site." Capability only exposes the backward
// relation (Ancestors), so this probes a bounded neighborhood of each
// previous invariant's own components (every single chain site can
// change each additive quantum number by at most one quantum and flip
// each multiplicative one, the same single-fermion-hop assumption every
// symmetry's own Ancestors() implementation encodes) and keeps any
// candidate whose Ancestors() list actually contains the previous
// invariant.
func nextInvariants(cap symmetry.Capability, prev []invariant.Label) []invariant.Label {
	seen := make(map[invariant.Label]bool)
	var out []invariant.Label
	schema := cap.Schema()
	for _, p := range prev {
		for _, cand := range neighborhood(schema, p) {
			if seen[cand] {
				continue
			}
			for _, anc := range cap.Ancestors(cand) {
				if anc == p {
					seen[cand] = true
					out = append(out, cand)
					break
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return invariant.Less(out[i], out[j]) })
	return out
}

// neighborhood returns every label within ±1 of center on each additive
// component, with each multiplicative component either kept or flipped.
func neighborhood(schema invariant.Schema, center invariant.Label) []invariant.Label {
	n := schema.Arity()
	var out []invariant.Label
	var rec func(idx int, cur []int32)
	rec = func(idx int, cur []int32) {
		if idx == n {
			cp := append([]int32(nil), cur...)
			out = append(out, invariant.New(cp...))
			return
		}
		if schema.Kinds[idx] == invariant.Multiplicative {
			c := center.At(idx)
			rec(idx+1, append(cur, c))
			rec(idx+1, append(cur, -c))
			return
		}
		for _, d := range [3]int32{-1, 0, 1} {
			rec(idx+1, append(cur, center.At(idx)+d))
		}
	}
	rec(0, nil)
	return out
}
