package spectral

import (
	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"gonum.org/v1/gonum/mat"
)

// Sign distinguishes bosonic (+1) from fermionic (-1) operator
// statistics, used both to key FT/DMNRG accumulators and to weight the
// CFS/FDM branch merge (spec.md §4.5: "keyed by sign (bosonic +1,
// fermionic −1)").
type Sign int

const (
	Bosonic   Sign = 1
	Fermionic Sign = -1
)

// Contribution is the fixed argument tuple every accumulator receives
// per spec.md §4.5: "(step, diagIp, diagI1, opMat1, opMat2, factor,
// Ip, I1, rho, stats)".
type Contribution struct {
	Scale  float64 // step's current energy scale
	ScT    float64 // scale/T, the Boltzmann exponent ratio
	DiagIp *spectrum.Subspace
	DiagI1 *spectrum.Subspace
	Op1    *mat.Dense
	Op2    *mat.Dense
	Factor float64
	Ip, I1 invariant.Label
	Rho    *mat.Dense // density matrix block for the relevant subspace
	Sign   Sign
	Last   bool // true on the chain's final step
	// Wn is the global FDM shell weight (spec.md §4.6), used only by
	// the FDM accumulator; FT/DMNRG/CFS ignore it.
	Wn float64
}

// CheckSpin is the caller-supplied predicate of spec.md §4.5's guard
// ("if check_spin(Ij, Ii, spin) == false, the pair is skipped"). A nil
// CheckSpin always passes.
type CheckSpin func(Ij, Ii invariant.Label, spin int) bool

// guarded reports whether c should be skipped per spec.md §4.5's guard:
// either operator block absent, or check_spin rejects the pair.
func guarded(c Contribution, checkSpin CheckSpin, spin int) bool {
	if c.Op1 == nil || c.Op2 == nil {
		return true
	}
	if checkSpin != nil && !checkSpin(c.Ip, c.I1, spin) {
		return true
	}
	return false
}

// Accumulator is the common interface of every spectral-function
// algorithm (spec.md §4.5): Add is called once per qualifying subspace
// pair at each step, End finalizes any deferred merge (CFS's two
// branches), and Bins exposes the resulting histogram.
type Accumulator interface {
	Add(c Contribution)
	End()
	Bins() *LogBins
}
