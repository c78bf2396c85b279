// Package step models the per-iteration state of spec.md §3 "Step
// state": the signed true site index, the nonnegative array index, the
// forward/backward tag, and the derived energy scale, effective
// temperature, and scT ratio.
package step

import "math"

// Tag distinguishes the forward (spectrum-building) pass from the
// backward (density-matrix) pass, per spec.md §3.
type Tag uint8

const (
	NRG Tag = iota
	DMNRG
)

func (t Tag) String() string {
	if t == DMNRG {
		return "DMNRG"
	}
	return "NRG"
}

// State is the immutable description of one chain iteration.
type State struct {
	Lambda    float64 // Λ, discretization factor
	BetaBar   float64 // β̄
	TrueN     int     // signed site index (may be negative for the initial shell)
	NdxN      int     // nonnegative array index
	Tag       Tag
	Channels  int  // number of channels folded this substep
	Substeps  bool // whether substep folding is active
}

// New builds a step.State. trueN may be negative (spec.md §3).
func New(lambda, betaBar float64, trueN, ndxN int, tag Tag, channels int, substeps bool) State {
	return State{
		Lambda: lambda, BetaBar: betaBar,
		TrueN: trueN, NdxN: ndxN, Tag: tag,
		Channels: channels, Substeps: substeps,
	}
}

// Scale returns the current energy scale Λ^(-trueN/2), or the
// substep-folded variant Λ^(1/(2·channels)) · Λ^(-trueN/2) when
// substep mode is active (spec.md §3 "Derived: current energy scale").
func (s State) Scale() float64 {
	base := math.Pow(s.Lambda, -float64(s.TrueN)/2)
	if s.Substeps && s.Channels > 1 {
		return base * math.Pow(s.Lambda, 1/(2*float64(s.Channels)))
	}
	return base
}

// Teff returns the effective temperature scale/β̄.
func (s State) Teff() float64 { return s.Scale() / s.BetaBar }

// ScT returns scale/T for the given absolute temperature T, the ratio
// spec.md §3 and §4.5 use to weight Boltzmann factors.
func (s State) ScT(T float64) float64 { return s.Scale() / T }

// First reports whether this is the initial shell.
func (s State) First() bool { return s.NdxN == 0 }

// Last reports whether this is the final shell of a chain of the given
// maximum array index (spec.md §8 scenario C: "Nmax = 0 so first() ∧
// last() both hold at step 0").
func (s State) Last(nmaxNdx int) bool { return s.NdxN >= nmaxNdx }
