package stats

// Accumulator tracks the running ground-state bookkeeping spec.md §3
// "Stats" describes across the forward pass: the current step's Egs,
// the absolute ground-state energy accumulated so far (TotalEnergy),
// and — once the forward pass completes — the final GSEnergy every
// state's absolute energy is referenced against (spec.md §3: "after
// the first pass GS_energy := total_energy").
type Accumulator struct {
	Egs         float64
	TotalEnergy float64
	GSEnergy    float64
}

// Advance folds one step's ground-state energy egs (in the step's own
// v_zero units) into the accumulator, scaled to absolute units by the
// step's current energy scale, and returns the TotalEnergy from before
// this step — the offset spec.md §3's absE bookkeeping needs, since
// absE_N = absE - TotalEnergy(after) reduces to v_zero·scale exactly
// when computed from that offset.
func (a *Accumulator) Advance(egs, scale float64) float64 {
	offset := a.TotalEnergy
	a.Egs = egs
	a.TotalEnergy += egs * scale
	return offset
}
