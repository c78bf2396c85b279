package spectral

// FDM has the same branch structure as CFS but is weighted by the full
// density matrix rhoFDM and an additional global shell weight wn[step]
// computed in extended precision by package densitymatrix (spec.md
// §4.5: "Same structure as CFS but uses FDM density matrix rhoFDM and
// an additional global weight factor wn[step]").
//
// FDM embeds a CFS accumulator and multiplies every contribution's
// rho-derived weight by c.Wn before delegating, rather than
// duplicating the less-than/greater-than branch logic.
type FDM struct {
	cfs *CFS
}

// NewFDM allocates an FDM accumulator.
func NewFDM(binMin, binMax float64, binsPerDecade int) *FDM {
	return &FDM{cfs: NewCFS(binMin, binMax, binsPerDecade)}
}

func (a *FDM) Bins() *LogBins { return a.cfs.Bins() }

// Add scales the contribution's factor by its per-step Wn weight (the
// "additional global weight" spec.md §4.5 describes) before running
// the shared CFS branch logic against rhoFDM.
func (a *FDM) Add(c Contribution) {
	if c.Wn == 0 {
		c.Wn = 1
	}
	c.Factor *= c.Wn
	a.cfs.Add(c)
}

func (a *FDM) End() { a.cfs.End() }

// SetGuard installs the check_spin predicate used by the underlying
// CFS branch logic.
func (a *FDM) SetGuard(checkSpin CheckSpin, spin int) {
	a.cfs.CheckSpin = checkSpin
	a.cfs.Spin = spin
}
