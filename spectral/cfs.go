package spectral

import "math"

// CFS is the complete-Fock-space accumulator of spec.md §4.5: two
// sub-algorithms (less-than / greater-than) that each bin half the
// spectral weight during the forward pass, merged into one histogram
// on End(). This is the "OPTIMIZED" path of Open Question (iii); see
// cfs_reference_test.go for the unoptimized reference oracle kept for
// cross-checking.
type CFS struct {
	CheckSpin CheckSpin
	Spin      int

	lessThan    *LogBins
	greaterThan *LogBins
	merged      *LogBins
	ended       bool
}

// NewCFS allocates a CFS accumulator.
func NewCFS(binMin, binMax float64, binsPerDecade int) *CFS {
	return &CFS{
		lessThan:    NewLogBins(binMin, binMax, binsPerDecade),
		greaterThan: NewLogBins(binMin, binMax, binsPerDecade),
	}
}

// Add dispatches the contribution into the "less than" branch using
// discarded-at-I1 × kept-at-Ip pairs weighted by rho[Ip], and the
// "greater than" branch using kept-at-I1 × discarded-at-Ip pairs
// weighted by rho[I1] (spec.md §4.5). On the last step, a diagonal
// Lehmann-like sum analogous to FT is used instead (spec.md §4.5
// "less than" branch, last-step case).
func (a *CFS) Add(c Contribution) {
	if guarded(c, a.CheckSpin, a.Spin) {
		return
	}
	if c.Last {
		a.addLastStep(c)
		return
	}
	a.addLessThan(c)
	a.addGreaterThan(c)
}

func (a *CFS) addLastStep(c Contribution) {
	rows1, cols1 := c.Op1.Dims()
	for r1 := 0; r1 < rows1; r1++ {
		for rp := 0; rp < cols1; rp++ {
			if r1 >= len(c.DiagI1.VZero) || rp >= len(c.DiagIp.VZero) {
				continue
			}
			if c.Rho == nil {
				continue
			}
			rhoRows, rhoCols := c.Rho.Dims()
			if rp >= rhoRows || rp >= rhoCols {
				continue
			}
			omega := c.Scale * (c.DiagI1.VZero[r1] - c.DiagIp.VZero[rp])
			w := c.Factor * weightOf(c.Op1.At(r1, rp), c.Op2.At(r1, rp)) * c.Rho.At(rp, rp) * float64(c.Sign)
			a.lessThan.Add(omega, w)
		}
	}
}

func (a *CFS) addLessThan(c Contribution) {
	if c.Rho == nil {
		return
	}
	keptP := c.DiagIp.Kept
	discardedI1 := c.DiagI1.Kept
	rows1, cols1 := c.Op2.Dims()
	rhoRows, rhoCols := c.Rho.Dims()
	for r1 := discardedI1; r1 < rows1; r1++ {
		for rp := 0; rp < keptP && rp < cols1; rp++ {
			if r1 >= len(c.DiagI1.VZero) || rp >= len(c.DiagIp.VZero) {
				continue
			}
			if rp >= rhoRows || rp >= rhoCols {
				continue
			}
			omega := c.Scale * (c.DiagI1.VZero[r1] - c.DiagIp.VZero[rp])
			w := c.Factor * weightOf(c.Op1.At(r1, rp), c.Op2.At(r1, rp)) * c.Rho.At(rp, rp) * float64(c.Sign)
			a.lessThan.Add(omega, w)
		}
	}
}

func (a *CFS) addGreaterThan(c Contribution) {
	if c.Rho == nil {
		return
	}
	keptI1 := c.DiagI1.Kept
	discardedIp := c.DiagIp.Kept
	rows1, cols1 := c.Op1.Dims()
	rhoRows, rhoCols := c.Rho.Dims()
	for r1 := 0; r1 < keptI1 && r1 < rows1; r1++ {
		for rp := discardedIp; rp < cols1; rp++ {
			if r1 >= len(c.DiagI1.VZero) || rp >= len(c.DiagIp.VZero) {
				continue
			}
			if r1 >= rhoRows || r1 >= rhoCols {
				continue
			}
			omega := c.Scale * (c.DiagI1.VZero[r1] - c.DiagIp.VZero[rp])
			w := c.Factor * weightOf(c.Op1.At(r1, rp), c.Op2.At(r1, rp)) * c.Rho.At(r1, r1) * float64(c.Sign)
			a.greaterThan.Add(omega, w)
		}
	}
}

// End merges the two branches into the final histogram, per spec.md
// §4.5 "The CFS accumulator merges both branches on end()".
func (a *CFS) End() {
	if a.ended {
		return
	}
	n := a.lessThan.NBins()
	merged := &LogBins{
		min: a.lessThan.min, max: a.lessThan.max, perDecade: a.lessThan.perDecade,
		nbins: n, logMin: a.lessThan.logMin, logStep: a.lessThan.logStep,
		Pos: make([]float64, n), Neg: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		merged.Pos[i] = a.lessThan.Pos[i] + a.greaterThan.Pos[i]
		merged.Neg[i] = a.lessThan.Neg[i] + a.greaterThan.Neg[i]
	}
	a.merged = merged
	a.ended = true
}

// Bins returns the merged histogram; End must be called first.
func (a *CFS) Bins() *LogBins {
	if !a.ended {
		a.End()
	}
	return a.merged
}

// sumRule returns the absolute value of the total binned weight. Nothing
// in the module calls it.
func sumRule(b *LogBins) float64 {
	total := 0.0
	for i := 0; i < b.NBins(); i++ {
		total += b.Pos[i] + b.Neg[i]
	}
	return math.Abs(total)
}
