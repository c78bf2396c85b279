package spectral

import "math"

// FT is the finite-temperature, conventional spectral accumulator of
// spec.md §4.5: emits a delta at energy scale·(E1−Ep) with weight
// (factor/Z_ft)·conj(op1[r1,rp])·op2[r1,rp]·exp(−Ep·scT)·sgn, one
// accumulator per spectrum, keyed by sign.
type FT struct {
	ZFT       float64
	CheckSpin CheckSpin
	Spin      int
	bins      *LogBins
}

// NewFT allocates an FT accumulator binning into the given range.
func NewFT(zFT float64, binMin, binMax float64, binsPerDecade int) *FT {
	return &FT{ZFT: zFT, bins: NewLogBins(binMin, binMax, binsPerDecade)}
}

func (a *FT) Bins() *LogBins { return a.bins }

// Add implements spec.md §4.5's FT algorithm, looping over every
// (r1, rp) eigenstate pair in the two subspaces.
func (a *FT) Add(c Contribution) {
	if guarded(c, a.CheckSpin, a.Spin) {
		return
	}
	rows1, cols1 := c.Op1.Dims()
	rowsP, colsP := c.Op2.Dims()
	if rows1 != rowsP || cols1 != colsP {
		return
	}
	for r1 := 0; r1 < rows1; r1++ {
		for rp := 0; rp < cols1; rp++ {
			if r1 >= len(c.DiagI1.VZero) || rp >= len(c.DiagIp.VZero) {
				continue
			}
			e1 := c.DiagI1.VZero[r1]
			ep := c.DiagIp.VZero[rp]
			omega := c.Scale * (e1 - ep)
			w := (c.Factor / a.ZFT) * weightOf(c.Op1.At(r1, rp), c.Op2.At(r1, rp)) *
				math.Exp(-ep*c.ScT) * float64(c.Sign)
			a.bins.Add(omega, w)
		}
	}
}

// End is a no-op for FT: every contribution is committed immediately.
func (a *FT) End() {}
