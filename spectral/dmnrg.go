package spectral

// DMNRG is FT's algorithm weighted by the loaded reduced density matrix
// instead of a grand-canonical partition function weight (spec.md
// §4.5: "As FT but weighted by the loaded reduced density matrix
// rather than a grand-canonical weight").
type DMNRG struct {
	CheckSpin CheckSpin
	Spin      int
	bins      *LogBins
}

// NewDMNRG allocates a DMNRG accumulator.
func NewDMNRG(binMin, binMax float64, binsPerDecade int) *DMNRG {
	return &DMNRG{bins: NewLogBins(binMin, binMax, binsPerDecade)}
}

func (a *DMNRG) Bins() *LogBins { return a.bins }

// Add implements the DMNRG algorithm: the same delta placement as FT,
// but the per-pair weight is contracted against rho[Ip] rather than
// scaled by exp(-Ep*scT)/Z_ft.
func (a *DMNRG) Add(c Contribution) {
	if guarded(c, a.CheckSpin, a.Spin) {
		return
	}
	if c.Rho == nil {
		return
	}
	rows1, cols1 := c.Op1.Dims()
	rhoRows, rhoCols := c.Rho.Dims()
	for r1 := 0; r1 < rows1; r1++ {
		for rp := 0; rp < cols1; rp++ {
			if r1 >= len(c.DiagI1.VZero) || rp >= len(c.DiagIp.VZero) {
				continue
			}
			// rho is diagonal in the eigenbasis at this stage of the
			// pipeline (spec.md §4.6: rho is built from diag_exp of the
			// shell's own eigenvalues), so only the rp-th diagonal entry
			// of rho[Ip] contributes to the rp-th column.
			if rp >= rhoRows || rp >= rhoCols {
				continue
			}
			e1 := c.DiagI1.VZero[r1]
			ep := c.DiagIp.VZero[rp]
			omega := c.Scale * (e1 - ep)
			w := c.Factor * weightOf(c.Op1.At(r1, rp), c.Op2.At(r1, rp)) * c.Rho.At(rp, rp) * float64(c.Sign)
			a.bins.Add(omega, w)
		}
	}
}

func (a *DMNRG) End() {}
