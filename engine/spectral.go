package engine

import (
	"github.com/mihasalamun/nrgljubljana/nrglog"
	"github.com/mihasalamun/nrgljubljana/operator"
	"github.com/mihasalamun/nrgljubljana/spectral"
)

// SpectrumRequest names one spectral function to accumulate, per
// spec.md §4.5: a pair of named operators, the statistics sign they
// carry, and an optional spin guard. Resolving a parameter-file-style
// operator name list (spec.md's SpecD/SpecS/SpecT/SpecQ/SpecChit
// string lists) into concrete Op1Name/Op2Name pairs is the caller's
// job — spec.md §1 already places the surrounding parameter-file
// parser out of scope, and that same boundary covers turning its
// string lists into resolved requests; RunSpectral only needs the
// resolved pairs.
type SpectrumRequest struct {
	Name      string
	Op1Name   string
	Op2Name   string
	Sign      spectral.Sign
	CheckSpin spectral.CheckSpin
	Spin      int
}

// SpectrumResult bundles the four accumulator kinds spec.md §4.5
// describes (raw finite-temperature, DMNRG, CFS, FDM) for one request.
type SpectrumResult struct {
	Name  string
	FT    *spectral.FT
	DMNRG *spectral.DMNRG
	CFS   *spectral.CFS
	FDM   *spectral.FDM
}

// binMin, binMax, binsPerDecade are the LogBins parameters every
// accumulator below shares; spec.md leaves concrete defaults to the
// caller's discretization choice, so Engine picks one fixed, reasonable
// log-grid (9 decades of frequency at 50 bins/decade) rather than
// threading yet another config surface through RunSpectral.
const (
	binMin        = 1e-8
	binMax        = 10.0
	binsPerDecade = 50
)

// RunSpectral implements spec.md §4.5/§4.6's DM-seeded second forward
// pass: for each requested spectrum, walks every stored shell again,
// resolves the two named operators from that shell's recalculated
// operator collection, and feeds every qualifying (Ip, I1) subspace
// pair into all four accumulators. It reuses the first pass's stored
// ShellResults and backward pass's rho/rhoFDM/wn rather than
// re-diagonalizing, since spec.md §4.7 exists precisely so this second
// pass can be seeded from persisted state instead of redone from
// scratch.
func (e *Engine) RunSpectral(forward []ShellResult, backward BackwardResult, requests []SpectrumRequest) []SpectrumResult {
	nrglog.Infof("spectral re-run: %d requests over %d shells", len(requests), len(forward))
	results := make([]SpectrumResult, 0, len(requests))
	zFT := e.finalPartitionFunction(forward)

	for _, req := range requests {
		res := SpectrumResult{
			Name:  req.Name,
			FT:    spectral.NewFT(zFT, binMin, binMax, binsPerDecade),
			DMNRG: spectral.NewDMNRG(binMin, binMax, binsPerDecade),
			CFS:   spectral.NewCFS(binMin, binMax, binsPerDecade),
			FDM:   spectral.NewFDM(binMin, binMax, binsPerDecade),
		}
		res.FT.CheckSpin, res.FT.Spin = req.CheckSpin, req.Spin
		res.DMNRG.CheckSpin, res.DMNRG.Spin = req.CheckSpin, req.Spin
		res.CFS.CheckSpin, res.CFS.Spin = req.CheckSpin, req.Spin
		res.FDM.SetGuard(req.CheckSpin, req.Spin)

		for n, shell := range forward {
			set1 := lookupOperator(shell.Ops, req.Op1Name)
			set2 := lookupOperator(shell.Ops, req.Op2Name)
			if set1 == nil || set2 == nil {
				nrglog.Debugf("spectrum %q: shell %d missing operator %q or %q, skipping", req.Name, n, req.Op1Name, req.Op2Name)
				continue
			}
			var wn float64
			if n < len(backward.Wn) {
				wf, _ := backward.Wn[n].Float64()
				wn = wf
			}

			scT := shell.Step.ScT(e.Params.T)
			scale := shell.Step.Scale()
			last := n == len(forward)-1

			for _, pair := range set1.Pairs() {
				op1, ok := set1.Get(pair.I1, pair.I2)
				if !ok {
					continue
				}
				op2, ok := set2.Get(pair.I1, pair.I2)
				if !ok {
					continue
				}
				diagI1 := shell.Diag.Spectra[pair.I1]
				diagIp := shell.Diag.Spectra[pair.I2]
				if diagI1 == nil || diagIp == nil {
					continue
				}
				c := spectral.Contribution{
					Scale: scale, ScT: scT,
					DiagIp: diagIp, DiagI1: diagI1,
					Op1: op1, Op2: op2, Factor: 1,
					Ip: pair.I2, I1: pair.I1,
					Sign: req.Sign, Last: last,
				}
				if n < len(backward.Rho) {
					if r, ok := backward.Rho[n][pair.I2]; ok {
						c.Rho = r
					}
				}
				res.FT.Add(c)
				res.DMNRG.Add(c)
				res.CFS.Add(c)
				if n < len(backward.RhoFDM) {
					if r, ok := backward.RhoFDM[n][pair.I2]; ok {
						c.Rho = r
					}
				}
				c.Wn = wn
				res.FDM.Add(c)
			}
		}

		res.FT.End()
		res.DMNRG.End()
		res.CFS.End()
		res.FDM.End()
		results = append(results, res)
	}

	return results
}

// finalPartitionFunction returns the grand-canonical Z computed at the
// chain's last kept step, the Z_ft the FT accumulator normalizes by
// (spec.md §4.5/§4.8).
func (e *Engine) finalPartitionFunction(forward []ShellResult) float64 {
	if len(forward) == 0 {
		return 1
	}
	z := forward[len(forward)-1].Thermo.Z
	if z == 0 {
		return 1
	}
	return z
}

// lookupOperator resolves a named operator across the seven named block
// families a Collection carries (spec.md §4.4), since a
// SpectrumRequest's Op1Name/Op2Name may name any of them. The unnamed
// per-channel/per-flavor hopping array is not searched.
func lookupOperator(ops *operator.Collection, name string) *operator.Set {
	if ops == nil {
		return nil
	}
	if s, ok := ops.Singlets[name]; ok {
		return s
	}
	if s, ok := ops.SingletsOdd[name]; ok {
		return s
	}
	if s, ok := ops.GlobalSinglets[name]; ok {
		return s
	}
	if s, ok := ops.Doublets[name]; ok {
		return s
	}
	if s, ok := ops.Triplets[name]; ok {
		return s
	}
	if s, ok := ops.Quadruplets[name]; ok {
		return s
	}
	if s, ok := ops.OrbitalTriplets[name]; ok {
		return s
	}
	return nil
}
