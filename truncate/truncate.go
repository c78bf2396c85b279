// Package truncate selects which eigenstates survive into the next
// chain iteration (spec.md §4.3). Truncate concatenates every
// subspace's shifted eigenvalues, picks a cut either by count or by
// energy, applies a degeneracy safeguard so the cut never falls inside
// a near-degenerate cluster, then marks each subspace's Kept count.
//
// Grounded on spec.md §4.3 directly; no teacher analogue exists for
// this algorithm (it is domain-specific to NRG), so the surrounding
// idiom — plain functions over a params struct, typed errors via
// nrgerr rather than sentinel strings or panics for caller-facing
// failures — follows the rest of this module.
package truncate

import (
	"sort"

	"github.com/mihasalamun/nrgljubljana/config"
	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/nrgerr"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"gonum.org/v1/gonum/floats/scalar"
)

// insufficientStatesRelTol is the relative tolerance used in place of
// the legacy engine's exact floating-point equality check, per
// SPEC_FULL's Open Question (ii) resolution (spec.md §9 (ii)).
const insufficientStatesRelTol = 1e-12

// Result reports the cut Truncate selected, for logging and for the
// stats/spectral packages that need Emax in the rescaled-energy frame.
type Result struct {
	// Nrkeep is the number of states kept across all subspaces.
	Nrkeep int
	// Emax is the shifted-energy value of the cut, energies[Nrkeep-1].
	Emax float64
	// SafeguardExtra is how many extra states the degeneracy safeguard
	// added beyond the base cut.
	SafeguardExtra int
}

// Truncate implements spec.md §4.3's algorithm against d's real
// spectra, or d's complex spectra when the engine runs in Hermitian
// mode; exactly one of the two must be populated, matching DiagState's
// own invariant (spec.md §9 "Scalar kind").
//
// unscale converts a step's Emax_cfg (given in physical energy units)
// into the rescaled-energy frame the stored eigenvalues live in
// (spec.md §4.3 "Emax_cfg · unscale").
func Truncate(d *spectrum.DiagState, p *config.Params, unscale float64, lastStep bool) (Result, error) {
	if len(d.Spectra) > 0 {
		return truncateReal(d, p, unscale, lastStep)
	}
	return truncateComplex(d, p, unscale, lastStep)
}

type energyRef struct {
	label invariant.Label
	idx   int
	value float64
}

func truncateReal(d *spectrum.DiagState, p *config.Params, unscale float64, lastStep bool) (Result, error) {
	refs := make([]energyRef, 0, d.TotalStates())
	for I, s := range d.Spectra {
		for i, v := range s.VZero {
			refs = append(refs, energyRef{I, i, v})
		}
	}
	res, cut, err := computeCut(refs, p, unscale)
	if err != nil {
		return Result{}, err
	}

	for I, s := range d.Spectra {
		if lastStep && p.KeepAllLast {
			s.Kept = s.Computed()
			continue
		}
		kept := 0
		for _, v := range s.VZero {
			if v <= cut {
				kept++
			}
		}
		s.Kept = kept
		if kept == s.Computed() && s.Computed() < s.Dim() {
			if !scalar.EqualWithinRel(s.VZero[len(s.VZero)-1], cut, insufficientStatesRelTol) {
				return Result{}, nrgerr.New(nrgerr.InsufficientStates, errInsufficientLabel(I))
			}
		}
	}
	return res, nil
}

func truncateComplex(d *spectrum.DiagState, p *config.Params, unscale float64, lastStep bool) (Result, error) {
	refs := make([]energyRef, 0)
	for I, s := range d.ComplexSpectra {
		for i, v := range s.VZero {
			refs = append(refs, energyRef{I, i, v})
		}
	}
	res, cut, err := computeCut(refs, p, unscale)
	if err != nil {
		return Result{}, err
	}

	for I, s := range d.ComplexSpectra {
		if lastStep && p.KeepAllLast {
			s.Kept = len(s.VOrig)
			continue
		}
		kept := 0
		for _, v := range s.VZero {
			if v <= cut {
				kept++
			}
		}
		s.Kept = kept
		if kept == len(s.VOrig) && len(s.VOrig) < s.Dim() {
			if !scalar.EqualWithinRel(s.VZero[len(s.VZero)-1], cut, insufficientStatesRelTol) {
				return Result{}, nrgerr.New(nrgerr.InsufficientStates, errInsufficientLabel(I))
			}
		}
	}
	return res, nil
}

// computeCut implements steps 1-4 of spec.md §4.3's algorithm against a
// flat list of shifted eigenvalues, independent of the real/complex
// split.
func computeCut(refs []energyRef, p *config.Params, unscale float64) (Result, float64, error) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].value < refs[j].value })
	total := len(refs)
	if total == 0 {
		return Result{}, 0, nrgerr.New(nrgerr.CorruptInput, errNoStates)
	}

	var nrkeep int
	if p.KeepEnergy <= 0 {
		nrkeep = p.Keep
	} else {
		threshold := p.KeepEnergy * unscale
		count := 0
		for _, r := range refs {
			if r.value <= threshold {
				count++
			} else {
				break
			}
		}
		nrkeep = count + 1
	}
	if nrkeep < p.KeepMin {
		nrkeep = p.KeepMin
	}
	if nrkeep > p.Keep {
		nrkeep = p.Keep
	}
	if nrkeep > total {
		nrkeep = total
	}
	if nrkeep < 1 {
		nrkeep = 1
	}

	extra := 0
	for nrkeep < total && extra < p.SafeguardMax {
		gap := refs[nrkeep].value - refs[nrkeep-1].value
		if gap > p.Safeguard {
			break
		}
		nrkeep++
		extra++
	}

	emax := refs[nrkeep-1].value
	return Result{Nrkeep: nrkeep, Emax: emax, SafeguardExtra: extra}, emax, nil
}

type truncateErr string

func (e truncateErr) Error() string { return string(e) }

const errNoStates = truncateErr("truncate: no eigenvalues to cut")

func errInsufficientLabel(I invariant.Label) error {
	return truncateErr("truncate: subspace " + I.String() + " has insufficient computed states for the chosen cut")
}
