// Package config defines the immutable run parameters of spec.md §6.
//
// config intentionally does not read a `[param]` file: the parameter
// file parser is an explicit external collaborator (spec.md §1, §6).
// Params is a plain value struct built by the caller (the excluded
// driver, or a test) and passed by reference to every engine component,
// per spec.md §9 "Global state": no package-level singleton.
package config

import "fmt"

// Strategy selects how Recalculator transforms operator matrix elements
// (spec.md §4.4): "all" uses every computed eigenvector, "kept" uses
// only the truncated rows/columns.
type Strategy uint8

const (
	StrategyAll Strategy = iota
	StrategyKept
)

func (s Strategy) String() string {
	if s == StrategyAll {
		return "all"
	}
	return "kept"
}

// DiagMode selects the Diagonalizer backend (spec.md §4.2, §9 "Backend
// selection"): a one-shot decision at startup.
type DiagMode uint8

const (
	DiagModeShared DiagMode = iota
	DiagModeMPI
)

// Params holds every recognized option from spec.md §6's parameter
// table. All boolean feature flags default to false (zero value), per
// spec.md §6.
type Params struct {
	// Discretization and chain shape.
	Lambda float64 // Λ, discretization factor (>1)
	Nmax   int     // maximum chain length

	// Truncation policy (spec.md §4.3).
	Keep         int     // Nkeep, upper bound on kept states
	KeepEnergy   float64 // keepenergy, if > 0 overrides Keep by energy cutoff
	KeepMin      int     // Nkeep_min
	Safeguard    float64 // ε_sg, degeneracy gap tolerance
	SafeguardMax int     // Nsg_max, hard cap on extra safeguard states
	KeepAllLast  bool    // override: keep all states on the final step

	// Thermodynamics.
	T       float64 // temperature, for FDM and binning
	BetaBar float64 // β̄, rescale factor Teff = scale/β̄

	// Iteration shape.
	Substeps bool // fold channels into extra sub-iterations

	// Recalculation / diagonalization strategy.
	Strategy Strategy
	DiagMode DiagMode

	// Algorithm toggles (spec.md §6 table).
	DM, CFS, DMNRG, FDM                     bool
	Finite, FDMExpv, FiniteMats             bool
	CFSGT, CFSLS, FDMGT, FDMLS, FDMMats     bool

	// Spectrum selection: space-delimited lists of spectrum names, by
	// operator character (spec.md §6: spec*, specd, specs, spect,
	// specq, specchit).
	SpecD, SpecS, SpecT, SpecQ, SpecChit []string

	// Control.
	StopAfter   string // "nrg" or "rho": early-exit breakpoint
	RemoveFiles bool   // delete scratch blobs after load
}

// Validate checks internal consistency. It does not and cannot check
// anything that depends on a parameter file's contents, since no parser
// lives in this package.
func (p *Params) Validate() error {
	if p.Lambda <= 1 {
		return fmt.Errorf("config: Lambda must be > 1, got %v", p.Lambda)
	}
	if p.Nmax < 0 {
		return fmt.Errorf("config: Nmax must be >= 0, got %d", p.Nmax)
	}
	if p.Keep <= 0 {
		return fmt.Errorf("config: Keep must be > 0, got %d", p.Keep)
	}
	if p.KeepMin > p.Keep {
		return fmt.Errorf("config: KeepMin (%d) must be <= Keep (%d)", p.KeepMin, p.Keep)
	}
	if p.Safeguard < 0 {
		return fmt.Errorf("config: Safeguard must be >= 0, got %v", p.Safeguard)
	}
	if p.SafeguardMax < 0 {
		return fmt.Errorf("config: SafeguardMax must be >= 0, got %d", p.SafeguardMax)
	}
	if p.BetaBar <= 0 {
		return fmt.Errorf("config: BetaBar must be > 0, got %v", p.BetaBar)
	}
	if p.StopAfter != "" && p.StopAfter != "nrg" && p.StopAfter != "rho" {
		return fmt.Errorf("config: StopAfter must be \"nrg\" or \"rho\", got %q", p.StopAfter)
	}
	return nil
}
