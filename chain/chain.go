// Package chain holds the discretized Wilson-chain coefficients
// (spec.md §3 "Chain coefficients"): on-site and hopping energies per
// site and per channel, treated as bounded random-access tables. The
// symbolic front-end that derives these numbers from a physical model
// is an external collaborator (spec.md §1); chain only stores and
// bounds-checks the result.
package chain

import "fmt"

// Shell is a per-channel, per-site table of Wilson-chain coefficients.
// All slices are indexed [channel][site]; Zeta/Xi/Kappa/Delta are
// always allocated, the spin-polarized pairs only when the model is
// polarized.
type Shell struct {
	channels int
	nmax     int

	Zeta  [][]float64 // on-site energy
	Xi    [][]float64 // hopping amplitude to the next site
	Kappa [][]float64 // anomalous (pairing) hopping, optional

	ZetaUp, ZetaDown [][]float64 // spin-polarized on-site energies, optional
	XiUp, XiDown     [][]float64 // spin-polarized hoppings, optional
	Delta            [][]float64 // isospin-breaking term, optional
}

// New allocates a Shell for the given number of channels and chain
// length (site indices 0..nmax inclusive). Polarized and anomalous
// arrays are left nil; call EnablePolarized/EnableAnomalous/EnableDelta
// to allocate them.
func New(channels, nmax int) *Shell {
	if channels <= 0 {
		panic("chain: channels must be positive")
	}
	if nmax < 0 {
		panic("chain: nmax must be non-negative")
	}
	s := &Shell{channels: channels, nmax: nmax}
	s.Zeta = alloc(channels, nmax)
	s.Xi = alloc(channels, nmax)
	return s
}

func alloc(channels, nmax int) [][]float64 {
	out := make([][]float64, channels)
	for c := range out {
		out[c] = make([]float64, nmax+1)
	}
	return out
}

// EnableAnomalous allocates the Kappa table (for superconducting leads).
func (s *Shell) EnableAnomalous() { s.Kappa = alloc(s.channels, s.nmax) }

// EnablePolarized allocates the spin-polarized Zeta/Xi tables.
func (s *Shell) EnablePolarized() {
	s.ZetaUp = alloc(s.channels, s.nmax)
	s.ZetaDown = alloc(s.channels, s.nmax)
	s.XiUp = alloc(s.channels, s.nmax)
	s.XiDown = alloc(s.channels, s.nmax)
}

// EnableDelta allocates the isospin-breaking Delta table.
func (s *Shell) EnableDelta() { s.Delta = alloc(s.channels, s.nmax) }

// Channels returns the number of conduction channels.
func (s *Shell) Channels() int { return s.channels }

// Nmax returns the maximum chain site index.
func (s *Shell) Nmax() int { return s.nmax }

func (s *Shell) checkIndex(channel, site int) {
	if channel < 0 || channel >= s.channels {
		panic(fmt.Sprintf("chain: channel %d out of range [0,%d)", channel, s.channels))
	}
	if site < 0 || site > s.nmax {
		panic(fmt.Sprintf("chain: site %d out of range [0,%d]", site, s.nmax))
	}
}

// At returns zeta[channel][site] and xi[channel][site] together, the
// common access pattern in MatrixBuilder.
func (s *Shell) At(channel, site int) (zeta, xi float64) {
	s.checkIndex(channel, site)
	return s.Zeta[channel][site], s.Xi[channel][site]
}

// KappaAt returns the anomalous coefficient, or 0 if Kappa was never
// enabled.
func (s *Shell) KappaAt(channel, site int) float64 {
	s.checkIndex(channel, site)
	if s.Kappa == nil {
		return 0
	}
	return s.Kappa[channel][site]
}

// DeltaAt returns the isospin-breaking coefficient, or 0 if Delta was
// never enabled.
func (s *Shell) DeltaAt(channel, site int) float64 {
	s.checkIndex(channel, site)
	if s.Delta == nil {
		return 0
	}
	return s.Delta[channel][site]
}

// PolarizedAt returns the spin-up/down on-site and hopping
// coefficients. It panics if EnablePolarized was never called.
func (s *Shell) PolarizedAt(channel, site int) (zetaUp, zetaDown, xiUp, xiDown float64) {
	s.checkIndex(channel, site)
	if s.ZetaUp == nil {
		panic("chain: polarized tables not enabled")
	}
	return s.ZetaUp[channel][site], s.ZetaDown[channel][site], s.XiUp[channel][site], s.XiDown[channel][site]
}

// Set writes zeta[channel][site] and xi[channel][site].
func (s *Shell) Set(channel, site int, zeta, xi float64) {
	s.checkIndex(channel, site)
	s.Zeta[channel][site] = zeta
	s.Xi[channel][site] = xi
}
