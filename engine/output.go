package engine

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/nrgerr"
	"github.com/mihasalamun/nrgljubljana/nrglog"
	"github.com/mihasalamun/nrgljubljana/spectral"
)

// WriteOutputs implements spec.md §6's "Persisted state layout" for the
// current-directory output files: td, tdfdm, annotated.dat,
// energies.nrg, subspaces.dat, absolute_energies.dat, a .dat/.bin pair
// per algorithm for each requested spectrum, and the DONE completion flag. There is no
// teacher or pack precedent for this kind of fixed-column text report
// writer, so it is built directly on bufio/os (text formatting has no
// third-party counterpart worth reaching for here).
func (e *Engine) WriteOutputs(dir string, forward []ShellResult, backward BackwardResult, spectra []SpectrumResult) error {
	nrglog.Infof("writing outputs to %s: %d spectra", dir, len(spectra))
	if err := writeThermo(filepath.Join(dir, "td"), forward); err != nil {
		return err
	}
	if err := writeFDMThermo(filepath.Join(dir, "tdfdm"), backward); err != nil {
		return err
	}
	if err := writeAnnotated(filepath.Join(dir, "annotated.dat"), forward); err != nil {
		return err
	}
	if err := writeEnergies(filepath.Join(dir, "energies.nrg"), forward); err != nil {
		return err
	}
	if err := writeSubspaces(filepath.Join(dir, "subspaces.dat"), forward); err != nil {
		return err
	}
	if err := writeAbsoluteEnergies(filepath.Join(dir, "absolute_energies.dat"), forward); err != nil {
		return err
	}
	for _, res := range spectra {
		if err := writeSpectrum(dir, res); err != nil {
			return err
		}
	}
	return writeDone(filepath.Join(dir, "DONE"))
}

func createFile(name string) (*os.File, *bufio.Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, nrgerr.WithFile(nrgerr.IOFailure, name, err)
	}
	return f, bufio.NewWriter(f), nil
}

func finish(name string, f *os.File, w *bufio.Writer) error {
	if err := w.Flush(); err != nil {
		f.Close()
		return nrgerr.WithFile(nrgerr.IOFailure, name, err)
	}
	if err := f.Close(); err != nil {
		return nrgerr.WithFile(nrgerr.IOFailure, name, err)
	}
	return nil
}

// writeThermo writes one row per step of the extended-precision
// thermodynamics spec.md §4.8 computes forward, keyed by step index.
func writeThermo(name string, forward []ShellResult) error {
	f, w, err := createFile(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "# step scale Z <E> <E^2> C F S")
	for _, r := range forward {
		fmt.Fprintf(w, "%d %.10g %.10g %.10g %.10g %.10g %.10g %.10g\n",
			r.Step.NdxN, r.Step.Scale(), r.Thermo.Z, r.Thermo.E, r.Thermo.E2, r.Thermo.C, r.Thermo.F, r.Thermo.S)
	}
	return finish(name, f, w)
}

// writeFDMThermo writes the single-row "true" FDM thermodynamics
// spec.md §4.8 computes from the backward pass's shell weights.
func writeFDMThermo(name string, backward BackwardResult) error {
	f, w, err := createFile(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "# Z_fdm E_fdm E2_fdm C_fdm F_fdm S_fdm")
	t := backward.Thermo
	fmt.Fprintf(w, "%.10g %.10g %.10g %.10g %.10g %.10g\n", t.Z, t.E, t.E2, t.C, t.F, t.S)
	return finish(name, f, w)
}

// writeAnnotated writes the flow-diagram file: per step, per invariant,
// every shifted eigenvalue, with the kept ones marked "*" (spec.md §6's
// "flow diagram").
func writeAnnotated(name string, forward []ShellResult) error {
	f, w, err := createFile(name)
	if err != nil {
		return err
	}
	for _, r := range forward {
		fmt.Fprintf(w, "# step %d\n", r.Step.NdxN)
		for _, I := range invariant.Sorted(r.Diag.Spectra) {
			s := r.Diag.Spectra[I]
			fmt.Fprintf(w, "%s kept=%d\n", I, s.Kept)
			for i, v := range s.VZero {
				marker := " "
				if i < s.Kept {
					marker = "*"
				}
				fmt.Fprintf(w, "%s %.10g\n", marker, v)
			}
		}
	}
	return finish(name, f, w)
}

// writeEnergies writes every eigenvalue at every step, per spec.md
// §6's "all eigenvalues per step".
func writeEnergies(name string, forward []ShellResult) error {
	f, w, err := createFile(name)
	if err != nil {
		return err
	}
	for _, r := range forward {
		fmt.Fprintf(w, "%d", r.Step.NdxN)
		for _, I := range invariant.Sorted(r.Diag.Spectra) {
			for _, v := range r.Diag.Spectra[I].VOrig {
				fmt.Fprintf(w, " %.10g", v)
			}
		}
		fmt.Fprintln(w)
	}
	return finish(name, f, w)
}

// writeSubspaces writes the invariant-subspace census per step: label,
// dimension, kept count.
func writeSubspaces(name string, forward []ShellResult) error {
	f, w, err := createFile(name)
	if err != nil {
		return err
	}
	for _, r := range forward {
		fmt.Fprintf(w, "# step %d\n", r.Step.NdxN)
		for _, I := range invariant.Sorted(r.Diag.Spectra) {
			s := r.Diag.Spectra[I]
			fmt.Fprintf(w, "%s dim=%d kept=%d\n", I, len(s.VOrig), s.Kept)
		}
	}
	return finish(name, f, w)
}

// writeAbsoluteEnergies writes the three absolute-energy references
// (raw, global-ground-state, shell-ground-state) spec.md §3 defines.
func writeAbsoluteEnergies(name string, forward []ShellResult) error {
	f, w, err := createFile(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "# step invariant index AbsE AbsEG AbsEN")
	for _, r := range forward {
		for _, I := range invariant.Sorted(r.Diag.Spectra) {
			s := r.Diag.Spectra[I]
			for i := range s.VOrig {
				fmt.Fprintf(w, "%d %s %d %.10g %.10g %.10g\n", r.Step.NdxN, I, i, s.AbsE[i], s.AbsEG[i], s.AbsEN[i])
			}
		}
	}
	return finish(name, f, w)
}

// writeSpectrum writes one accumulator's histogram as both a text file
// and its binary twin, for each of the four algorithms, named
// "<algo>_dens_<name>.dat" / ".bin" (spec.md §6's naming without the
// "<prefix>_" part).
func writeSpectrum(dir string, res SpectrumResult) error {
	algos := map[string]spectral.Accumulator{
		"ft":    res.FT,
		"dmnrg": res.DMNRG,
		"cfs":   res.CFS,
		"fdm":   res.FDM,
	}
	for algo, acc := range algos {
		base := filepath.Join(dir, fmt.Sprintf("%s_dens_%s", algo, res.Name))
		if err := writeBins(base+".dat", acc.Bins()); err != nil {
			return err
		}
		if err := writeBinsBinary(base+".bin", acc.Bins()); err != nil {
			return err
		}
	}
	return nil
}

// writeBins writes two-column (omega, weight) rows: first the
// negative-side bins at -center, from the largest |omega| down, then the
// positive-side bins at +center, from the smallest up, matching LogBins'
// two one-sided arrays (spec.md §4.5).
func writeBins(name string, bins *spectral.LogBins) error {
	f, w, err := createFile(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "# omega weight")
	for i := bins.NBins() - 1; i >= 0; i-- {
		fmt.Fprintf(w, "%.10g %.10g\n", -bins.Center(i), bins.Neg[i])
	}
	for i := 0; i < bins.NBins(); i++ {
		fmt.Fprintf(w, "%.10g %.10g\n", bins.Center(i), bins.Pos[i])
	}
	return finish(name, f, w)
}

// writeBinsBinary writes the same (omega, weight) pairs as writeBins in
// fixed-width little-endian float64 form, the ".bin" twin spec.md §6
// names alongside each spectrum's ".dat" file, following the same
// encoding/binary convention package persist's codec uses for matrix
// blobs.
func writeBinsBinary(name string, bins *spectral.LogBins) error {
	f, err := os.Create(name)
	if err != nil {
		return nrgerr.WithFile(nrgerr.IOFailure, name, err)
	}
	w := bufio.NewWriter(f)
	write := func(v float64) error { return binary.Write(w, binary.LittleEndian, v) }
	for i := bins.NBins() - 1; i >= 0; i-- {
		if err := write(-bins.Center(i)); err != nil {
			f.Close()
			return nrgerr.WithFile(nrgerr.IOFailure, name, err)
		}
		if err := write(bins.Neg[i]); err != nil {
			f.Close()
			return nrgerr.WithFile(nrgerr.IOFailure, name, err)
		}
	}
	for i := 0; i < bins.NBins(); i++ {
		if err := write(bins.Center(i)); err != nil {
			f.Close()
			return nrgerr.WithFile(nrgerr.IOFailure, name, err)
		}
		if err := write(bins.Pos[i]); err != nil {
			f.Close()
			return nrgerr.WithFile(nrgerr.IOFailure, name, err)
		}
	}
	return finish(name, f, w)
}

func writeDone(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return nrgerr.WithFile(nrgerr.IOFailure, name, err)
	}
	return f.Close()
}
