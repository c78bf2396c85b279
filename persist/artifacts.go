// Artifact I/O for the three per-step blobs spec.md §4.7 and §9 name:
// unitary<N> (eigenvector transforms, for the backward density-matrix
// pass), rho<N> and rhoFDM<N> (reduced density matrices). Each is a
// label-keyed block set written with the codec in blockset.go.
package persist

import (
	"fmt"
	"os"

	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/nrgerr"
	"gonum.org/v1/gonum/mat"
)

func stepFile(prefix string, step int) string {
	return fmt.Sprintf("%s%d", prefix, step)
}

func (w *Workdir) write(name string, blocks map[invariant.Label]*mat.Dense) error {
	data, err := marshalBlockSet(blocks)
	if err != nil {
		return nrgerr.WithFile(nrgerr.IOFailure, name, err)
	}
	if err := os.WriteFile(w.path(name), data, 0o644); err != nil {
		return nrgerr.WithFile(nrgerr.IOFailure, name, err)
	}
	return nil
}

func (w *Workdir) read(name string) (map[invariant.Label]*mat.Dense, error) {
	data, err := os.ReadFile(w.path(name))
	if err != nil {
		return nil, nrgerr.WithFile(nrgerr.IOFailure, name, err)
	}
	blocks, err := unmarshalBlockSet(data)
	if err != nil {
		return nil, nrgerr.WithFile(nrgerr.IOFailure, name, err)
	}
	return blocks, nil
}

// SaveUnitary writes the eigenvector transform for step N, keyed by
// invariant, as unitary<N> (spec.md §4.7 "persistence of transformation
// matrices between the two passes").
func (w *Workdir) SaveUnitary(step int, vectors map[invariant.Label]*mat.Dense) error {
	return w.write(stepFile("unitary", step), vectors)
}

// LoadUnitary reads back a transform written by SaveUnitary.
func (w *Workdir) LoadUnitary(step int) (map[invariant.Label]*mat.Dense, error) {
	return w.read(stepFile("unitary", step))
}

// SaveRho writes the DMNRG/CFS reduced density matrix for step N as
// rho<N>.
func (w *Workdir) SaveRho(step int, rho map[invariant.Label]*mat.Dense) error {
	return w.write(stepFile("rho", step), rho)
}

// LoadRho reads back a density matrix written by SaveRho.
func (w *Workdir) LoadRho(step int) (map[invariant.Label]*mat.Dense, error) {
	return w.read(stepFile("rho", step))
}

// SaveRhoFDM writes the FDM density matrix for step N as rhoFDM<N>.
func (w *Workdir) SaveRhoFDM(step int, rho map[invariant.Label]*mat.Dense) error {
	return w.write(stepFile("rhoFDM", step), rho)
}

// LoadRhoFDM reads back a density matrix written by SaveRhoFDM.
func (w *Workdir) LoadRhoFDM(step int) (map[invariant.Label]*mat.Dense, error) {
	return w.read(stepFile("rhoFDM", step))
}

// Remove deletes a single step's named artifact file, for
// config.Params.RemoveFiles's "delete scratch blobs after load"
// behavior (spec.md §6).
func (w *Workdir) Remove(prefix string, step int) error {
	name := stepFile(prefix, step)
	if err := os.Remove(w.path(name)); err != nil && !os.IsNotExist(err) {
		return nrgerr.WithFile(nrgerr.IOFailure, name, err)
	}
	return nil
}
