package spectrum

import (
	"math"

	"github.com/mihasalamun/nrgljubljana/invariant"
)

// DiagState is the per-step collection of subspace spectra, keyed by
// invariant label, plus the persistent SubspaceDims snapshot that
// survives after the step ends (spec.md §3 "Shell state").
//
// DiagState is constructed during the diagonalization phase by
// concurrent workers and is read-only afterward (spec.md §5
// "Shared-resource policy"); callers are responsible for not mutating
// it once the diagonalization phase's join has completed.
type DiagState struct {
	Spectra map[invariant.Label]*Subspace
	// ComplexSpectra holds the Hermitian-model counterpart when the
	// engine is instantiated over the complex scalar kind (spec.md §9
	// "Scalar kind"); a given run populates exactly one of the two maps
	// for each invariant.
	ComplexSpectra map[invariant.Label]*SubspaceComplex
	Dims           map[invariant.Label]SubspaceDims
}

// NewDiagState allocates an empty DiagState.
func NewDiagState() *DiagState {
	return &DiagState{
		Spectra:        make(map[invariant.Label]*Subspace),
		ComplexSpectra: make(map[invariant.Label]*SubspaceComplex),
		Dims:           make(map[invariant.Label]SubspaceDims),
	}
}

// Insert records the spectrum for I. Diagonalizer's shared-memory
// backend calls this under a mutex (spec.md §5: "results are inserted
// under a short critical section"); the distributed backend calls it
// only on the root after collecting a worker's reply.
func (d *DiagState) Insert(I invariant.Label, s *Subspace) {
	d.Spectra[I] = s
}

// InsertComplex is Insert's Hermitian-model counterpart.
func (d *DiagState) InsertComplex(I invariant.Label, s *SubspaceComplex) {
	d.ComplexSpectra[I] = s
}

// SnapshotAll records SubspaceDims for every subspace in d, marking
// `last` on all of them, and is called once per step after truncation
// and block-splitting but before eigenvectors are dropped.
func (d *DiagState) SnapshotAll(last bool) {
	for I, s := range d.Spectra {
		d.Dims[I] = s.Snapshot(last)
	}
}

// Invariants returns the deterministic (sorted) list of invariant
// labels present in d, per spec.md §5 "Ordering guarantees".
func (d *DiagState) Invariants() []invariant.Label {
	return invariant.Sorted(d.Spectra)
}

// TotalStates returns the sum of Computed() over every subspace, used
// by Truncator to size its concatenated eigenvalue array.
func (d *DiagState) TotalStates() int {
	n := 0
	for _, s := range d.Spectra {
		n += s.Computed()
	}
	return n
}

// MinVZero returns the minimum v_zero[0] across all subspaces, which
// spec.md §8 invariant 1 requires to equal 0 within 1e-14 once ground
// state subtraction has run.
func (d *DiagState) MinVZero() float64 {
	min := math.Inf(1)
	for _, s := range d.Spectra {
		if len(s.VZero) > 0 && s.VZero[0] < min {
			min = s.VZero[0]
		}
	}
	return min
}
