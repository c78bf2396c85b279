package persist

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mihasalamun/nrgljubljana/invariant"
	"gonum.org/v1/gonum/mat"
)

func sampleBlocks() map[invariant.Label]*mat.Dense {
	return map[invariant.Label]*mat.Dense{
		invariant.New(0, 1):  mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
		invariant.New(1, -1): mat.NewDense(1, 1, []float64{math.Pi}),
		invariant.New(2, 0):  mat.NewDense(0, 0, nil),
	}
}

func matEqual(a, b *mat.Dense) bool {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb || ca != cb {
		return false
	}
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			if a.At(i, j) != b.At(i, j) {
				return false
			}
		}
	}
	return true
}

func TestBlockSetRoundTripExact(t *testing.T) {
	want := sampleBlocks()
	data, err := marshalBlockSet(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := unmarshalBlockSet(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for label, m := range want {
		gm, ok := got[label]
		if !ok {
			t.Fatalf("missing label %v", label)
		}
		if !matEqual(m, gm) {
			t.Errorf("label %v: round-tripped matrix differs", label)
		}
	}
}

func TestBlockSetRoundTripDeterministicBytes(t *testing.T) {
	blocks := sampleBlocks()
	a, err := marshalBlockSet(blocks)
	if err != nil {
		t.Fatal(err)
	}
	b, err := marshalBlockSet(blocks)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatalf("len(a)=%d len(b)=%d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("byte %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestWorkdirSaveLoadUnitary(t *testing.T) {
	tmp := t.TempDir()
	os.Setenv("NRG_WORKDIR", tmp)
	defer os.Unsetenv("NRG_WORKDIR")

	w, err := NewWorkdir()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(w.Root()) != tmp {
		t.Errorf("workdir root %q not under NRG_WORKDIR %q", w.Root(), tmp)
	}

	blocks := sampleBlocks()
	if err := w.SaveUnitary(3, blocks); err != nil {
		t.Fatalf("SaveUnitary: %v", err)
	}
	got, err := w.LoadUnitary(3)
	if err != nil {
		t.Fatalf("LoadUnitary: %v", err)
	}
	for label, m := range blocks {
		if !matEqual(m, got[label]) {
			t.Errorf("label %v: mismatch after save/load", label)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(w.Root()); !os.IsNotExist(err) {
		t.Errorf("workdir %q still exists after Close", w.Root())
	}
}

func TestWorkdirKeepOnCloseRetainsFiles(t *testing.T) {
	tmp := t.TempDir()
	os.Setenv("NRG_WORKDIR", tmp)
	defer os.Unsetenv("NRG_WORKDIR")

	w, err := NewWorkdir()
	if err != nil {
		t.Fatal(err)
	}
	w.KeepOnClose()
	if err := w.SaveRho(0, sampleBlocks()); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(w.Root()); err != nil {
		t.Errorf("workdir removed despite KeepOnClose: %v", err)
	}
}

func TestWorkdirRemoveDeletesArtifact(t *testing.T) {
	tmp := t.TempDir()
	os.Setenv("NRG_WORKDIR", tmp)
	defer os.Unsetenv("NRG_WORKDIR")

	w, err := NewWorkdir()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.SaveRhoFDM(1, sampleBlocks()); err != nil {
		t.Fatal(err)
	}
	if err := w.Remove("rhoFDM", 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := w.LoadRhoFDM(1); err == nil {
		t.Error("expected error loading removed artifact")
	}
	if err := w.Remove("rhoFDM", 1); err != nil {
		t.Errorf("Remove on already-missing file should be a no-op, got %v", err)
	}
}
