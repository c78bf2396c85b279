package persist

import (
	"os"
	"path/filepath"

	"github.com/mihasalamun/nrgljubljana/nrgerr"
)

// Workdir is the scratch directory for one run's persisted step files,
// spec.md §9 "Environment": "NRG_WORKDIR overrides the scratch directory
// root; otherwise '.' is used, and a unique subdirectory is created (via
// mkdtemp-style) and removed at exit."
type Workdir struct {
	root    string
	persist bool
}

// NewWorkdir creates a fresh scratch subdirectory under NRG_WORKDIR (or
// "." if unset), via os.MkdirTemp, the stdlib equivalent of mkdtemp.
func NewWorkdir() (*Workdir, error) {
	base := os.Getenv("NRG_WORKDIR")
	if base == "" {
		base = "."
	}
	dir, err := os.MkdirTemp(base, "nrg-")
	if err != nil {
		return nil, nrgerr.WithFile(nrgerr.IOFailure, base, err)
	}
	return &Workdir{root: dir}, nil
}

// Root returns the scratch directory's path.
func (w *Workdir) Root() string { return w.root }

// KeepOnClose disables removal of the scratch directory when Close
// runs. Workdir does not consult config.Params.RemoveFiles: without
// KeepOnClose the directory is removed at Close whatever that flag says.
func (w *Workdir) KeepOnClose() { w.persist = true }

// Close removes the scratch directory and its contents, unless
// KeepOnClose was called, per spec.md §9: "removed at exit."
func (w *Workdir) Close() error {
	if w.persist {
		return nil
	}
	return os.RemoveAll(w.root)
}

func (w *Workdir) path(name string) string {
	return filepath.Join(w.root, name)
}
