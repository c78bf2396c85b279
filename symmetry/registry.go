package symmetry

import "github.com/mihasalamun/nrgljubljana/nrgerr"

// registry lists the symmetries compiled into this build, matching
// spec.md §7's UnsupportedSymmetry kind ("requested symmetry not
// compiled in; startup error").
var registry = map[string]Capability{
	"QS":  QS{},
	"QSZ": QSZ{},
}

// Lookup resolves a symmetry by name, or returns an UnsupportedSymmetry
// error if it is not registered.
func Lookup(name string) (Capability, error) {
	cap, ok := registry[name]
	if !ok {
		return nil, nrgerr.New(nrgerr.UnsupportedSymmetry, errUnknownSymmetry(name))
	}
	return cap, nil
}

type errUnknownSymmetry string

func (e errUnknownSymmetry) Error() string { return "symmetry not compiled in: " + string(e) }

// Names returns the sorted list of registered symmetry names, used for
// diagnostics and tests.
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
