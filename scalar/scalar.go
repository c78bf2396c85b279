// Package scalar parameterizes the engine by numeric kind.
//
// The teacher corpus (gonum) hand-duplicates real/complex pairs
// throughout (Dense/CDense, Eigen/EigenSym, float64/complex128 math
// helpers) because it predates widespread generics adoption. spec.md §9
// "Scalar kind" and SPEC_FULL §10(i) elect the generic rendition
// instead: real and complex models share one code path, with
// conjugation the identity in the real case.
package scalar

// Kind is the type-set constraint of spectral's generic weightOf;
// operator.Set, the spectral accumulators and recalc work on float64
// mat.Dense blocks only.
type Kind interface {
	~float64 | ~complex128
}

// Conj returns the complex conjugate of v, or v unchanged for real kinds
// (conjugation is the identity in the real case, per spec.md §9).
func Conj[T Kind](v T) T {
	switch x := any(v).(type) {
	case complex128:
		return any(complexConj(x)).(T)
	default:
		return v
	}
}

func complexConj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

// Abs2 returns |v|^2 as a float64.
func Abs2[T Kind](v T) float64 {
	switch x := any(v).(type) {
	case complex128:
		r, i := real(x), imag(x)
		return r*r + i*i
	case float64:
		return x * x
	default:
		var z T
		_ = z
		return 0
	}
}

// ToComplex128 widens v to complex128; spectral's weightOf uses it to
// pass its operands to cmplxs.Dot. The spectral accumulators themselves
// bin float64 weights.
func ToComplex128[T Kind](v T) complex128 {
	switch x := any(v).(type) {
	case complex128:
		return x
	case float64:
		return complex(x, 0)
	default:
		return 0
	}
}

// IsComplex reports whether T is the complex128 instantiation, used by
// spectral's weightOf to choose its complex branch.
func IsComplex[T Kind]() bool {
	var z T
	_, ok := any(z).(complex128)
	return ok
}
