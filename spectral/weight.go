package spectral

import (
	"github.com/mihasalamun/nrgljubljana/scalar"
	"gonum.org/v1/gonum/cmplxs"
)

// weightOf computes conj(op1)*op2 for whichever scalar kind spec.md §9
// allows an operator model to carry: the real case's conjugation is
// the identity (scalar.Conj), the complex case reduces to cmplxs.Dot
// on a length-one slice, whose documented convention is exactly
// Σ conj(s1[i])·s2[i] — here evaluated on the single pair spec.md §4.5
// specifies. Every accumulator in this package is instantiated over
// float64 (operator.Set stores mat.Dense blocks), but the weight itself
// stays generic so a complex (Hermitian-model) instantiation needs no
// parallel implementation, per SPEC_FULL §10(i)'s generic rendition.
func weightOf[T scalar.Kind](op1, op2 T) T {
	if scalar.IsComplex[T]() {
		c := cmplxs.Dot([]complex128{scalar.ToComplex128(op1)}, []complex128{scalar.ToComplex128(op2)})
		return any(c).(T)
	}
	return scalar.Conj(op1) * op2
}
