package densitymatrix

import (
	"math/big"

	"github.com/ALTree/bigfloat"
	"github.com/mihasalamun/nrgljubljana/invariant"
	"github.com/mihasalamun/nrgljubljana/nrgerr"
	"github.com/mihasalamun/nrgljubljana/spectrum"
	"github.com/mihasalamun/nrgljubljana/symmetry"
)

// precision is the minimum bit precision spec.md §9 requires for the
// FDM extended-precision accumulators ("use a bignum-float library with
// >=400-bit precision").
const precision = 400

func newBig(x float64) *big.Float {
	return new(big.Float).SetPrec(precision).SetFloat64(x)
}

// ZShell computes Σ_I mult(I)·Σᵢ exp(−e[i]/T) in extended precision,
// implementing spec.md §4.6 step 1's ZnDG/ZnDN formula; absE selects
// which of a subspace's three absolute-energy arrays to sum (AbsEG for
// ZnDG, AbsEN for ZnDN).
func ZShell(dims map[invariant.Label]spectrum.SubspaceDims, cap symmetry.Capability, T float64, absE func(spectrum.SubspaceDims) []float64) *big.Float {
	total := newBig(0)
	tNeg := newBig(-1 / T)
	for I, d := range dims {
		mult := newBig(float64(cap.Multiplicity(I)))
		subtotal := newBig(0)
		for _, e := range absE(d) {
			exponent := new(big.Float).SetPrec(precision).Mul(tNeg, newBig(e))
			subtotal.Add(subtotal, bigfloat.Exp(exponent))
		}
		subtotal.Mul(subtotal, mult)
		total.Add(total, subtotal)
	}
	return total
}

// ZnDG extracts dim.AbsEG, for use as ZShell's absE selector.
func ZnDG(d spectrum.SubspaceDims) []float64 { return d.AbsEG }

// ZnDN extracts dim.AbsEN, for use as ZShell's absE selector.
func ZnDN(d spectrum.SubspaceDims) []float64 { return d.AbsEN }

// combsPow returns combs^exp as an extended-precision value.
func combsPow(combs, exp int) *big.Float {
	result := newBig(1)
	base := newBig(float64(combs))
	for i := 0; i < exp; i++ {
		result = new(big.Float).SetPrec(precision).Mul(result, base)
	}
	return result
}

// ComputeWeights implements spec.md §4.6 steps 2-3: given ZnDG for each
// step of a chain of length len(znDG), and combs (the local Hilbert
// space dimension added per site, the branching factor of the discarded
// tower), returns wn[N] = (combs^(Nlen-N-1)/ZZG)·ZnDG[N], with
// ZZG = Σ_N ZnDG[N]·combs^(Nlen-N-1).
func ComputeWeights(znDG []*big.Float, combs int) []*big.Float {
	n := len(znDG)
	powers := make([]*big.Float, n)
	zzg := newBig(0)
	for N := 0; N < n; N++ {
		p := combsPow(combs, n-N-1)
		powers[N] = p
		term := new(big.Float).SetPrec(precision).Mul(p, znDG[N])
		zzg.Add(zzg, term)
	}

	wn := make([]*big.Float, n)
	if zzg.Sign() == 0 {
		// Every shell's ZnDG vanished (e.g. an empty chain or an
		// all-discarded tower): there is no well-defined weight
		// distribution, so Quo's 0/0 is undefined rather than a real
		// answer. Spread the weight uniformly rather than panic.
		uniform := newBig(0)
		if n > 0 {
			uniform = new(big.Float).SetPrec(precision).Quo(newBig(1), newBig(float64(n)))
		}
		for N := 0; N < n; N++ {
			wn[N] = uniform
		}
		return wn
	}
	for N := 0; N < n; N++ {
		num := new(big.Float).SetPrec(precision).Mul(powers[N], znDG[N])
		wn[N] = new(big.Float).SetPrec(precision).Quo(num, zzg)
	}
	return wn
}

// CheckWeightSum validates spec.md §8 invariant 4: Σ wn = 1 within
// 1e-12.
func CheckWeightSum(wn []*big.Float) error {
	sum := newBig(0)
	for _, w := range wn {
		sum.Add(sum, w)
	}
	f, _ := sum.Float64()
	if abs(f-1) > 1e-12 {
		return nrgerr.New(nrgerr.ToleranceViolation, weightSumErr{})
	}
	return nil
}

type weightSumErr struct{}

func (weightSumErr) Error() string { return "densitymatrix: sum of FDM shell weights wn != 1 within tolerance" }
