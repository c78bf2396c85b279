package spectral

import "math"

// cfsReference is the unoptimized "OLD" CFS algorithm kept as a
// test-only cross-check oracle, per SPEC_FULL's Open Question (iii)
// resolution: it recomputes the less-than/greater-than split by
// scanning every (r1,rp) pair and classifying each individually rather
// than slicing by the Kept boundary, so a bug in the optimized slicing
// bounds would show up as a mismatch against this reference.
func cfsReference(contributions []Contribution, binMin, binMax float64, binsPerDecade int) *LogBins {
	bins := NewLogBins(binMin, binMax, binsPerDecade)
	for _, c := range contributions {
		if c.Op1 == nil || c.Op2 == nil || c.Rho == nil {
			continue
		}
		rows1, cols1 := c.Op1.Dims()
		for r1 := 0; r1 < rows1; r1++ {
			for rp := 0; rp < cols1; rp++ {
				if r1 >= len(c.DiagI1.VZero) || rp >= len(c.DiagIp.VZero) {
					continue
				}
				discardedAtI1 := r1 >= c.DiagI1.Kept
				keptAtIp := rp < c.DiagIp.Kept
				keptAtI1 := r1 < c.DiagI1.Kept
				discardedAtIp := rp >= c.DiagIp.Kept

				omega := c.Scale * (c.DiagI1.VZero[r1] - c.DiagIp.VZero[rp])
				prod := weightOf(c.Op1.At(r1, rp), c.Op2.At(r1, rp))

				if discardedAtI1 && keptAtIp {
					rhoRows, rhoCols := c.Rho.Dims()
					if rp < rhoRows && rp < rhoCols {
						w := c.Factor * prod * c.Rho.At(rp, rp) * float64(c.Sign)
						bins.Add(omega, w)
					}
				}
				if keptAtI1 && discardedAtIp {
					rhoRows, rhoCols := c.Rho.Dims()
					if r1 < rhoRows && r1 < rhoCols {
						w := c.Factor * prod * c.Rho.At(r1, r1) * float64(c.Sign)
						bins.Add(omega, w)
					}
				}
			}
		}
	}
	return bins
}

func totalWeight(b *LogBins) float64 {
	sum := 0.0
	for i := 0; i < b.NBins(); i++ {
		sum += math.Abs(b.Pos[i]) + math.Abs(b.Neg[i])
	}
	return sum
}
