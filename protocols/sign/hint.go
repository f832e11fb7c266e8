package sign

import "github.com/taurusgroup/dilizium/pkg/math/polyvec"

// Hint carries the difference between HighBits(A·z - c·t) and the committed high bits,
// written as H1·α + H2 with H2 ∈ (-α/2, α/2].
// Since the committed high bits are a sum of two shares, H1 ∈ [-2, 1].
type Hint struct {
	H1, H2 polyvec.Vector
}

// MakeHint returns the hint h such that UseHint(whb, h, alpha) = x.
func MakeHint(whb, x polyvec.Vector, alpha int32) Hint {
	h1 := make(polyvec.Vector, len(whb))
	h2 := make(polyvec.Vector, len(whb))
	for i := range whb {
		for j := range whb[i] {
			d := whb[i][j] - x[i][j]
			lo := d % alpha
			switch {
			case lo > alpha/2:
				lo -= alpha
			case lo <= -alpha/2:
				lo += alpha
			}
			h1[i][j] = (d - lo) / alpha
			h2[i][j] = lo
		}
	}
	return Hint{H1: h1, H2: h2}
}

// UseHint returns whb - (H1·α + H2).
func UseHint(whb polyvec.Vector, h Hint, alpha int32) polyvec.Vector {
	x := make(polyvec.Vector, len(whb))
	for i := range whb {
		for j := range whb[i] {
			x[i][j] = whb[i][j] - (h.H1[i][j]*alpha + h.H2[i][j])
		}
	}
	return x
}
