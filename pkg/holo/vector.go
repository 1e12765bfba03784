// Package holo provides the deterministic vector codec used by the kernel.
//
// Byte content is fingerprinted with 32-bit FNV-1a and the fingerprint seeds a
// linear-congruential generator that expands it into a sparse vector of
// Dimensions float32 values. Identical input always yields an identical
// fingerprint and identical vector content. Distinct inputs may collide on
// the fingerprint; callers that key on fingerprints must tolerate that.
package holo

import "math"

// Dimensions is the fixed length of every holographic vector.
const Dimensions = 512

// Vector is a fixed-dimension sparse embedding.
type Vector struct {
	// Data holds the dimension values in [-1.0, 1.0].
	Data [Dimensions]float32 `json:"-"`

	// Fingerprint is the FNV-1a hash of the bytes the vector was derived from.
	Fingerprint uint32 `json:"fingerprint"`

	// Active is the number of non-zero dimensions.
	Active uint16 `json:"active"`

	// Valid is false for the zero Vector.
	Valid bool `json:"valid"`
}

// Dot returns the inner product of v and o.
func (v *Vector) Dot(o *Vector) float64 {
	var sum float64
	for i := 0; i < Dimensions; i++ {
		sum += float64(v.Data[i]) * float64(o.Data[i])
	}
	return sum
}

// Magnitude returns the Euclidean norm of v.
func (v *Vector) Magnitude() float64 {
	return math.Sqrt(v.Dot(v))
}

// FlipSign negates one dimension in place. Out-of-range indices wrap modulo
// Dimensions.
func (v *Vector) FlipSign(dim int) {
	dim %= Dimensions
	if dim < 0 {
		dim += Dimensions
	}
	v.Data[dim] = -v.Data[dim]
}

// Equal reports whether v and o carry the same fingerprint and content.
func (v *Vector) Equal(o *Vector) bool {
	return v.Fingerprint == o.Fingerprint &&
		v.Active == o.Active &&
		v.Valid == o.Valid &&
		v.Data == o.Data
}

// Cosine returns the cosine similarity of a and b.
//
// A zero magnitude is clamped to 1.0 so degenerate vectors never divide by
// zero; the dot product is then zero too, which makes the result 0. The result
// is clamped to [-1, 1] to absorb floating point drift.
func Cosine(a, b *Vector) float64 {
	var dot, ma, mb float64
	for i := 0; i < Dimensions; i++ {
		x, y := float64(a.Data[i]), float64(b.Data[i])
		dot += x * y
		ma += x * x
		mb += y * y
	}

	ma = clampMagnitude(ma)
	mb = clampMagnitude(mb)

	denom := ma * mb
	if denom == 0 {
		return 0
	}
	sim := dot / denom
	switch {
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	}
	return sim
}

func clampMagnitude(sq float64) float64 {
	if sq > 0 {
		return math.Sqrt(sq)
	}
	return 1.0
}
