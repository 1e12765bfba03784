package holo

import "hash/fnv"

// LCG parameters for the embedding generator.
const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgMask       = 0x7fffffff

	// A dimension is populated when the generator state is divisible by
	// sparsity, which leaves roughly one dimension in ten non-zero.
	sparsity = 10
)

// Fingerprint returns the 32-bit FNV-1a hash of data
// (offset basis 2166136261, prime 16777619).
func Fingerprint(data []byte) uint32 {
	h := fnv.New32a()
	h.Write(data)
	return h.Sum32()
}

// Embed deterministically expands data into a sparse vector.
func Embed(data []byte) Vector {
	v := Vector{
		Fingerprint: Fingerprint(data),
		Valid:       true,
	}

	seed := v.Fingerprint
	for i := 0; i < Dimensions; i++ {
		seed = (seed*lcgMultiplier + lcgIncrement) & lcgMask
		if seed%sparsity != 0 {
			continue
		}
		val := float32(int32(seed%2000)-1000) / 1000.0
		v.Data[i] = val
		if val != 0 {
			v.Active++
		}
	}
	return v
}

// EmbedSymbol embeds a named symbol. The symbol bytes are followed by a single
// NUL so that fingerprints agree with the terminated strings the kernel has
// always hashed.
func EmbedSymbol(symbol string) Vector {
	return Embed(symbolBytes(symbol))
}

// SymbolFingerprint is the fingerprint EmbedSymbol would produce for symbol.
func SymbolFingerprint(symbol string) uint32 {
	return Fingerprint(symbolBytes(symbol))
}

func symbolBytes(symbol string) []byte {
	b := make([]byte, len(symbol)+1)
	copy(b, symbol)
	return b
}
