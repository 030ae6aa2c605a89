// Package zobrist provides fixed-seed Zobrist tables for hashing
// canonical position vectors. A fixed seed keeps hashes stable across
// runs so cached endgame results remain valid for a process lifetime
// and tests are reproducible.
package zobrist

import (
	"math/rand"
)

const (
	// Slots is the maximum canonical-vector length supported.
	Slots = 128
	// Values is the number of distinct values hashed per slot;
	// larger values are clamped by the caller.
	Values = 64

	seed = 0x5A2D_BEEF
)

var keys [Slots][Values]uint64

func init() {
	rng := rand.New(rand.NewSource(seed))
	for s := 0; s < Slots; s++ {
		for v := 0; v < Values; v++ {
			k := rng.Uint64()
			for k == 0 {
				k = rng.Uint64()
			}
			keys[s][v] = k
		}
	}
}

// Key returns the table entry for (slot, value). Values outside the table
// are folded back in, which keeps the hash well-defined for oversized
// vector entries at the cost of a few extra collisions.
func Key(slot, value int) uint64 {
	if value < 0 {
		value = 0
	}
	return keys[slot%Slots][value%Values]
}

// HashVector hashes a canonical vector, mixing each element with its slot.
func HashVector(vec []int) uint64 {
	var h uint64
	for i, v := range vec {
		h ^= Key(i, v)
	}
	return h
}
