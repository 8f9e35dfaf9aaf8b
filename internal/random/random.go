// Package random provides crypto-seeded PRNG helpers.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Seed returns a seed drawn from crypto/rand.
func Seed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		// crypto/rand failing means the process is in far worse trouble
		// than a predictable shuffle.
		panic(err)
	}
	return binary.LittleEndian.Uint64(b[:])
}

// New returns a PCG generator seeded from crypto/rand.
func New() *rand.Rand {
	return rand.New(rand.NewPCG(Seed(), Seed()))
}
