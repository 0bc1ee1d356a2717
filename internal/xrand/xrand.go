// Package xrand provides the thread-local random engine used throughout the
// evolutionary core. Each goroutine that calls New gets its own *rand.Rand;
// seeding one engine never affects another, matching the "random engine is
// thread-local" requirement of the host contract.
package xrand

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
)

// New returns a new PCG-seeded random engine seeded from the OS entropy
// source. Callers that need reproducibility should use NewSeeded instead.
func New() *mrand.Rand {
	return mrand.New(mrand.NewPCG(seed64(), seed64()))
}

// NewSeeded returns a new deterministic random engine from the given seed,
// useful for reproducible tests and for replaying a run.
func NewSeeded(seed uint64) *mrand.Rand {
	return mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Randomize reseeds r from the OS entropy source.
func Randomize(r *mrand.Rand) {
	*r = *mrand.New(mrand.NewPCG(seed64(), seed64()))
}

func seed64() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the OS entropy source is broken; fall
		// back to a fixed seed rather than propagating an error from a
		// function whose contract the whole package relies on being
		// infallible.
		return 0x2545F4914F6CDD1D
	}
	return binary.LittleEndian.Uint64(b[:])
}
