// Package randutil derives reproducible random streams for simulation runs.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Both PCG words are derived from the one seed so every caller gets the same
// sequence for the same seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns seed unchanged unless it is zero, in which case a time-based
// seed is returned. Zero means "not set" throughout the configuration.
func Seed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// Split draws n independent child streams from parent, one per worker.
// The parent is advanced n times, so the result is reproducible.
func Split(parent *rand.Rand, n int) []*rand.Rand {
	streams := make([]*rand.Rand, n)
	for i := range streams {
		streams[i] = New(parent.Int64())
	}
	return streams
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
