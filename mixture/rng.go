// Package mixture - deterministic RNG for initialisation.
//
// Every (seed, k) pair gets its own stream so that grid cells can be fitted
// in any order, on any worker, with identical results.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe; each Fit owns its stream.
package mixture

import "math/rand"

// defaultRNGSeed is used when callers pass seed==0.
const defaultRNGSeed int64 = 1

// rngFromSeed returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ defaultRNGSeed; otherwise the seed verbatim.
//
// Complexity: O(1).
func rngFromSeed(seed int64) *rand.Rand {
	s := seed
	if s == 0 {
		s = defaultRNGSeed
	}
	return rand.New(rand.NewSource(s))
}

// deriveSeed mixes a parent seed and a stream identifier with the SplitMix64
// finalizer so that neighbouring (seed, k) cells are uncorrelated.
//
// Complexity: O(1).
func deriveSeed(parent int64, stream uint64) int64 {
	var x uint64
	x = uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// initRNG returns the initialisation stream of grid cell (seed, k).
func initRNG(seed int64, k int) *rand.Rand {
	parent := seed
	if parent == 0 {
		parent = defaultRNGSeed
	}
	return rngFromSeed(deriveSeed(parent, uint64(k)))
}
