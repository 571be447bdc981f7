package simulation

import "math/rand"

// Stream identifiers keep the row and channel RNGs of one engine apart.
const (
	streamRows uint64 = iota + 1
	streamChannel
)

const golden uint64 = 0x9e3779b97f4a7c15

// DeriveSeed mixes a parent seed and a stream identifier into a new seed.
// The parent is finalized first and the stream is added as a multiple of
// the golden gamma, so for a fixed parent distinct streams never collide.
func DeriveSeed(parent int64, stream uint64) int64 {
	x := mix64(uint64(parent)) + (stream+1)*golden
	return int64(mix64(x))
}

// mix64 is the SplitMix64 finalizer; it is a bijection on uint64.
func mix64(x uint64) uint64 {
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
