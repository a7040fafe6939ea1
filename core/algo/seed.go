package algo

// splitmix64 is the finalizer from SplitMix64. It spreads nearby inputs
// (run seed, trial index) across the whole seed space.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// DeriveSeed returns the seed of stream index under runSeed. The result
// depends only on its inputs, never on scheduling order.
func DeriveSeed(runSeed uint64, index int) uint64 {
	return splitmix64(splitmix64(runSeed) ^ uint64(index))
}

// TrialRand returns the random source owned by trial index of a run.
func TrialRand(runSeed uint64, index int) *Rand {
	return NewRand(DeriveSeed(runSeed, index))
}
