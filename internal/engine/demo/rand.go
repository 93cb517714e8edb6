package demo

// rand is a tiny deterministic RNG (xorshift64*), so runs with the same
// seed replay identically.
type rand struct {
	s uint64
}

func newRand(seed uint64) *rand {
	if seed == 0 {
		seed = 1
	}
	return &rand{s: seed}
}

func (r *rand) nextU64() uint64 {
	x := r.s
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	r.s = x
	return x * 2685821657736338717
}

func (r *rand) intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.nextU64() % uint64(n))
}

func (r *rand) float64() float64 {
	return float64(r.nextU64()>>11) * (1.0 / (1 << 53))
}

func (r *rand) rangeF(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + (max-min)*r.float64()
}
