package world

import "math"

// hash32 mixes a 32-bit input into a well-distributed 32-bit output
// (murmur3 finalizer style avalanche).
func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// hash2 returns a stable hash for an integer lattice point and seed.
func hash2(seed uint32, x, z int32) uint32 {
	h := seed
	h ^= uint32(x) * 0x9e3779b1
	h ^= uint32(z) * 0x85ebca6b
	return hash32(h)
}

// lattice returns the value at an integer lattice point in [-1, 1].
func lattice(seed uint32, x, z int32) float64 {
	return float64(hash2(seed, x, z))/float64(math.MaxUint32)*2 - 1
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// valueNoise samples smooth 2D value noise in [-1, 1]. It depends only on
// the seed and world coordinates, so chunk borders are seamless.
func valueNoise(seed uint32, x, z float64) float64 {
	x0, z0 := math.Floor(x), math.Floor(z)
	tx, tz := smoothstep(x-x0), smoothstep(z-z0)
	ix, iz := int32(x0), int32(z0)

	a := lattice(seed, ix, iz)
	b := lattice(seed, ix+1, iz)
	c := lattice(seed, ix, iz+1)
	d := lattice(seed, ix+1, iz+1)
	return lerp(lerp(a, b, tx), lerp(c, d, tx), tz)
}

// fractalNoise sums octaves of value noise, normalized back to [-1, 1].
func fractalNoise(seed uint32, x, z float64, octaves int) float64 {
	var sum, amp, norm float64 = 0, 1, 0
	freq := 1.0
	for o := 0; o < octaves; o++ {
		sum += amp * valueNoise(seed+uint32(o)*0x632be5ab, x*freq, z*freq)
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
