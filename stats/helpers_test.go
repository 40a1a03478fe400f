package stats

import "math"

// lcgNoise is a reproducible gaussian sequence from a 64 bit LCG and Box-Muller.
func lcgNoise(n int, seed uint64) []float64 {
	state := seed
	next := func() float64 {
		state = state*6364136223846793005 + 1442695040888963407
		return (float64(state>>11) + 0.5) / (1 << 53)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		u1, u2 := next(), next()
		out[i] = math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	}
	return out
}

func ar1(n int, phi float64, seed uint64) []float64 {
	e := lcgNoise(n, seed)
	y := make([]float64, n)
	var prev float64
	for i, v := range e {
		prev = phi*prev + v
		y[i] = prev
	}
	return y
}

func walk(n int, seed uint64) []float64 {
	e := lcgNoise(n, seed)
	y := make([]float64, n)
	var acc float64
	for i, v := range e {
		acc += v
		y[i] = acc
	}
	return y
}
