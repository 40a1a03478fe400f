package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateT returns n daily stamps starting at start.
func GenerateT(n int, start time.Time) []time.Time {
	t, _ := GenerateIndex(start, Daily, n)
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func (s Series) Scale(c float64) Series {
	floats.Scale(c, s)
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

func GenerateTrendY(n int, intercept, slope float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, intercept+slope*float64(i))
	}
	return Series(y)
}

// GenerateSeasonalY returns a sine wave repeating every period observations.
func GenerateSeasonalY(n int, amp float64, period int) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, amp*math.Sin(2.0*math.Pi*float64(i)/float64(period)))
	}
	return Series(y)
}

// GenerateNoise returns gaussian noise from a seeded source so results are reproducible.
func GenerateNoise(n int, scale float64, seed uint64) Series {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, rng.NormFloat64()*scale)
	}
	return Series(y)
}

// GenerateARY simulates y_t = c + phi*y_{t-1} + e_t with seeded gaussian noise.
func GenerateARY(n int, c, phi, scale float64, seed uint64) Series {
	noise := GenerateNoise(n, scale, seed)
	y := make([]float64, n)
	var prev float64
	for i := 0; i < n; i++ {
		y[i] = c + phi*prev + noise[i]
		prev = y[i]
	}
	return Series(y)
}

// GenerateRandomWalk returns the cumulative sum of seeded gaussian steps.
func GenerateRandomWalk(n int, start, scale float64, seed uint64) Series {
	steps := GenerateNoise(n, scale, seed)
	y := make([]float64, n)
	acc := start
	for i := 0; i < n; i++ {
		acc += steps[i]
		y[i] = acc
	}
	return Series(y)
}
