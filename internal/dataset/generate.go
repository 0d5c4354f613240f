package dataset

import (
	"math"
	"math/rand"
)

// TwoClusters generates n points split between two well-separated Gaussian
// blobs: label 0 around (-2, -2) and label 1 around (+2, +2), each with the
// given standard deviation. The seed makes generation reproducible.
func TwoClusters(n int, stddev float64, seed int64) *Set {
	rng := rand.New(rand.NewSource(seed))

	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		label := i % 2
		cx, cy := -2.0, -2.0
		if label == 1 {
			cx, cy = 2.0, 2.0
		}
		points = append(points, Point{
			X1: cx + rng.NormFloat64()*stddev,
			X2: cy + rng.NormFloat64()*stddev,
			Y:  label,
		})
	}
	return &Set{Points: points}
}

// Crescent generates n points on two interleaved half-moons with Gaussian
// noise, the classic not-quite-linearly-separable fixture.
func Crescent(n int, noise float64, seed int64) *Set {
	rng := rand.New(rand.NewSource(seed))

	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		label := i % 2
		theta := rng.Float64() * math.Pi

		var x1, x2 float64
		if label == 0 {
			// Upper moon.
			x1 = math.Cos(theta)
			x2 = math.Sin(theta)
		} else {
			// Lower moon, shifted to interleave.
			x1 = 1 - math.Cos(theta)
			x2 = 0.5 - math.Sin(theta)
		}
		points = append(points, Point{
			X1: x1 + rng.NormFloat64()*noise,
			X2: x2 + rng.NormFloat64()*noise,
			Y:  label,
		})
	}
	return &Set{Points: points}
}
