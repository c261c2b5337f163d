package common

import "math"

// Abs returns the absolute value of an integer
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round rounds v to the given number of decimal places. Results shown to
// users are rounded so that float noise does not leak into tables.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// SampleEvery returns the interval at which one of total items is sampled
// so that about n samples are taken. It is never less than 1.
func SampleEvery(total, n int) int {
	if n <= 0 || total <= n {
		return 1
	}
	return total / n
}
