package common

// IsProbability checks that p lies in [0, 1]. NaN is rejected.
func IsProbability(p float64) bool {
	return p >= 0 && p <= 1
}

// IsRate checks that r lies in (0, 1], the range of learning rates and
// discount factors.
func IsRate(r float64) bool {
	return r > 0 && r <= 1
}

// IsValidPort checks that p is a usable TCP port
func IsValidPort(p int) bool {
	return p > 0 && p <= 65535
}

// IsValidCoordinate checks if the given coordinates are within the bounds of the board
func IsValidCoordinate(x, y, width, height int) bool {
	return x >= 0 && x < width && y >= 0 && y < height
}
