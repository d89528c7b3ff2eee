// Package mathutil provides common mathematical utility functions.
package mathutil

// ClampInt constrains val to the inclusive range [low, high].
func ClampInt(val, low, high int) int {
	if val < low {
		return low
	}
	if val > high {
		return high
	}
	return val
}

// MinInt returns the minimum of two int values
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
