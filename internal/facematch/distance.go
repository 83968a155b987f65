package facematch

import "math"

// Distance computes the euclidean distance between two encodings.
// Mismatched or empty vectors are infinitely far apart.
func Distance(a, b Encoding) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Distances returns the distance from e to every known encoding, in gallery order.
func Distances(known []Encoding, e Encoding) []float64 {
	out := make([]float64, len(known))
	for i, k := range known {
		out[i] = Distance(k, e)
	}
	return out
}

// Nearest returns the index and value of the smallest distance.
// Ties resolve to the earliest index; an empty slice returns -1 and +Inf.
func Nearest(distances []float64) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, d := range distances {
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// FirstWithin returns the first index whose distance is <= tolerance, or -1.
func FirstWithin(distances []float64, tolerance float64) int {
	for i, d := range distances {
		if d <= tolerance {
			return i
		}
	}
	return -1
}
