package index

import "math"

// CosineSimilarity computes cosine similarity between two vectors.
// Returns 0 when either vector has zero magnitude or when the
// dimensions differ, so a malformed entry degrades to "no match"
// instead of a panic.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		magA += x * x
		magB += y * y
	}

	magA = math.Sqrt(magA)
	magB = math.Sqrt(magB)
	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (magA * magB)
}
