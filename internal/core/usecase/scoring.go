package usecase

import "math"

// The retrieval metrics divide by the fixed cutoff k, including recall. That
// mirrors the recorded evaluation data this harness must stay comparable
// with, even though recall is conventionally divided by |relevant|.

func precisionAtK(retrieved []string, relevant map[string]struct{}, k int) float64 {
	if k <= 0 {
		return 0
	}
	hits := 0
	for i := 0; i < k && i < len(retrieved); i++ {
		if _, ok := relevant[retrieved[i]]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

func recallAtK(retrieved []string, relevant []string, k int) float64 {
	if k <= 0 {
		return 0
	}
	retrievedSet := make(map[string]struct{}, len(retrieved))
	for _, id := range retrieved {
		retrievedSet[id] = struct{}{}
	}
	hits := 0
	for i := 0; i < k && i < len(relevant); i++ {
		if _, ok := retrievedSet[relevant[i]]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

func f1AtK(precision, recall float64) float64 {
	if precision == 0 && recall == 0 {
		return 0
	}
	return (2 * precision * recall) / (precision + recall)
}

// reciprocalRank returns 1/(idx+1) for the first relevant id at zero-based
// index idx within the first k items, and 0 when none is found.
func reciprocalRank(retrieved []string, relevant map[string]struct{}, k int) float64 {
	for idx, id := range retrieved {
		if idx >= k {
			break
		}
		if _, ok := relevant[id]; ok {
			return 1.0 / float64(idx+1)
		}
	}
	return 0
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
