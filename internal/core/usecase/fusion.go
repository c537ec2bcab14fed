package usecase

import (
	"sort"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

const (
	branchDense = iota
	branchLexical
)

type fusedCandidate struct {
	passage domain.RetrievedPassage
	score   float64
	branch  int
}

// fuseRankingsRRF merges the dense and lexical rankings with reciprocal rank
// fusion: each passage scores 1/(rrfK + rank) per branch it appears in, rank
// counted from 1. Ties break dense-before-lexical, then by passage id, so the
// fused order is fully deterministic. Output is deduplicated by id.
func fuseRankingsRRF(dense, lexical []domain.RetrievedPassage, rrfK int) []domain.RetrievedPassage {
	if rrfK <= 0 {
		rrfK = 60
	}

	acc := make(map[string]fusedCandidate, len(dense)+len(lexical))
	addList := func(passages []domain.RetrievedPassage, branch int) {
		for rank, passage := range passages {
			candidate, seen := acc[passage.ID]
			if !seen {
				candidate.passage = passage
				candidate.branch = branch
			}
			candidate.passage = preferRicherPassage(candidate.passage, passage)
			candidate.score += 1.0 / float64(rrfK+rank+1)
			acc[passage.ID] = candidate
		}
	}

	addList(dense, branchDense)
	addList(lexical, branchLexical)

	out := make([]domain.RetrievedPassage, 0, len(acc))
	branches := make(map[string]int, len(acc))
	for id, c := range acc {
		passage := c.passage
		passage.Score = c.score
		out = append(out, passage)
		branches[id] = c.branch
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if branches[out[i].ID] != branches[out[j].ID] {
			return branches[out[i].ID] < branches[out[j].ID]
		}
		return out[i].ID < out[j].ID
	})

	return out
}

func trimRanking(passages []domain.RetrievedPassage, limit int) []domain.RetrievedPassage {
	if limit <= 0 || len(passages) <= limit {
		return passages
	}
	return passages[:limit]
}

func preferRicherPassage(current, candidate domain.RetrievedPassage) domain.RetrievedPassage {
	if current.Content == "" && candidate.Content != "" {
		current.Content = candidate.Content
	}
	if len(current.Metadata) == 0 && len(candidate.Metadata) > 0 {
		current.Metadata = candidate.Metadata
	}
	return current
}
