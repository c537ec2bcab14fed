package usecase

import (
	"reflect"
	"testing"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

func TestFuseRankingsRRFDeduplicatesByID(t *testing.T) {
	dense := []domain.RetrievedPassage{
		{ID: "p1", Content: "a"},
		{ID: "p2", Content: "b"},
	}
	lexical := []domain.RetrievedPassage{
		{ID: "p2", Content: "b"},
		{ID: "p3", Content: "c"},
	}

	fused := fuseRankingsRRF(dense, lexical, 60)
	if len(fused) != 3 {
		t.Fatalf("expected 3 fused passages, got %d", len(fused))
	}
	if fused[0].ID != "p2" {
		t.Fatalf("expected p2 first after fusion, got %s", fused[0].ID)
	}
	seen := map[string]bool{}
	for _, p := range fused {
		if seen[p.ID] {
			t.Fatalf("duplicate id %s in fused ranking", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestFuseRankingsRRFDeterministic(t *testing.T) {
	dense := []domain.RetrievedPassage{{ID: "x"}, {ID: "y"}, {ID: "z"}}
	lexical := []domain.RetrievedPassage{{ID: "z"}, {ID: "w"}}

	first := fuseRankingsRRF(dense, lexical, 60)
	for i := 0; i < 10; i++ {
		again := fuseRankingsRRF(dense, lexical, 60)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("fusion is not deterministic: %v vs %v", first, again)
		}
	}
}

func TestFuseRankingsRRFTieBreakDenseBeforeLexical(t *testing.T) {
	// Same rank in each branch means equal scores; the dense passage wins.
	dense := []domain.RetrievedPassage{{ID: "zz-dense"}}
	lexical := []domain.RetrievedPassage{{ID: "aa-lexical"}}

	fused := fuseRankingsRRF(dense, lexical, 60)
	if len(fused) != 2 {
		t.Fatalf("expected 2 fused passages, got %d", len(fused))
	}
	if fused[0].ID != "zz-dense" {
		t.Fatalf("expected dense branch to win the tie, got first=%s", fused[0].ID)
	}
}

func TestFuseRankingsRRFTieBreakByIDWithinBranch(t *testing.T) {
	dense := []domain.RetrievedPassage{{ID: "b"}}
	other := []domain.RetrievedPassage{{ID: "a"}}

	fused := fuseRankingsRRF(append(dense, other...), nil, 60)
	if fused[0].ID != "b" {
		t.Fatalf("rank order must win over id order, got first=%s", fused[0].ID)
	}

	equalRank := fuseRankingsRRF([]domain.RetrievedPassage{{ID: "b"}, {ID: "a"}}, nil, 60)
	if equalRank[0].ID != "b" || equalRank[1].ID != "a" {
		t.Fatalf("unexpected order: %v", equalRank)
	}
}

func TestFuseRankingsRRFScoreIsRankDerived(t *testing.T) {
	dense := []domain.RetrievedPassage{{ID: "p1", Score: 0.99}}
	lexical := []domain.RetrievedPassage{{ID: "p1", Score: 12.5}}

	fused := fuseRankingsRRF(dense, lexical, 60)
	want := 1.0/61.0 + 1.0/61.0
	if diff := fused[0].Score - want; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("fused score = %v, want %v", fused[0].Score, want)
	}
}

func TestTrimRanking(t *testing.T) {
	passages := []domain.RetrievedPassage{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	if got := trimRanking(passages, 2); len(got) != 2 {
		t.Fatalf("trimRanking(2) kept %d", len(got))
	}
	if got := trimRanking(passages, 0); len(got) != 3 {
		t.Fatalf("trimRanking(0) should keep all, kept %d", len(got))
	}
}
