package evalio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

type reportEntry struct {
	Question string   `json:"Question"`
	Answer   string   `json:"Answer"`
	Relevant []string `json:"relevant"`

	Precision       float64 `json:"Precision"`
	Recall          float64 `json:"Recall"`
	F1Score         float64 `json:"F1_Score"`
	CosineSim       float64 `json:"Cosine Similarity"`
	AnswerRelevancy float64 `json:"Answer Relevancy"`
	ReciprocalRank  float64 `json:"Reciprocal Rank"`

	GeneratedAnswer string `json:"Generated Answer,omitempty"`
	Failed          bool   `json:"Failed,omitempty"`
	FailureNote     string `json:"Failure,omitempty"`
}

type reportTrailer struct {
	MRR             float64 `json:"Mean Reciprocal Rank"`
	Scored          int     `json:"scored_entries"`
	NoEntriesScored bool    `json:"no_entries_scored,omitempty"`
}

// WriteReport renders the scored output as a JSON array: one object per
// dataset entry followed by a trailing corpus-level object.
func WriteReport(path string, report *domain.EvaluationReport) error {
	out := make([]any, 0, len(report.Results)+1)
	for _, result := range report.Results {
		out = append(out, reportEntry{
			Question:        result.Entry.Question,
			Answer:          result.Entry.Answer,
			Relevant:        result.Entry.Relevant,
			Precision:       result.Precision,
			Recall:          result.Recall,
			F1Score:         result.F1Score,
			CosineSim:       result.CosineSim,
			AnswerRelevancy: result.AnswerRelevancy,
			ReciprocalRank:  result.ReciprocalRank,
			GeneratedAnswer: result.GeneratedAnswer,
			Failed:          result.Failed,
			FailureNote:     result.FailureNote,
		})
	}
	out = append(out, reportTrailer{
		MRR:             report.MRR,
		Scored:          report.Scored,
		NoEntriesScored: report.NoEntriesScored,
	})

	raw, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
