package domain

// EvaluationEntry is one labeled question from the evaluation dataset.
type EvaluationEntry struct {
	Question string   `json:"Question"`
	Answer   string   `json:"Answer"`
	Relevant []string `json:"relevant"`
}

// EvaluationResult carries the scored metrics for one dataset entry. Failed is
// set instead of metrics when the entry's pipeline run did not complete.
type EvaluationResult struct {
	Entry EvaluationEntry `json:"entry"`

	Precision       float64 `json:"Precision"`
	Recall          float64 `json:"Recall"`
	F1Score         float64 `json:"F1_Score"`
	CosineSim       float64 `json:"Cosine Similarity"`
	AnswerRelevancy float64 `json:"Answer Relevancy"`
	ReciprocalRank  float64 `json:"Reciprocal Rank"`

	GeneratedAnswer string `json:"Generated Answer,omitempty"`

	Failed      bool   `json:"Failed,omitempty"`
	FailureNote string `json:"Failure,omitempty"`
}

// EvaluationReport is the full harness output: one result per entry plus the
// corpus-level mean reciprocal rank over successfully scored entries.
type EvaluationReport struct {
	Results []EvaluationResult `json:"results"`
	MRR     float64            `json:"Mean Reciprocal Rank"`
	Scored  int                `json:"scored_entries"`
	// NoEntriesScored reports the distinct condition where every entry failed;
	// MRR is defined as 0 in that case.
	NoEntriesScored bool `json:"no_entries_scored,omitempty"`
}
