package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one message in a session's history. The sequence is
// append-only and owned by a single orchestrator instance.
type ConversationTurn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

type Classification string

const (
	ClassMachine   Classification = "machine"
	ClassSociety   Classification = "society"
	ClassLocation  Classification = "location"
	ClassObject    Classification = "object"
	ClassCharacter Classification = "character"
	ClassOther     Classification = "other"
)

// Classifications lists the canonical labels in prompt order.
var Classifications = []Classification{
	ClassMachine,
	ClassSociety,
	ClassLocation,
	ClassObject,
	ClassCharacter,
	ClassOther,
}

func (c Classification) Known() bool {
	for _, known := range Classifications {
		if c == known {
			return true
		}
	}
	return false
}

// RewrittenQuery is the canonical output of the reword stage. Immutable after
// creation.
type RewrittenQuery struct {
	Classification Classification `json:"classification"`
	Query          string         `json:"query"`
}

// RetrievedPassage is one indexed lore passage returned by search. Identity is
// ID. After fusion, Score is rank-derived and not comparable across runs.
type RetrievedPassage struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Answer is the final grounded response for one turn.
type Answer struct {
	Text     string             `json:"text"`
	Rewrite  RewrittenQuery     `json:"rewrite"`
	Passages []RetrievedPassage `json:"passages"`
}

// Rating values for user feedback. RatingUnset marks a row whose feedback has
// not arrived yet.
const (
	RatingUnset    = -2
	RatingInvalid  = -1
	RatingNegative = 0
	RatingPositive = 1
)

// TelemetryRecord is one row of the per-query usage log, created when a turn
// completes and amended at most with a rating afterwards.
type TelemetryRecord struct {
	Timestamp      time.Time      `json:"timestamp"`
	UsedTokens     int            `json:"used_tokens"`
	RewordTime     time.Duration  `json:"reword_time"`
	RAGTime        time.Duration  `json:"rag_time"`
	GenerationTime time.Duration  `json:"generation_time"`
	FullTime       time.Duration  `json:"full_response_time"`
	Classification Classification `json:"query_classification"`
	QueryCount     int            `json:"query_cnt"`
	Rating         int            `json:"rating"`
}

// UsageSummary aggregates telemetry rows for the dashboard boundary.
type UsageSummary struct {
	Queries         int           `json:"queries"`
	TotalTokens     int           `json:"total_tokens"`
	MeanFullTime    time.Duration `json:"mean_full_response_time"`
	PositiveRatings int           `json:"positive_ratings"`
	NegativeRatings int           `json:"negative_ratings"`
}
