package evalio

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

// The dataset file is a JSON array of labeled questions. Each entry lists its
// relevant passages as single-key objects mapping passage id to passage text;
// only the ids matter for scoring.
type rawEntry struct {
	Question string              `json:"Question"`
	Answer   string              `json:"Answer"`
	Relevant []map[string]string `json:"relevant"`
}

func ReadDataset(path string) ([]domain.EvaluationEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var rawEntries []rawEntry
	if err := json.Unmarshal(raw, &rawEntries); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	entries := make([]domain.EvaluationEntry, 0, len(rawEntries))
	for i, item := range rawEntries {
		if item.Question == "" {
			return nil, fmt.Errorf("dataset entry %d: missing Question", i)
		}
		entry := domain.EvaluationEntry{
			Question: item.Question,
			Answer:   item.Answer,
			Relevant: make([]string, 0, len(item.Relevant)),
		}
		for _, passage := range item.Relevant {
			if id := firstKey(passage); id != "" {
				entry.Relevant = append(entry.Relevant, id)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func firstKey(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys[0]
}
