package tiktoken

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding matches the tokenizer family of the chat models the
// pipeline budgets history for.
const DefaultEncoding = "o200k_base"

// Counter counts BPE tokens for the history budget and telemetry usage
// numbers. The encoding table is loaded once at construction.
type Counter struct {
	encoder *tiktoken.Tiktoken
}

func New(encoding string) (*Counter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	encoder, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", encoding, err)
	}
	return &Counter{encoder: encoder}, nil
}

func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.encoder.Encode(text, nil, nil))
}
