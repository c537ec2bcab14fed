package csvlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

// header is fixed and written exactly once, when the file is first created.
const header = "timestamp, used_tokens, reword_time, rag_time, generation_time, full_response_time, query_classification, query_cnt, rating"

// Sink appends telemetry rows to a CSV file. The most recent row stays open
// in memory until the next append or until close, so a late feedback rating
// can still be merged into it. Earlier rows are immutable.
type Sink struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer

	openTurnID string
	openRecord domain.TelemetryRecord
	hasOpen    bool
}

func NewSink(path string) (*Sink, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open telemetry log: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat telemetry log: %w", err)
	}
	if info.Size() == 0 {
		if _, err := file.WriteString(header + "\n"); err != nil {
			file.Close()
			return nil, fmt.Errorf("write telemetry header: %w", err)
		}
	}

	return &Sink{
		file:   file,
		writer: csv.NewWriter(file),
	}, nil
}

func (s *Sink) Append(_ context.Context, turnID string, record domain.TelemetryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finalizeOpenLocked(); err != nil {
		return err
	}
	s.openTurnID = turnID
	s.openRecord = record
	s.hasOpen = true
	return nil
}

// AmendRating merges a rating into the still-open row. A handle that no
// longer matches the open row means the row was already finalized; the
// amendment is dropped rather than rewriting history.
func (s *Sink) AmendRating(_ context.Context, turnID string, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasOpen || s.openTurnID != turnID {
		return nil
	}
	s.openRecord.Rating = rating
	return nil
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finalizeOpenLocked(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

func (s *Sink) finalizeOpenLocked() error {
	if !s.hasOpen {
		return nil
	}
	if err := s.writer.Write(formatRow(s.openRecord)); err != nil {
		return fmt.Errorf("write telemetry row: %w", err)
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("flush telemetry row: %w", err)
	}
	s.hasOpen = false
	s.openTurnID = ""
	return nil
}

func formatRow(record domain.TelemetryRecord) []string {
	return []string{
		record.Timestamp.Format(time.RFC3339),
		strconv.Itoa(record.UsedTokens),
		formatSeconds(record.RewordTime),
		formatSeconds(record.RAGTime),
		formatSeconds(record.GenerationTime),
		formatSeconds(record.FullTime),
		string(record.Classification),
		strconv.Itoa(record.QueryCount),
		formatRating(record.Rating),
	}
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

// An unrated row keeps an empty rating cell so downstream aggregation can
// tell "no feedback" apart from a zero (negative) rating.
func formatRating(rating int) string {
	if rating == domain.RatingUnset {
		return ""
	}
	return strconv.Itoa(rating)
}
