package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

type sinkSpy struct {
	appends int
	amends  int
	closed  bool
	err     error
}

func (s *sinkSpy) Append(context.Context, string, domain.TelemetryRecord) error {
	s.appends++
	return s.err
}

func (s *sinkSpy) AmendRating(context.Context, string, int) error {
	s.amends++
	return s.err
}

func (s *sinkSpy) Close() error {
	s.closed = true
	return s.err
}

func TestFanoutForwardsToAllSinks(t *testing.T) {
	first := &sinkSpy{}
	second := &sinkSpy{}
	fanout := NewFanout(first, nil, second)

	if err := fanout.Append(context.Background(), "turn-1", domain.TelemetryRecord{}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := fanout.AmendRating(context.Background(), "turn-1", domain.RatingPositive); err != nil {
		t.Fatalf("AmendRating() error = %v", err)
	}
	if err := fanout.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	for i, spy := range []*sinkSpy{first, second} {
		if spy.appends != 1 || spy.amends != 1 || !spy.closed {
			t.Fatalf("sink %d not fully forwarded: %+v", i, spy)
		}
	}
}

func TestFanoutFailingSinkDoesNotStarveOthers(t *testing.T) {
	broken := &sinkSpy{err: errors.New("disk full")}
	healthy := &sinkSpy{}
	fanout := NewFanout(broken, healthy)

	err := fanout.Append(context.Background(), "turn-1", domain.TelemetryRecord{})
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if healthy.appends != 1 {
		t.Fatalf("healthy sink skipped after failing sink")
	}
}
