package telemetry

import (
	"context"
	"errors"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
	"github.com/gaiachat/horizon-rag/internal/core/ports"
)

// Fanout forwards every telemetry operation to all configured sinks. The CSV
// log is the sink of record; Postgres and NATS mirrors are optional. Every
// sink sees every call even when an earlier one fails.
type Fanout struct {
	sinks []ports.TelemetrySink
}

func NewFanout(sinks ...ports.TelemetrySink) *Fanout {
	out := make([]ports.TelemetrySink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			out = append(out, sink)
		}
	}
	return &Fanout{sinks: out}
}

func (f *Fanout) Append(ctx context.Context, turnID string, record domain.TelemetryRecord) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Append(ctx, turnID, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) AmendRating(ctx context.Context, turnID string, rating int) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.AmendRating(ctx, turnID, rating); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) Close() error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
