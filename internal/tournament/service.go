// Package tournament implements the round lifecycle of a shotgun-start
// tournament: starting, activating and scoring team and player rounds,
// ending them, and ranking the results.
package tournament

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/antigravity/tournamentRounds/internal/errors"
	"github.com/antigravity/tournamentRounds/internal/store"
)

const instrumentationName = "github.com/antigravity/tournamentRounds/internal/tournament"

// Service runs lifecycle operations against a round store. Each operation is
// one store transaction.
type Service struct {
	store  *store.Store
	tracer trace.Tracer
}

// NewService returns a Service backed by st. Spans go to the global tracer
// provider.
func NewService(st *store.Store) *Service {
	return &Service{
		store:  st,
		tracer: otel.Tracer(instrumentationName),
	}
}

// Ping reports whether the underlying store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.code", string(apperrors.CodeOf(err))))
	}
	span.End()
}

func tournamentAttr(name string) attribute.KeyValue {
	return attribute.String("tournament.name", name)
}

func requireName(kind, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.InvalidArgument(kind + " name is required")
	}
	return nil
}
