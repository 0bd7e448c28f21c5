package combatlog

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/wowtools/internal/config"
)

// Service answers usage-table requests from a report Source.
type Service struct {
	source      Source
	consumables []Consumable
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewService creates a Service tracking the default consumables.
func NewService(source Source, logger *slog.Logger, tp trace.TracerProvider) *Service {
	return &Service{
		source:      source,
		consumables: DefaultConsumables(),
		logger:      logger,
		tracer:      tp.Tracer("github.com/jensholdgaard/wowtools/internal/combatlog"),
	}
}

// NewSourceFromConfig picks the fixture or GraphQL source.
func NewSourceFromConfig(cfg config.LogsConfig) Source {
	if cfg.Mode == "graphql" {
		return NewGraphQLSource(cfg.Endpoint, cfg.Token, cfg.Timeout)
	}
	return FixtureSource{Path: cfg.FixturePath}
}

// Consumables returns the tracked columns.
func (s *Service) Consumables() []Consumable { return s.consumables }

// UsageTable is a report header plus its usage rows.
type UsageTable struct {
	Code        string       `json:"code"`
	Title       string       `json:"title"`
	Guild       string       `json:"guild"`
	Owner       string       `json:"owner"`
	Consumables []Consumable `json:"consumables"`
	Rows        []UsageRow   `json:"rows"`
}

// Usage fetches a report and tallies consumable use.
func (s *Service) Usage(ctx context.Context, code string) (*UsageTable, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Usage",
		trace.WithAttributes(attribute.String("report_code", code)),
	)
	defer span.End()

	r, err := s.source.Report(ctx, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetching report")
		s.logger.ErrorContext(ctx, "fetching report failed",
			slog.String("report_code", code),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("fetching report %s: %w", code, err)
	}

	rows := Usage(r, s.consumables)
	span.SetAttributes(attribute.Int("rows", len(rows)))

	return &UsageTable{
		Code:        code,
		Title:       r.Title,
		Guild:       r.Guild.Name,
		Owner:       r.Owner.Name,
		Consumables: s.consumables,
		Rows:        rows,
	}, nil
}
