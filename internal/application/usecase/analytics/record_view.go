package analytics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/portli/internal/domain/analytics"
	"github.com/khoahotran/portli/pkg/apperror"
	"github.com/khoahotran/portli/pkg/logger"
)

var tracer = otel.Tracer("analytics_usecase")

type RecordViewUseCase struct {
	repo    analytics.Repository
	counter analytics.Counter
	logger  logger.Logger
}

// NewRecordViewUseCase accepts a nil counter; only the daily rows are kept then.
func NewRecordViewUseCase(repo analytics.Repository, counter analytics.Counter, log logger.Logger) *RecordViewUseCase {
	return &RecordViewUseCase{repo: repo, counter: counter, logger: log}
}

// Execute adds one view to the day row and to the running total.
func (uc *RecordViewUseCase) Execute(ctx context.Context, ev analytics.ViewEvent) error {
	ctx, span := tracer.Start(ctx, "RecordView")
	defer span.End()
	span.SetAttributes(attribute.String("username", ev.Username))

	if ev.Username == "" {
		return apperror.NewInvalidInput("view event without username", nil)
	}
	if ev.ViewedAt.IsZero() {
		return apperror.NewInvalidInput("view event without timestamp", nil)
	}

	if err := uc.repo.IncrementDaily(ctx, ev.Username, analytics.Day(ev.ViewedAt)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("increment daily views failed: %w", err)
	}
	if uc.counter == nil {
		return nil
	}
	if err := uc.counter.Increment(ctx, ev.Username); err != nil {
		span.RecordError(err)
		return fmt.Errorf("increment view counter failed: %w", err)
	}
	return nil
}
