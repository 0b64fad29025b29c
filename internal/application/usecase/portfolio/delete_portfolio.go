package portfolio

import (
	"context"

	"go.uber.org/zap"

	"github.com/khoahotran/portli/internal/domain/portfolio"
	"github.com/khoahotran/portli/pkg/logger"
)

type DeletePortfolioUseCase struct {
	gateway portfolio.Gateway
	logger  logger.Logger
}

func NewDeletePortfolioUseCase(gateway portfolio.Gateway, log logger.Logger) *DeletePortfolioUseCase {
	return &DeletePortfolioUseCase{gateway: gateway, logger: log}
}

// Execute deletes by canonical id. An empty id is a no-op and makes no
// backend call. It reports whether the portfolio is now gone.
func (uc *DeletePortfolioUseCase) Execute(ctx context.Context, id portfolio.ID) (bool, error) {
	ctx, span := tracer.Start(ctx, "DeletePortfolio")
	defer span.End()

	if id.IsZero() {
		return false, nil
	}
	if err := uc.gateway.DeletePortfolio(ctx, id); err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to delete portfolio", err, zap.String("portfolio_id", id.String()))
		return false, err
	}
	return true, nil
}
