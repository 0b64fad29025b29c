package portfolio

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portli/internal/domain/analytics"
	"github.com/khoahotran/portli/internal/domain/portfolio"
	"github.com/khoahotran/portli/pkg/logger"
)

type ViewPublicPortfolioUseCase struct {
	gateway   portfolio.Gateway
	publisher analytics.Publisher
	logger    logger.Logger
	now       func() time.Time
}

func NewViewPublicPortfolioUseCase(gateway portfolio.Gateway, publisher analytics.Publisher, log logger.Logger) *ViewPublicPortfolioUseCase {
	return &ViewPublicPortfolioUseCase{
		gateway:   gateway,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

type PublicView struct {
	Document   *portfolio.Document
	Theme      portfolio.Theme
	Visibility portfolio.Visibility
	Nav        []portfolio.NavEntry
	Year       int
}

// Execute returns ok=false when the page cannot be shown yet. The caller
// keeps the visitor on the loading view; there is no error page.
func (uc *ViewPublicPortfolioUseCase) Execute(ctx context.Context, username, referrer string) (*PublicView, bool) {
	ctx, span := tracer.Start(ctx, "ViewPublicPortfolio")
	defer span.End()
	span.SetAttributes(attribute.String("username", username))

	doc, err := uc.gateway.GetPublicPortfolio(ctx, username)
	if err != nil {
		span.RecordError(err)
		uc.logger.Warn("Failed to fetch public portfolio", zap.String("username", username), zap.Error(err))
		return nil, false
	}

	theme, known := portfolio.ResolveTheme(doc.Layout.Theme)
	if !known {
		uc.logger.Warn("Unknown theme, using default",
			zap.String("username", username),
			zap.String("theme", string(doc.Layout.Theme)),
		)
	}

	vis := portfolio.VisibilityOf(doc)
	now := uc.now()

	if uc.publisher != nil {
		ev := analytics.ViewEvent{Username: username, ViewedAt: now.UTC(), Referrer: referrer}
		if err := uc.publisher.PublishView(ctx, ev); err != nil {
			uc.logger.Warn("Failed to publish view event", zap.String("username", username), zap.Error(err))
		}
	}

	return &PublicView{
		Document:   doc,
		Theme:      theme,
		Visibility: vis,
		Nav:        vis.Nav(),
		Year:       now.Year(),
	}, true
}
