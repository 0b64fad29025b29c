package portfolio

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/portli/internal/domain/portfolio"
	"github.com/khoahotran/portli/internal/domain/session"
	"github.com/khoahotran/portli/pkg/logger"
)

type OpenEditorUseCase struct {
	gateway  portfolio.Gateway
	sessions *session.Provider
	logger   logger.Logger
}

func NewOpenEditorUseCase(gateway portfolio.Gateway, sessions *session.Provider, log logger.Logger) *OpenEditorUseCase {
	return &OpenEditorUseCase{gateway: gateway, sessions: sessions, logger: log}
}

// Execute starts a fresh working copy from the backend, or from the default
// document when the fetch fails or there is nothing to fetch.
func (uc *OpenEditorUseCase) Execute(ctx context.Context, clientID string) (*portfolio.Document, error) {
	ctx, span := tracer.Start(ctx, "OpenEditor")
	defer span.End()

	doc, err := uc.gateway.GetUserPortfolio(ctx)
	if err != nil {
		span.RecordError(err)
		uc.logger.Warn("Failed to fetch portfolio for editing, starting from defaults", zap.Error(err))
	}
	if err != nil || !doc.Exists() {
		doc = portfolio.Default()
	}
	// the theme picker only offers known themes
	doc.Layout.Theme, _ = portfolio.ResolveTheme(doc.Layout.Theme)

	if err := uc.sessions.SaveDraft(ctx, clientID, doc); err != nil {
		return nil, fmt.Errorf("store editor draft failed: %w", err)
	}
	return doc, nil
}
