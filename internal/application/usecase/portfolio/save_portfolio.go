package portfolio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/khoahotran/portli/internal/domain/portfolio"
	"github.com/khoahotran/portli/pkg/logger"
)

type SavePortfolioUseCase struct {
	gateway portfolio.Gateway
	logger  logger.Logger
	group   singleflight.Group
}

func NewSavePortfolioUseCase(gateway portfolio.Gateway, log logger.Logger) *SavePortfolioUseCase {
	return &SavePortfolioUseCase{gateway: gateway, logger: log}
}

// Execute posts the whole document, overwriting whatever the backend has.
// Overlapping saves of the same document from the same browser share one
// backend call; a different document always gets its own.
func (uc *SavePortfolioUseCase) Execute(ctx context.Context, clientID string, doc *portfolio.Document) (*portfolio.Document, error) {
	ctx, span := tracer.Start(ctx, "SavePortfolio")
	defer span.End()

	key, err := saveKey(clientID, doc)
	if err != nil {
		return nil, err
	}

	v, err, shared := uc.group.Do(key, func() (any, error) {
		return uc.gateway.SavePortfolio(ctx, doc)
	})
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to save portfolio", err, zap.String("username", doc.Username))
		return nil, err
	}
	if shared {
		uc.logger.Debug("Duplicate save collapsed", zap.String("client_id", clientID))
	}
	saved, _ := v.(*portfolio.Document)
	return saved, nil
}

func saveKey(clientID string, doc *portfolio.Document) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode portfolio for save failed: %w", err)
	}
	sum := sha256.Sum256(payload)
	return clientID + ":" + hex.EncodeToString(sum[:]), nil
}
