package portfolio

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/portli/internal/application/service"
	"github.com/khoahotran/portli/internal/domain/portfolio"
	"github.com/khoahotran/portli/pkg/apperror"
	"github.com/khoahotran/portli/pkg/logger"
)

type PortfolioFeedUseCase struct {
	gateway portfolio.Gateway
	logger  logger.Logger
	now     func() time.Time
}

func NewPortfolioFeedUseCase(gateway portfolio.Gateway, log logger.Logger) *PortfolioFeedUseCase {
	return &PortfolioFeedUseCase{
		gateway: gateway,
		logger:  log,
		now:     time.Now,
	}
}

// Execute builds the project feed of a public portfolio. pageURL is the
// absolute URL of the public page the feed links back to.
func (uc *PortfolioFeedUseCase) Execute(ctx context.Context, username, pageURL string) (*feeds.Feed, error) {
	ctx, span := tracer.Start(ctx, "PortfolioFeed")
	defer span.End()

	doc, err := uc.gateway.GetPublicPortfolio(ctx, username)
	if err != nil {
		span.RecordError(err)
		if service.StatusOf(err) == http.StatusNotFound {
			return nil, apperror.NewNotFound("portfolio", username)
		}
		return nil, err
	}

	now := uc.now()
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s - Projects", displayName(doc, username)),
		Link:        &feeds.Link{Href: pageURL},
		Description: doc.ShortBio,
		Author:      &feeds.Author{Name: displayName(doc, username), Email: doc.Email},
		Created:     now,
	}

	for i, p := range doc.Projects {
		if p.Title == "" {
			continue
		}
		link := p.LiveLink
		if link == "" {
			link = p.RepoLink
		}
		if link == "" {
			link = pageURL + "#projects"
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          fmt.Sprintf("%s#project-%d", pageURL, i),
			Title:       p.Title,
			Link:        &feeds.Link{Href: link},
			Description: p.Description,
			Content:     p.TechStack,
			Created:     now,
		})
	}

	uc.logger.Debug("Portfolio feed generated", zap.String("username", username), zap.Int("item_count", len(feed.Items)))
	return feed, nil
}

func displayName(doc *portfolio.Document, username string) string {
	if doc.FullName != "" {
		return doc.FullName
	}
	return username
}
