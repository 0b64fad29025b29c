package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	portfolioUC "github.com/khoahotran/portli/internal/application/usecase/portfolio"
	"github.com/khoahotran/portli/pkg/logger"
)

type FeedHandler struct {
	feedUseCase *portfolioUC.PortfolioFeedUseCase
	logger      logger.Logger
}

func NewFeedHandler(uc *portfolioUC.PortfolioFeedUseCase, log logger.Logger) *FeedHandler {
	return &FeedHandler{
		feedUseCase: uc,
		logger:      log,
	}
}

func (h *FeedHandler) RSS(c *gin.Context) {
	username := c.Param("username")

	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	pageURL := fmt.Sprintf("%s://%s/public/%s", scheme, c.Request.Host, username)

	feed, err := h.feedUseCase.Execute(c.Request.Context(), username, pageURL)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	if err := feed.WriteRss(c.Writer); err != nil {
		h.logger.Error("Failed to write RSS feed to response", err)
	}
}
