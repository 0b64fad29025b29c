package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portfolioUC "github.com/khoahotran/portli/internal/application/usecase/portfolio"
)

type PublicHandler struct {
	viewPublicUseCase *portfolioUC.ViewPublicPortfolioUseCase
}

func NewPublicHandler(viewUC *portfolioUC.ViewPublicPortfolioUseCase) *PublicHandler {
	return &PublicHandler{viewPublicUseCase: viewUC}
}

// Show renders the portfolio, or the loading view when it cannot be
// fetched. The public page has no app navbar and no flash.
func (h *PublicHandler) Show(c *gin.Context) {
	username := c.Param("username")
	view, ok := h.viewPublicUseCase.Execute(c.Request.Context(), username, c.Request.Referer())
	if !ok {
		c.HTML(http.StatusOK, "loading", Page{Title: "Loading"})
		return
	}
	c.HTML(http.StatusOK, "public", Page{Title: view.Document.FullName, Data: view})
}
