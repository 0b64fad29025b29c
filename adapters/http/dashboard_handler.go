package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portfolioUC "github.com/khoahotran/portli/internal/application/usecase/portfolio"
	"github.com/khoahotran/portli/internal/domain/portfolio"
	"github.com/khoahotran/portli/internal/domain/session"
	"github.com/khoahotran/portli/pkg/logger"
)

type DashboardHandler struct {
	getDashboardUseCase    *portfolioUC.GetDashboardUseCase
	deletePortfolioUseCase *portfolioUC.DeletePortfolioUseCase
	pages                  pages
}

func NewDashboardHandler(
	getUC *portfolioUC.GetDashboardUseCase,
	deleteUC *portfolioUC.DeletePortfolioUseCase,
	sessions *session.Provider,
	log logger.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		getDashboardUseCase:    getUC,
		deletePortfolioUseCase: deleteUC,
		pages:                  pages{sessions: sessions, logger: log},
	}
}

func (h *DashboardHandler) Show(c *gin.Context) {
	out, err := h.getDashboardUseCase.Execute(c.Request.Context(), ClientID(c))
	if err != nil {
		c.Error(err)
		return
	}
	h.pages.render(c, http.StatusOK, "dashboard", "Dashboard", out, nil)
}

// Delete always lands back on the dashboard, which shows whatever the
// backend now holds. A failed delete is only logged.
func (h *DashboardHandler) Delete(c *gin.Context) {
	id := portfolio.ID(c.PostForm("id"))
	_, _ = h.deletePortfolioUseCase.Execute(c.Request.Context(), id)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}
