package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/khoahotran/portli/adapters/http/web"
	"github.com/khoahotran/portli/internal/config"
	"github.com/khoahotran/portli/internal/domain/session"
	"github.com/khoahotran/portli/pkg/auth"
	"github.com/khoahotran/portli/pkg/logger"
)

type Handlers struct {
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Editor    *EditorHandler
	Public    *PublicHandler
	Feed      *FeedHandler
}

// NewRouter wires every route. tokens may be nil, which leaves the guard
// checking session presence only.
func NewRouter(cfg config.Config, log logger.Logger, sessions *session.Provider, tokens *auth.TokenInspector, h Handlers) (*gin.Engine, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	router := gin.New()
	router.HTMLRender = renderer
	router.Use(
		gin.Recovery(),
		otelgin.Middleware("portli-web"),
		RequestLogger(log),
		ErrorMiddleware(log),
	)

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
	router.StaticFS("/static", http.FS(web.Static()))

	app := router.Group("/")
	app.Use(ClientIDMiddleware(cfg.App.CookieSecure, cfg.Session.TTL))
	{
		app.GET("/", h.Auth.LoginPage)
		app.POST("/", h.Auth.Login)
		app.GET("/login", h.Auth.LoginPage)
		app.POST("/login", h.Auth.Login)
		app.GET("/register", h.Auth.RegisterPage)
		app.POST("/register", h.Auth.Register)
		app.GET("/otp-verify", h.Auth.VerifyOTPPage)
		app.POST("/otp-verify", h.Auth.VerifyOTP)
		app.GET("/forgot-password", h.Auth.ForgotPasswordPage)
		app.POST("/forgot-password", h.Auth.ForgotPassword)
		app.GET("/reset-password", h.Auth.ResetPasswordPage)
		app.POST("/reset-password", h.Auth.ResetPassword)
		app.POST("/logout", h.Auth.Logout)

		app.GET("/public/:username", h.Public.Show)
		app.GET("/public/:username/feed.xml", h.Feed.RSS)

		private := app.Group("/")
		private.Use(RequireSession(sessions, tokens, log))
		{
			private.GET("/dashboard", h.Dashboard.Show)
			private.POST("/dashboard/delete", h.Dashboard.Delete)
			private.GET("/edit-portfolio", h.Editor.Open)
			private.POST("/edit-portfolio", h.Editor.Submit)
			private.GET("/create-portfolio", h.Editor.Open)
			private.POST("/create-portfolio", h.Editor.Submit)
		}
	}

	return router, nil
}
