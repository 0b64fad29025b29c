package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portli/internal/domain/session"
	"github.com/khoahotran/portli/pkg/apperror"
	"github.com/khoahotran/portli/pkg/auth"
	"github.com/khoahotran/portli/pkg/logger"
)

const (
	ClientCookieName = "portli_sid"

	GinContextKeyClientID  = "clientID"
	GinContextKeyRequestID = "requestID"
	HeaderRequestID        = "X-Request-Id"
)

// ClientIDMiddleware binds every request to the opaque id of its browser,
// issuing one on first visit. The id is also put on the request context,
// where the backend client finds the bearer token through it.
func ClientIDMiddleware(secure bool, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(ClientCookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ClientCookieName, id, int(ttl.Seconds()), "/", "", secure, true)
		}

		c.Set(GinContextKeyClientID, id)
		c.Request = c.Request.WithContext(session.WithClientID(c.Request.Context(), id))
		c.Next()
	}
}

func ClientID(c *gin.Context) string {
	return c.GetString(GinContextKeyClientID)
}

func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(GinContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn("Request failed", fields...)
			return
		}
		log.Info("Request handled", fields...)
	}
}

// ErrorMiddleware renders the error page for the last error a handler
// pushed with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status := apperror.ToHTTPStatus(err)

		var appErr *apperror.AppError
		if status >= http.StatusInternalServerError || !errors.As(err, &appErr) {
			log.Error("Request error", err, zap.String("path", c.Request.URL.Path), zap.String("request_id", c.GetString(GinContextKeyRequestID)))
		} else {
			log.Warn("Request rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
		}

		if c.Writer.Written() {
			return
		}
		c.HTML(status, "error", Page{
			Title: http.StatusText(status),
			Data:  errorView{Status: status, Message: apperror.PublicMessage(err)},
		})
	}
}

// RequireSession sends browsers without a stored user to the login page.
// With tokens set, a session whose access token is past its exp claim is
// cleared and treated the same way.
func RequireSession(sessions *session.Provider, tokens *auth.TokenInspector, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := ClientID(c)
		ctx := c.Request.Context()

		s, ok, err := sessions.Load(ctx, clientID)
		if err != nil {
			c.Error(apperror.NewInternal("failed to load session", err))
			c.Abort()
			return
		}

		if ok && tokens != nil && tokens.Expired(s.AccessToken) {
			log.Info("Access token expired, clearing session", zap.String("username", s.User.Username))
			if err := sessions.SignOut(ctx, clientID); err != nil {
				log.Warn("Failed to clear expired session", zap.Error(err))
			}
			ok = false
		}

		if !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
