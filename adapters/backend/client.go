package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/khoahotran/portli/internal/application/service"
	"github.com/khoahotran/portli/internal/config"
	"github.com/khoahotran/portli/pkg/apperror"
	"github.com/khoahotran/portli/pkg/logger"
)

const (
	PathLogin           = "/login/"
	PathRegister        = "/register/"
	PathVerifyOTP       = "/verify-otp/"
	PathForgotPassword  = "/forgot-password/"
	PathResetPassword   = "/reset-password/"
	PathUserPortfolio   = "portfolio/user/"
	PathSavePortfolio   = "portfolio/save/"
	pathDeletePortfolio = "portfolio/%s/delete/"
	pathPublicPortfolio = "/api/portfolio/public/%s/"
)

// Paths that never carry the bearer token.
var anonymousPaths = []string{PathLogin, PathRegister}

// TokenSource yields the access token of the browser bound to ctx.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, bool)
}

// Client is the single configuration point for calls to the portfolio
// backend. It does not retry and has no refresh flow: every non-2xx answer
// comes back to the caller as an upstream error wrapping *service.APIError.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  logger.Logger
}

func NewClient(cfg config.Config, tokens TokenSource, log logger.Logger) *Client {
	httpClient := &http.Client{
		Timeout:   cfg.Backend.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.Backend.BaseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		logger:  log,
	}
}

var tracer = otel.Tracer("backend_client")

// URL drops leading slashes from path and appends the rest to the base URL.
func (c *Client) URL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func requiresToken(path string) bool {
	p := "/" + strings.TrimLeft(path, "/")
	for _, anon := range anonymousPaths {
		if strings.Contains(p, anon) {
			return false
		}
	}
	return true
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, span := tracer.Start(ctx, method+" "+path)
	defer span.End()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperror.NewInternal("failed to encode request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return apperror.NewInternal("failed to build backend request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if requiresToken(path) && c.tokens != nil {
		if token, ok := c.tokens.AccessToken(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return apperror.NewUpstream(fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.NewUpstream("failed to read backend response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := service.NewAPIError(resp.StatusCode, respBody)
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		c.logger.Debug("backend returned an error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return apperror.NewUpstream(fmt.Sprintf("%s %s", method, path), apiErr)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return apperror.NewUpstream("backend response is not valid JSON", err)
	}
	return nil
}

func deletePortfolioPath(id string) string {
	return fmt.Sprintf(pathDeletePortfolio, url.PathEscape(id))
}

func publicPortfolioPath(username string) string {
	return fmt.Sprintf(pathPublicPortfolio, url.PathEscape(username))
}
