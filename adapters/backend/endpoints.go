package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/khoahotran/portli/internal/application/service"
	"github.com/khoahotran/portli/internal/domain/account"
	"github.com/khoahotran/portli/internal/domain/portfolio"
	"github.com/khoahotran/portli/pkg/apperror"
)

var _ service.Backend = (*Client)(nil)

func (c *Client) Login(ctx context.Context, form account.LoginForm) (*account.LoginResult, error) {
	var out account.LoginResult
	if err := c.do(ctx, http.MethodPost, PathLogin, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, form account.RegisterForm) error {
	return c.do(ctx, http.MethodPost, PathRegister, form, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, form account.VerifyOTPForm) error {
	return c.do(ctx, http.MethodPost, PathVerifyOTP, form, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, form account.ForgotPasswordForm) error {
	return c.do(ctx, http.MethodPost, PathForgotPassword, form, nil)
}

func (c *Client) ResetPassword(ctx context.Context, form account.ResetPasswordForm) error {
	return c.do(ctx, http.MethodPost, PathResetPassword, form, nil)
}

// GetUserPortfolio returns nil without error when the backend answers with
// an empty body.
func (c *Client) GetUserPortfolio(ctx context.Context) (*portfolio.Document, error) {
	return c.getDocument(ctx, PathUserPortfolio)
}

func (c *Client) SavePortfolio(ctx context.Context, doc *portfolio.Document) (*portfolio.Document, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, PathSavePortfolio, doc, &raw); err != nil {
		return nil, err
	}
	return decodeDocument(raw)
}

func (c *Client) DeletePortfolio(ctx context.Context, id portfolio.ID) error {
	if id.IsZero() {
		return apperror.NewInvalidInput("portfolio id is empty", nil)
	}
	return c.do(ctx, http.MethodDelete, deletePortfolioPath(id.String()), nil, nil)
}

func (c *Client) GetPublicPortfolio(ctx context.Context, username string) (*portfolio.Document, error) {
	doc, err := c.getDocument(ctx, publicPortfolioPath(username))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperror.NewNotFound("portfolio", username)
	}
	return doc, nil
}

func (c *Client) getDocument(ctx context.Context, path string) (*portfolio.Document, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return decodeDocument(raw)
}

func decodeDocument(raw json.RawMessage) (*portfolio.Document, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("{}")) {
		return nil, nil
	}
	doc := &portfolio.Document{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, apperror.NewUpstream("portfolio document is malformed", err)
	}
	doc.Normalize()
	return doc, nil
}
