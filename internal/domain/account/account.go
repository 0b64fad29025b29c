package account

import (
	"context"

	"github.com/khoahotran/portli/internal/domain/session"
)

// LoginResult is the backend's login response body.
type LoginResult struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    session.User `json:"user"`
}

// Gateway is the backend surface the auth use cases depend on.
type Gateway interface {
	Login(ctx context.Context, form LoginForm) (*LoginResult, error)
	Register(ctx context.Context, form RegisterForm) error
	VerifyOTP(ctx context.Context, form VerifyOTPForm) error
	ForgotPassword(ctx context.Context, form ForgotPasswordForm) error
	ResetPassword(ctx context.Context, form ResetPasswordForm) error
}
