package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/portli/internal/application/service"
	"github.com/khoahotran/portli/internal/domain/account"
	"github.com/khoahotran/portli/internal/domain/session"
	"github.com/khoahotran/portli/pkg/logger"
)

type ForgotPasswordUseCase struct {
	gateway  account.Gateway
	sessions *session.Provider
	logger   logger.Logger
}

func NewForgotPasswordUseCase(gateway account.Gateway, sessions *session.Provider, log logger.Logger) *ForgotPasswordUseCase {
	return &ForgotPasswordUseCase{gateway: gateway, sessions: sessions, logger: log}
}

// Execute asks for a reset code. Unlike the other forms a backend failure
// also navigates, back to the login page.
func (uc *ForgotPasswordUseCase) Execute(ctx context.Context, clientID string, form account.ForgotPasswordForm) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "ForgotPassword")
	defer span.End()

	if msg := form.Validate(); msg != "" {
		return rejected(msg), nil
	}

	if err := uc.gateway.ForgotPassword(ctx, form); err != nil {
		span.RecordError(err)
		uc.logger.Warn("Password reset request rejected", zap.String("email", form.Email), zap.Error(err))
		out := rejected(service.MessageOf(err, "Email not registered. Try again.", service.FieldError, service.FieldMessage))
		out.Next = "/login"
		out.Delay = RedirectDelay
		return out, nil
	}

	if err := uc.sessions.SetNavState(ctx, clientID, session.NavState{Email: form.Email}); err != nil {
		return nil, fmt.Errorf("store navigation state failed: %w", err)
	}
	return accepted("Password reset OTP sent", "/reset-password", RedirectDelay), nil
}
