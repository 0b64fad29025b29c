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

type ResetPasswordUseCase struct {
	gateway  account.Gateway
	sessions *session.Provider
	logger   logger.Logger
}

func NewResetPasswordUseCase(gateway account.Gateway, sessions *session.Provider, log logger.Logger) *ResetPasswordUseCase {
	return &ResetPasswordUseCase{gateway: gateway, sessions: sessions, logger: log}
}

func (uc *ResetPasswordUseCase) Execute(ctx context.Context, clientID string, form account.ResetPasswordForm) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "ResetPassword")
	defer span.End()

	if msg := form.Validate(); msg != "" {
		return rejected(msg), nil
	}

	nav, err := uc.sessions.NavState(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("read navigation state failed: %w", err)
	}
	form.Email = nav.Email

	if err := uc.gateway.ResetPassword(ctx, form); err != nil {
		span.RecordError(err)
		uc.logger.Warn("Password reset rejected", zap.String("email", form.Email), zap.Error(err))
		return rejected(service.MessageOf(err, "Failed to reset password. Try again.", service.FieldError, service.FieldMessage)), nil
	}
	return accepted("Password Reset Successful", "/login", ResetRedirectDelay), nil
}
