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

type RegisterUseCase struct {
	gateway  account.Gateway
	sessions *session.Provider
	logger   logger.Logger
}

func NewRegisterUseCase(gateway account.Gateway, sessions *session.Provider, log logger.Logger) *RegisterUseCase {
	return &RegisterUseCase{gateway: gateway, sessions: sessions, logger: log}
}

// Execute registers the account and hands the email on to OTP verification.
func (uc *RegisterUseCase) Execute(ctx context.Context, clientID string, form account.RegisterForm) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "Register")
	defer span.End()

	if msg := form.Validate(); msg != "" {
		return rejected(msg), nil
	}

	if err := uc.gateway.Register(ctx, form); err != nil {
		span.RecordError(err)
		uc.logger.Warn("Registration rejected", zap.String("username", form.Username), zap.Error(err))
		return rejected(service.MessageOf(err, "Registration failed", service.FieldMessage)), nil
	}

	if err := uc.sessions.SetNavState(ctx, clientID, session.NavState{Email: form.Email}); err != nil {
		return nil, fmt.Errorf("store navigation state failed: %w", err)
	}
	return accepted("Registration Successful", "/otp-verify", RedirectDelay), nil
}
