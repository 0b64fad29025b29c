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

type VerifyOTPUseCase struct {
	gateway  account.Gateway
	sessions *session.Provider
	logger   logger.Logger
}

func NewVerifyOTPUseCase(gateway account.Gateway, sessions *session.Provider, log logger.Logger) *VerifyOTPUseCase {
	return &VerifyOTPUseCase{gateway: gateway, sessions: sessions, logger: log}
}

// Execute sends the code together with the email carried over from
// registration. A missing email is sent as empty, the backend decides.
func (uc *VerifyOTPUseCase) Execute(ctx context.Context, clientID string, form account.VerifyOTPForm) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "VerifyOTP")
	defer span.End()

	if msg := form.Validate(); msg != "" {
		return rejected(msg), nil
	}

	nav, err := uc.sessions.NavState(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("read navigation state failed: %w", err)
	}
	form.Email = nav.Email

	if err := uc.gateway.VerifyOTP(ctx, form); err != nil {
		span.RecordError(err)
		uc.logger.Warn("OTP verification rejected", zap.String("email", form.Email), zap.Error(err))
		return rejected(service.MessageOf(err, "OTP verification failed", service.FieldError, service.FieldMessage)), nil
	}
	return accepted("OTP Verified", "/login", RedirectDelay), nil
}
