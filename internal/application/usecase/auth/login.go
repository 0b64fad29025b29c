package auth

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portli/internal/application/service"
	"github.com/khoahotran/portli/internal/domain/account"
	"github.com/khoahotran/portli/internal/domain/session"
	"github.com/khoahotran/portli/pkg/logger"
)

type LoginUseCase struct {
	gateway  account.Gateway
	sessions *session.Provider
	logger   logger.Logger
}

func NewLoginUseCase(gateway account.Gateway, sessions *session.Provider, log logger.Logger) *LoginUseCase {
	return &LoginUseCase{
		gateway:  gateway,
		sessions: sessions,
		logger:   log,
	}
}

func (uc *LoginUseCase) Execute(ctx context.Context, clientID string, form account.LoginForm) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	if msg := form.Validate(); msg != "" {
		return rejected(msg), nil
	}

	res, err := uc.gateway.Login(ctx, form)
	if err != nil {
		span.RecordError(err)
		uc.logger.Warn("Login rejected", zap.String("username", form.Username), zap.Error(err))
		return rejected(service.MessageOf(err, "Login failed. Check credentials.", service.FieldMessage)), nil
	}

	if err := uc.sessions.ClearTokens(ctx, clientID); err != nil {
		return nil, fmt.Errorf("clear old tokens failed: %w", err)
	}
	err = uc.sessions.SignIn(ctx, clientID, session.Session{
		AccessToken:  res.Access,
		RefreshToken: res.Refresh,
		User:         res.User,
	})
	if err != nil {
		return nil, fmt.Errorf("store session failed: %w", err)
	}

	span.SetAttributes(attribute.String("username", res.User.Username))
	return accepted("Login Successful", "/dashboard", RedirectDelay), nil
}
