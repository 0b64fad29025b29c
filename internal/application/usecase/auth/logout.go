package auth

import (
	"context"

	"github.com/khoahotran/portli/internal/domain/session"
)

type LogoutUseCase struct {
	sessions *session.Provider
}

func NewLogoutUseCase(sessions *session.Provider) *LogoutUseCase {
	return &LogoutUseCase{sessions: sessions}
}

// Execute drops the user record and both tokens together. No backend call.
func (uc *LogoutUseCase) Execute(ctx context.Context, clientID string) error {
	ctx, span := tracer.Start(ctx, "Logout")
	defer span.End()
	return uc.sessions.SignOut(ctx, clientID)
}
