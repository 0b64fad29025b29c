package session

import (
	"context"
	"encoding/json"
)

// Storage keys. All of them live in the namespace of one browser.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
	KeyFlash        = "flash"
	KeyNavState     = "navState"
	KeyEditorDraft  = "editorDraft"
)

// Storage is the persistent key-value store behind each browser.
type Storage interface {
	Get(ctx context.Context, clientID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, clientID, key, value string) error
	Remove(ctx context.Context, clientID string, keys ...string) error
}

// User is the profile the backend returned at login. Raw keeps the body
// verbatim; Username is parsed out of it for display and links.
type User struct {
	Username string
	Raw      json.RawMessage
}

func (u *User) UnmarshalJSON(data []byte) error {
	var probe struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	u.Username = probe.Username
	u.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	if len(u.Raw) == 0 {
		return json.Marshal(map[string]string{"username": u.Username})
	}
	return u.Raw, nil
}

// DisplayName is what the dashboard greets with.
func (u User) DisplayName() string {
	if u.Username == "" {
		return "User"
	}
	return u.Username
}

// Session is the credential bundle held for a signed-in browser.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         User
}

type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
)

type Event struct {
	Kind     EventKind
	ClientID string
	Username string
}

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// NavState is data handed from one view to the next, like the email the
// register form passes on to OTP verification.
type NavState struct {
	Email string `json:"email"`
}

type ctxKey struct{}

func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, clientID)
}

func ClientIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
