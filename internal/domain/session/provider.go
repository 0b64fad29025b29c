package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/khoahotran/portli/internal/domain/portfolio"
)

// Provider owns every read and write of a browser's storage. Handlers go
// through it instead of touching keys, and subscribers hear about sign-in
// and sign-out.
type Provider struct {
	storage Storage

	mu          sync.RWMutex
	nextID      int
	subscribers map[int]func(Event)
}

func NewProvider(storage Storage) *Provider {
	return &Provider{
		storage:     storage,
		subscribers: make(map[int]func(Event)),
	}
}

// Subscribe registers fn for session events and returns a func that
// removes it. fn runs synchronously on the writer's goroutine.
func (p *Provider) Subscribe(fn func(Event)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subscribers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

func (p *Provider) notify(ev Event) {
	p.mu.RLock()
	subs := make([]func(Event), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Load returns the session for clientID. ok is false when no user record is
// stored, which is the only thing the guard checks.
func (p *Provider) Load(ctx context.Context, clientID string) (*Session, bool, error) {
	rawUser, ok, err := p.storage.Get(ctx, clientID, KeyUser)
	if err != nil {
		return nil, false, fmt.Errorf("read session user: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	s := &Session{}
	if err := json.Unmarshal([]byte(rawUser), &s.User); err != nil {
		return nil, false, fmt.Errorf("decode session user: %w", err)
	}
	if s.AccessToken, _, err = p.storage.Get(ctx, clientID, KeyAccessToken); err != nil {
		return nil, false, fmt.Errorf("read access token: %w", err)
	}
	if s.RefreshToken, _, err = p.storage.Get(ctx, clientID, KeyRefreshToken); err != nil {
		return nil, false, fmt.Errorf("read refresh token: %w", err)
	}
	return s, true, nil
}

// SignIn stores the token triple exactly as given.
func (p *Provider) SignIn(ctx context.Context, clientID string, s Session) error {
	userJSON, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	if err := p.storage.Set(ctx, clientID, KeyAccessToken, s.AccessToken); err != nil {
		return err
	}
	if err := p.storage.Set(ctx, clientID, KeyRefreshToken, s.RefreshToken); err != nil {
		return err
	}
	if err := p.storage.Set(ctx, clientID, KeyUser, string(userJSON)); err != nil {
		return err
	}
	p.notify(Event{Kind: EventSignedIn, ClientID: clientID, Username: s.User.Username})
	return nil
}

// ClearTokens drops both tokens but keeps the user record.
func (p *Provider) ClearTokens(ctx context.Context, clientID string) error {
	return p.storage.Remove(ctx, clientID, KeyAccessToken, KeyRefreshToken)
}

// SignOut clears the user and both tokens together.
func (p *Provider) SignOut(ctx context.Context, clientID string) error {
	var username string
	if s, ok, err := p.Load(ctx, clientID); err == nil && ok {
		username = s.User.Username
	}
	if err := p.storage.Remove(ctx, clientID, KeyUser, KeyAccessToken, KeyRefreshToken, KeyEditorDraft); err != nil {
		return err
	}
	p.notify(Event{Kind: EventSignedOut, ClientID: clientID, Username: username})
	return nil
}

// AccessToken reads the bearer token of the browser bound to ctx.
func (p *Provider) AccessToken(ctx context.Context) (string, bool) {
	clientID, ok := ClientIDFromContext(ctx)
	if !ok {
		return "", false
	}
	token, ok, err := p.storage.Get(ctx, clientID, KeyAccessToken)
	if err != nil || !ok || token == "" {
		return "", false
	}
	return token, true
}

func (p *Provider) SetFlash(ctx context.Context, clientID string, f Flash) error {
	return p.setJSON(ctx, clientID, KeyFlash, f)
}

// TakeFlash returns the pending notification and removes it.
func (p *Provider) TakeFlash(ctx context.Context, clientID string) (*Flash, error) {
	var f Flash
	ok, err := p.takeJSON(ctx, clientID, KeyFlash, &f)
	if err != nil || !ok {
		return nil, err
	}
	return &f, nil
}

func (p *Provider) SetNavState(ctx context.Context, clientID string, s NavState) error {
	return p.setJSON(ctx, clientID, KeyNavState, s)
}

// NavState returns the state handed over by the previous view. It stays
// until replaced so a reload of the next view still sees it.
func (p *Provider) NavState(ctx context.Context, clientID string) (NavState, error) {
	var s NavState
	_, err := p.getJSON(ctx, clientID, KeyNavState, &s)
	return s, err
}

func (p *Provider) SaveDraft(ctx context.Context, clientID string, doc *portfolio.Document) error {
	return p.setJSON(ctx, clientID, KeyEditorDraft, doc)
}

// Draft returns the editor's working copy, or ok=false when none is stored.
func (p *Provider) Draft(ctx context.Context, clientID string) (*portfolio.Document, bool, error) {
	doc := &portfolio.Document{}
	ok, err := p.getJSON(ctx, clientID, KeyEditorDraft, doc)
	if err != nil || !ok {
		return nil, false, err
	}
	doc.Normalize()
	return doc, true, nil
}

func (p *Provider) ClearDraft(ctx context.Context, clientID string) error {
	return p.storage.Remove(ctx, clientID, KeyEditorDraft)
}

func (p *Provider) setJSON(ctx context.Context, clientID, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return p.storage.Set(ctx, clientID, key, string(b))
}

func (p *Provider) getJSON(ctx context.Context, clientID, key string, dst any) (bool, error) {
	raw, ok, err := p.storage.Get(ctx, clientID, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		// corrupt entry, treat as missing
		_ = p.storage.Remove(ctx, clientID, key)
		return false, nil
	}
	return true, nil
}

func (p *Provider) takeJSON(ctx context.Context, clientID, key string, dst any) (bool, error) {
	ok, err := p.getJSON(ctx, clientID, key, dst)
	if err != nil || !ok {
		return ok, err
	}
	return true, p.storage.Remove(ctx, clientID, key)
}
