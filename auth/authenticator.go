package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eringen/solnotes/logging"
)

// Authenticator ties the OAuth provider, the allow-list and the identity
// store together.
type Authenticator struct {
	provider *Provider
	gate     *Gate
	store    Store
	ttl      time.Duration
	logger   logging.Logger
	now      func() time.Time
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithTTL sets how long identity records live.
func WithTTL(ttl time.Duration) AuthenticatorOption {
	return func(a *Authenticator) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		a.logger = logging.OrNoOp(l)
	}
}

// WithClock overrides the time source for IssuedAt.
func WithClock(now func() time.Time) AuthenticatorOption {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAuthenticator builds an Authenticator. A nil store falls back to a
// MemoryStore.
func NewAuthenticator(p *Provider, g *Gate, s Store, opts ...AuthenticatorOption) *Authenticator {
	if s == nil {
		s = NewMemoryStore()
	}
	a := &Authenticator{
		provider: p,
		gate:     g,
		store:    s,
		ttl:      DefaultTTL,
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Provider returns the OAuth provider.
func (a *Authenticator) Provider() *Provider { return a.provider }

// Gate returns the allow-list.
func (a *Authenticator) Gate() *Gate { return a.gate }

// SignIn completes the OAuth callback. Users outside the allow-list get
// ErrNotAdmin and no record is stored.
func (a *Authenticator) SignIn(ctx context.Context, code string) (string, Identity, error) {
	tok, err := a.provider.Exchange(ctx, code)
	if err != nil {
		return "", Identity{}, err
	}
	username, err := a.provider.FetchUser(ctx, tok)
	if err != nil {
		return "", Identity{}, err
	}
	if err := a.gate.Authorize(username); err != nil {
		a.logger.Warn("sign-in rejected", "username", username)
		return "", Identity{}, err
	}

	id := Identity{Username: username, AccessToken: tok.AccessToken, IssuedAt: a.now().UTC()}
	sid, err := a.store.Save(ctx, id, a.ttl)
	if err != nil {
		return "", Identity{}, fmt.Errorf("store identity: %w", err)
	}
	a.logger.Info("signed in", "username", username)
	return sid, id, nil
}

// Resolve returns the identity for sid. The allow-list is checked again so
// removing an admin takes effect immediately.
func (a *Authenticator) Resolve(ctx context.Context, sid string) (Identity, error) {
	if sid == "" {
		return Identity{}, ErrSessionNotFound
	}
	id, err := a.store.Lookup(ctx, sid)
	if err != nil {
		return Identity{}, err
	}
	if err := a.gate.Authorize(id.Username); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// SignOut revokes the record for sid.
func (a *Authenticator) SignOut(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	if err := a.store.Revoke(ctx, sid); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}
