// Package identity holds the signed-in user for the app. The stored record
// is read once and handed to views as a value; views never touch the store.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/localstore"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

const (
	UserKey           = "user"
	MentorFormDataKey = "mentorFormData"
)

// ErrNotAuthenticated means the caller should be sent to the login screen.
var ErrNotAuthenticated = errors.New("not authenticated")

type Authenticator interface {
	Login(ctx context.Context, email, password string) (domain.Identity, error)
}

type Provider struct {
	mu      sync.RWMutex
	store   localstore.Store
	current *domain.Identity
}

// NewProvider reads the stored identity once. A corrupt record is logged
// and treated as signed out.
func NewProvider(ctx context.Context, store localstore.Store) *Provider {
	p := &Provider{store: store}
	if err := p.Refresh(ctx); err != nil {
		logger.WarnContext(ctx, "Discarding unreadable stored identity", "error", err)
	}
	return p
}

// Current returns a copy of the identity, or ErrNotAuthenticated.
func (p *Provider) Current() (domain.Identity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return domain.Identity{}, ErrNotAuthenticated
	}
	return *p.current, nil
}

// Token is a bearer token source for the API client.
func (p *Provider) Token() string {
	id, err := p.Current()
	if err != nil {
		return ""
	}
	return id.Token
}

// Refresh re-reads the store, picking up a login or logout made elsewhere.
func (p *Provider) Refresh(ctx context.Context) error {
	var id domain.Identity
	found, err := p.store.Get(ctx, UserKey, &id)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil || !found {
		p.current = nil
		if err != nil {
			return fmt.Errorf("read identity: %w", err)
		}
		return nil
	}
	p.current = &id
	return nil
}

// Login authenticates and persists the returned identity.
func (p *Provider) Login(ctx context.Context, auth Authenticator, email, password string) (domain.Identity, error) {
	id, err := auth.Login(ctx, email, password)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("login: %w", err)
	}
	if err := p.Set(ctx, id); err != nil {
		return domain.Identity{}, err
	}
	logger.InfoContext(ctx, "User signed in", "user_id", id.UserID, "role", id.Role)
	return id, nil
}

// Set stores id as the signed-in identity.
func (p *Provider) Set(ctx context.Context, id domain.Identity) error {
	if err := p.store.Set(ctx, UserKey, id); err != nil {
		return fmt.Errorf("store identity: %w", err)
	}
	p.mu.Lock()
	p.current = &id
	p.mu.Unlock()
	return nil
}

// Logout forgets the identity and the mentor onboarding draft.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
	if err := p.store.Delete(ctx, UserKey, MentorFormDataKey); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}
