package ai

import (
	"context"
	"sync"

	"bluegenie-core/internal/domain"
	"bluegenie-core/internal/domain/ports/adapter"
)

var _ adapter.IdentityService = (*StaticIdentityAdapter)(nil)

// StaticIdentityAdapter implements adapter.IdentityService with a fixed
// dev identity. SignIn accepts any non-empty token.
type StaticIdentityAdapter struct {
	userID string
	email  string

	mu       sync.Mutex
	signedIn bool
}

func NewStaticIdentityAdapter(userID, email string) *StaticIdentityAdapter {
	return &StaticIdentityAdapter{userID: userID, email: email}
}

func (a *StaticIdentityAdapter) SignIn(ctx context.Context, idToken string) error {
	if idToken == "" {
		return domain.ErrInvalidArgument
	}
	a.mu.Lock()
	a.signedIn = true
	a.mu.Unlock()
	return nil
}

func (a *StaticIdentityAdapter) SignOut(ctx context.Context) error {
	a.mu.Lock()
	a.signedIn = false
	a.mu.Unlock()
	return nil
}

func (a *StaticIdentityAdapter) CurrentUserID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.signedIn {
		return ""
	}
	return a.userID
}

func (a *StaticIdentityAdapter) CurrentEmail() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.signedIn {
		return ""
	}
	return a.email
}

func (a *StaticIdentityAdapter) IsSignedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.signedIn
}
