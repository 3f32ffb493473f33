package adapter

import "context"

// IdentityService is the port for the external auth provider. The core only
// needs the signed-in identity; token exchange happens in the provider.
type IdentityService interface {
	SignIn(ctx context.Context, idToken string) error
	SignOut(ctx context.Context) error
	CurrentUserID() string
	CurrentEmail() string
	IsSignedIn() bool
}
