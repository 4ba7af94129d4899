package session

import (
	"context"

	"greenbuilder/internal/models"
)

// Store wraps the external auth provider: it exposes presence of a signed-in
// principal and sign-out, and exchanges provider credentials for a local
// session token. Токены провайдера наружу не отдаются — только собственный
// сессионный JWT.
type Store interface {
	// SignIn authenticates email/password against the provider. A provider
	// rejection surfaces as AuthError with the provider message verbatim.
	SignIn(ctx context.Context, email, password string) (*models.User, string, error)

	// SignUp registers a new email/password account with the provider.
	SignUp(ctx context.Context, email, password, displayName string) (*models.User, string, error)

	// SignInWithProviderToken accepts an OAuth ID token the client obtained
	// from the provider popup and converts it into a session.
	SignInWithProviderToken(ctx context.Context, idToken string) (*models.User, string, error)

	// CurrentUser validates a session token and returns the principal.
	CurrentUser(token string) (*models.User, error)

	// SignOut revokes the provider refresh tokens for uid. Fire-and-forget
	// at the call site: ошибки только логируются, редирект происходит всегда.
	SignOut(ctx context.Context, uid string) error
}
