package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"greenbuilder/internal/models"
)

// stubAdmin подменяет админский клиент провайдера.
type stubAdmin struct {
	verifyToken *fbauth.Token
	verifyErr   error
	revokeErr   error
	revokedUID  string
}

func (s *stubAdmin) VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error) {
	return s.verifyToken, s.verifyErr
}

func (s *stubAdmin) GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error) {
	return nil, errors.New("profile unavailable")
}

func (s *stubAdmin) RevokeRefreshTokens(ctx context.Context, uid string) error {
	s.revokedUID = uid
	return s.revokeErr
}

func newTestStore(t *testing.T, handler http.Handler, admin providerAdmin) Store {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewFirebaseStore(admin, "test-api-key", "test-session-secret", time.Hour,
		zap.NewNop(), WithEndpoint(server.URL))
}

func TestSignInIssuesSessionToken(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		require.Equal(t, "test-api-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"localId":"uid-1","email":"eco@example.com","displayName":"Eco","photoUrl":"https://img/p.png"}`))
	}), &stubAdmin{})

	user, token, err := store.SignIn(context.Background(), "eco@example.com", "secret123")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "uid-1", user.UID)
	assert.NotEmpty(t, token)

	// Токен валиден и несет профиль
	parsed, err := store.CurrentUser(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", parsed.UID)
	assert.Equal(t, "eco@example.com", parsed.Email)
	assert.Equal(t, "Eco", parsed.DisplayName)
	assert.Equal(t, "https://img/p.png", parsed.PhotoURL)
}

func TestSignInSurfacesProviderMessageVerbatim(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"INVALID_PASSWORD"}}`))
	}), &stubAdmin{})

	_, _, err := store.SignIn(context.Background(), "eco@example.com", "wrong")
	var authErr *models.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "INVALID_PASSWORD", authErr.Message)
}

func TestSignUpDefaultsDisplayName(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts:signUp", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"localId":"uid-2","email":"new@example.com"}`))
	}), &stubAdmin{})

	user, token, err := store.SignUp(context.Background(), "new@example.com", "secret123", "Newcomer")
	require.NoError(t, err)
	assert.Equal(t, "Newcomer", user.DisplayName)
	assert.NotEmpty(t, token)
}

func TestSignInWithProviderToken(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		admin := &stubAdmin{verifyToken: &fbauth.Token{UID: "uid-3"}}
		store := newTestStore(t, http.NotFoundHandler(), admin)

		user, token, err := store.SignInWithProviderToken(context.Background(), "provider-token")
		require.NoError(t, err)
		assert.Equal(t, "uid-3", user.UID)
		assert.NotEmpty(t, token)
	})

	t.Run("rejected token", func(t *testing.T) {
		admin := &stubAdmin{verifyErr: errors.New("expired")}
		store := newTestStore(t, http.NotFoundHandler(), admin)

		_, _, err := store.SignInWithProviderToken(context.Background(), "bad")
		var authErr *models.AuthError
		require.ErrorAs(t, err, &authErr)
	})
}

func TestCurrentUserRejectsForgedTokens(t *testing.T) {
	store := newTestStore(t, http.NotFoundHandler(), &stubAdmin{})

	t.Run("garbage", func(t *testing.T) {
		_, err := store.CurrentUser("not-a-token")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewFirebaseStore(&stubAdmin{}, "k", "other-secret", time.Hour, zap.NewNop())
		otherImpl := other.(*firebaseStore)
		_, token, err := otherImpl.issueSession(&models.User{UID: "uid-x"})
		require.NoError(t, err)

		_, err = store.CurrentUser(token)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		short := NewFirebaseStore(&stubAdmin{}, "k", "test-session-secret", -time.Minute, zap.NewNop())
		shortImpl := short.(*firebaseStore)
		_, token, err := shortImpl.issueSession(&models.User{UID: "uid-y"})
		require.NoError(t, err)

		_, err = short.CurrentUser(token)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})
}

func TestSignOutRevokesTokens(t *testing.T) {
	admin := &stubAdmin{}
	store := newTestStore(t, http.NotFoundHandler(), admin)

	require.NoError(t, store.SignOut(context.Background(), "uid-1"))
	assert.Equal(t, "uid-1", admin.revokedUID)

	t.Run("revocation failure propagates for logging", func(t *testing.T) {
		admin := &stubAdmin{revokeErr: errors.New("provider down")}
		store := newTestStore(t, http.NotFoundHandler(), admin)
		assert.Error(t, store.SignOut(context.Background(), "uid-1"))
	})
}
