package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"greenbuilder/internal/models"
)

// identityToolkitURL is the password-auth REST surface of the provider.
// Admin SDK не умеет вход по паролю, поэтому email/password идет через REST,
// как это делал клиентский SDK исходного приложения.
const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// providerAdmin is the slice of the Firebase admin client the store needs.
// *fbauth.Client satisfies it; tests substitute a stub.
type providerAdmin interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// Claims is the session JWT payload.
type Claims struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
	jwt.RegisteredClaims
}

// Compile-time check to ensure firebaseStore implements Store
var _ Store = (*firebaseStore)(nil)

type firebaseStore struct {
	admin      providerAdmin
	httpClient *http.Client
	endpoint   string
	webAPIKey  string
	secret     []byte
	tokenTTL   time.Duration
	logger     *zap.Logger
}

// Option настраивает стор; используется тестами для подмены REST-эндпоинта.
type Option func(*firebaseStore)

// WithEndpoint overrides the Identity Toolkit base URL.
func WithEndpoint(endpoint string) Option {
	return func(s *firebaseStore) { s.endpoint = endpoint }
}

// WithHTTPClient overrides the HTTP client used for provider REST calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *firebaseStore) { s.httpClient = client }
}

// NewFirebaseStore creates the production session store.
func NewFirebaseStore(admin providerAdmin, webAPIKey, sessionSecret string, tokenTTL time.Duration, logger *zap.Logger, opts ...Option) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &firebaseStore{
		admin:      admin,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		endpoint:   identityToolkitURL,
		webAPIKey:  webAPIKey,
		secret:     []byte(sessionSecret),
		tokenTTL:   tokenTTL,
		logger:     logger.Named("SessionStore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// identityToolkit request/response shapes (wire format of the provider).
type passwordAuthRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	DisplayName       string `json:"displayName,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type passwordAuthResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
}

type identityToolkitError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *firebaseStore) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.passwordAuth(ctx, "accounts:signInWithPassword", passwordAuthRequest{
		Email: email, Password: password, ReturnSecureToken: true,
	})
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("User signed in", zap.String("uid", user.UID))
	return s.issueSession(user)
}

func (s *firebaseStore) SignUp(ctx context.Context, email, password, displayName string) (*models.User, string, error) {
	user, err := s.passwordAuth(ctx, "accounts:signUp", passwordAuthRequest{
		Email: email, Password: password, DisplayName: displayName, ReturnSecureToken: true,
	})
	if err != nil {
		return nil, "", err
	}
	if user.DisplayName == "" {
		user.DisplayName = displayName
	}
	s.logger.Info("User registered", zap.String("uid", user.UID))
	return s.issueSession(user)
}

func (s *firebaseStore) SignInWithProviderToken(ctx context.Context, idToken string) (*models.User, string, error) {
	if s.admin == nil {
		return nil, "", &models.AuthError{Message: "provider sign-in is not configured"}
	}
	token, err := s.admin.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Warn("Provider ID token rejected", zap.Error(err))
		return nil, "", &models.AuthError{Message: "invalid provider token"}
	}

	user := &models.User{UID: token.UID}
	// Профиль подтягиваем из провайдера; если не вышло, остаемся с uid
	if record, err := s.admin.GetUser(ctx, token.UID); err == nil && record != nil {
		user.Email = record.Email
		user.DisplayName = record.DisplayName
		user.PhotoURL = record.PhotoURL
	} else if err != nil {
		s.logger.Warn("Failed to load provider profile", zap.String("uid", token.UID), zap.Error(err))
	}

	s.logger.Info("User signed in via provider token", zap.String("uid", user.UID))
	return s.issueSession(user)
}

func (s *firebaseStore) CurrentUser(tokenString string) (*models.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, models.ErrUnauthorized
	}
	return &models.User{
		UID:         claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		PhotoURL:    claims.PhotoURL,
	}, nil
}

func (s *firebaseStore) SignOut(ctx context.Context, uid string) error {
	if s.admin == nil {
		return nil
	}
	if err := s.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		s.logger.Warn("Failed to revoke refresh tokens", zap.String("uid", uid), zap.Error(err))
		return err
	}
	s.logger.Info("User signed out", zap.String("uid", uid))
	return nil
}

// passwordAuth calls one Identity Toolkit account endpoint.
func (s *firebaseStore) passwordAuth(ctx context.Context, action string, payload passwordAuthRequest) (*models.User, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal auth request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", s.endpoint, action, s.webAPIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &models.NetworkError{Op: "provider auth", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var toolkitErr identityToolkitError
		message := "authentication rejected"
		if err := json.Unmarshal(raw, &toolkitErr); err == nil && toolkitErr.Error.Message != "" {
			// Сообщение провайдера отдаем пользователю дословно
			message = toolkitErr.Error.Message
		}
		s.logger.Warn("Provider rejected credentials",
			zap.Int("status", resp.StatusCode), zap.String("message", message))
		return nil, &models.AuthError{Message: message}
	}

	var decoded passwordAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("undecodable provider response: %w", err)
	}
	return &models.User{
		UID:         decoded.LocalID,
		Email:       decoded.Email,
		DisplayName: decoded.DisplayName,
		PhotoURL:    decoded.PhotoURL,
	}, nil
}

// issueSession signs the local session JWT for the principal.
func (s *firebaseStore) issueSession(user *models.User) (*models.User, string, error) {
	now := time.Now()
	claims := Claims{
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return user, signed, nil
}
