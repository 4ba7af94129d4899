package mocks

import (
	"context"

	"greenbuilder/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock Store
type Store struct {
	mock.Mock
}

func (m *Store) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.String(1), args.Error(2)
}

func (m *Store) SignUp(ctx context.Context, email, password, displayName string) (*models.User, string, error) {
	args := m.Called(ctx, email, password, displayName)
	user, _ := args.Get(0).(*models.User)
	return user, args.String(1), args.Error(2)
}

func (m *Store) SignInWithProviderToken(ctx context.Context, idToken string) (*models.User, string, error) {
	args := m.Called(ctx, idToken)
	user, _ := args.Get(0).(*models.User)
	return user, args.String(1), args.Error(2)
}

func (m *Store) CurrentUser(token string) (*models.User, error) {
	args := m.Called(token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *Store) SignOut(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}
