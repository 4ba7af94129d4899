package mocks

import (
	"context"

	"greenbuilder/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock GeneratorClient
type GeneratorClient struct {
	mock.Mock
}

func (m *GeneratorClient) Generate(ctx context.Context, draft models.DesignDraft) (*models.Design, error) {
	args := m.Called(ctx, draft)
	design, _ := args.Get(0).(*models.Design)
	return design, args.Error(1)
}
