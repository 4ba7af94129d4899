package mocks

import (
	"context"

	"greenbuilder/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock DesignRepository
type DesignRepository struct {
	mock.Mock
}

func (m *DesignRepository) List(ctx context.Context) ([]models.DesignSummary, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.DesignSummary)
	return list, args.Error(1)
}

func (m *DesignRepository) Subscribe(ctx context.Context) (<-chan []models.DesignSummary, error) {
	args := m.Called(ctx)
	ch, _ := args.Get(0).(<-chan []models.DesignSummary)
	return ch, args.Error(1)
}

func (m *DesignRepository) Create(ctx context.Context, draft models.DesignDraft) (*models.Design, error) {
	args := m.Called(ctx, draft)
	design, _ := args.Get(0).(*models.Design)
	return design, args.Error(1)
}

func (m *DesignRepository) Update(ctx context.Context, id string, draft models.DesignDraft) (*models.Design, error) {
	args := m.Called(ctx, id, draft)
	design, _ := args.Get(0).(*models.Design)
	return design, args.Error(1)
}

func (m *DesignRepository) GetByID(ctx context.Context, id string) (*models.Design, error) {
	args := m.Called(ctx, id)
	design, _ := args.Get(0).(*models.Design)
	return design, args.Error(1)
}
