package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"greenbuilder/internal/clients"
	"greenbuilder/internal/models"
)

var _ DesignRepository = (*memoryDesignRepository)(nil)

// memoryDesignRepository keeps designs only in process memory. Используется
// в development-режиме без настроенного Firebase и в тестах; контракт тот же,
// что у firestore-варианта.
type memoryDesignRepository struct {
	generator clients.GeneratorClient
	pageSize  int
	logger    *zap.Logger

	mu          sync.RWMutex
	designs     []models.Design // новые-сначала
	subscribers map[int]chan []models.DesignSummary
	nextSubID   int
}

// NewMemoryDesignRepository creates an in-memory DesignRepository.
func NewMemoryDesignRepository(generator clients.GeneratorClient, pageSize int, logger *zap.Logger) DesignRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &memoryDesignRepository{
		generator:   generator,
		pageSize:    pageSize,
		logger:      logger.Named("MemoryDesignRepository"),
		subscribers: make(map[int]chan []models.DesignSummary),
	}
}

func (r *memoryDesignRepository) List(ctx context.Context) ([]models.DesignSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pageLocked(), nil
}

func (r *memoryDesignRepository) Subscribe(ctx context.Context) (<-chan []models.DesignSummary, error) {
	updates := make(chan []models.DesignSummary, 1)

	r.mu.Lock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = updates
	updates <- r.pageLocked() // начальный снимок сразу
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.subscribers, id)
		r.mu.Unlock()
		close(updates)
	}()

	return updates, nil
}

func (r *memoryDesignRepository) Create(ctx context.Context, draft models.DesignDraft) (*models.Design, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	design, err := r.generator.Generate(ctx, draft)
	if err != nil {
		return nil, err
	}
	if design.ID == "" {
		design.ID = uuid.NewString()
	}
	if design.CreatedAt.IsZero() {
		design.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	r.designs = append([]models.Design{*design}, r.designs...)
	r.notifyLocked()
	r.mu.Unlock()

	return design, nil
}

func (r *memoryDesignRepository) Update(ctx context.Context, id string, draft models.DesignDraft) (*models.Design, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	prev, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	design, err := r.generator.Generate(ctx, draft)
	if err != nil {
		return nil, err
	}
	design.ID = id
	design.CreatedAt = prev.CreatedAt

	r.mu.Lock()
	for i := range r.designs {
		if r.designs[i].ID == id {
			r.designs[i] = *design
			break
		}
	}
	r.notifyLocked()
	r.mu.Unlock()

	return design, nil
}

func (r *memoryDesignRepository) GetByID(ctx context.Context, id string) (*models.Design, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.designs {
		if r.designs[i].ID == id {
			design := r.designs[i]
			return &design, nil
		}
	}
	return nil, models.ErrDesignNotFound
}

// pageLocked returns the newest page as summaries. Caller holds r.mu.
func (r *memoryDesignRepository) pageLocked() []models.DesignSummary {
	page := r.designs
	if len(page) > r.pageSize {
		page = page[:r.pageSize]
	}
	return summaries(page)
}

// notifyLocked pushes the current page to every subscriber, last-write-wins.
// Caller holds r.mu.
func (r *memoryDesignRepository) notifyLocked() {
	snapshot := r.pageLocked()
	for _, ch := range r.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
