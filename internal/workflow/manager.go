package workflow

import (
	"sync"

	"go.uber.org/zap"

	"greenbuilder/internal/repository"
)

// Manager hands out one Controller per signed-in user. Контроллер живет,
// пока жив процесс; состояние формы между запросами одного пользователя
// сохраняется именно здесь.
type Manager struct {
	repo   repository.DesignRepository
	logger *zap.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewManager creates an empty controller registry.
func NewManager(repo repository.DesignRepository, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		repo:        repo,
		logger:      logger,
		controllers: make(map[string]*Controller),
	}
}

// Controller returns the controller for uid, creating it on first use.
func (m *Manager) Controller(uid string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ctrl, ok := m.controllers[uid]; ok {
		return ctrl
	}
	ctrl := NewController(m.repo, m.logger)
	m.controllers[uid] = ctrl
	return ctrl
}

// Drop discards the controller for uid, e.g. after sign-out.
func (m *Manager) Drop(uid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.controllers, uid)
}
