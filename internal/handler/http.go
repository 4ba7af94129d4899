package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"greenbuilder/internal/models"
	"greenbuilder/internal/repository"
	"greenbuilder/internal/session"
	"greenbuilder/internal/workflow"
)

// userContextKey — ключ принципала в контексте Gin.
const userContextKey = "greenbuilder.user"

// submissionsTotal counts design submissions by outcome.
var submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "greenbuilder_design_submissions_total",
	Help: "Design submissions grouped by outcome.",
}, []string{"outcome"})

// DesignHandler обрабатывает HTTP запросы приложения.
type DesignHandler struct {
	workflows *workflow.Manager
	repo      repository.DesignRepository
	sessions  session.Store
	feed      *FeedManager
	logger    *zap.Logger
}

// NewDesignHandler создает новый DesignHandler.
func NewDesignHandler(workflows *workflow.Manager, repo repository.DesignRepository, sessions session.Store, feed *FeedManager, logger *zap.Logger) *DesignHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DesignHandler{
		workflows: workflows,
		repo:      repo,
		sessions:  sessions,
		feed:      feed,
		logger:    logger.Named("DesignHandler"),
	}
}

// RegisterRoutes регистрирует маршруты приложения.
func (h *DesignHandler) RegisterRoutes(r *gin.Engine) {
	// --- Аутентификация (без middleware) ---
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", h.login)
		authGroup.POST("/register", h.register)
		authGroup.POST("/provider", h.providerLogin)
	}

	// --- Основное API (требует сессию) ---
	api := r.Group("/api", h.AuthMiddleware())
	{
		api.GET("/auth/me", h.me)
		api.POST("/auth/logout", h.logout)

		api.GET("/designs", h.listDesigns)
		api.POST("/designs", h.submitDesign)

		api.PUT("/draft/fields/:field", h.setDraftField)
		api.POST("/draft/rooms/:kind", h.adjustRoom)
		api.POST("/draft/windows/:side", h.toggleWindow)

		api.POST("/workflow/new", h.startNewDesign)
		api.POST("/workflow/select/:id", h.selectDesign)
		api.GET("/workflow/view", h.view)
		api.POST("/workflow/configuration", h.selectConfiguration)
	}

	// WebSocket фид истории; токен приходит query-параметром, т.к. браузерный
	// WebSocket не умеет заголовки
	r.GET("/ws/designs", h.designsFeed)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// AuthMiddleware validates the session token and stores the principal in the
// request context.
func (h *DesignHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{Message: "missing session token"})
			return
		}
		user, err := h.sessions.CurrentUser(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{Message: "invalid session token"})
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// currentUser извлекает принципала, положенного middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	val, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Fallback для WebSocket и редиректов
	return c.Query("token")
}

// controller resolves the workflow controller of the signed-in user.
func (h *DesignHandler) controller(c *gin.Context) (*workflow.Controller, bool) {
	user, ok := currentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{Message: "missing principal"})
		return nil, false
	}
	return h.workflows.Controller(user.UID), true
}

// handleServiceError конвертирует доменные ошибки в HTTP ответы. Ни одна
// ошибка не оставляет вид в неопределенном состоянии: клиент всегда получает
// внятный JSON.
func handleServiceError(c *gin.Context, err error, logger *zap.Logger) {
	var (
		validationErr *models.ValidationError
		authErr       *models.AuthError
		serviceErr    *models.ServiceError
		networkErr    *models.NetworkError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, APIError{Message: validationErr.Error(), Code: "validation"})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, APIError{Message: authErr.Message, Code: "auth"})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, APIError{Message: "unauthorized"})
	case errors.Is(err, models.ErrDesignNotFound):
		c.JSON(http.StatusNotFound, APIError{Message: "design not found"})
	case errors.Is(err, models.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, APIError{Message: err.Error(), Code: "submission_in_flight"})
	case errors.Is(err, models.ErrConfirmationRequired):
		c.JSON(http.StatusConflict, APIError{Message: err.Error(), Code: "confirmation_required"})
	case errors.Is(err, models.ErrFormLocked):
		c.JSON(http.StatusConflict, APIError{Message: err.Error(), Code: "form_locked"})
	case errors.Is(err, workflow.ErrStaleResponse):
		c.JSON(http.StatusConflict, APIError{Message: err.Error(), Code: "stale_response"})
	case errors.Is(err, workflow.ErrNoCurrentDesign):
		c.JSON(http.StatusBadRequest, APIError{Message: err.Error()})
	case errors.As(err, &serviceErr), errors.As(err, &networkErr):
		c.JSON(http.StatusBadGateway, APIError{Message: err.Error(), Code: "upstream"})
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Message: "internal error"})
	}
}
