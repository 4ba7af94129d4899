package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"greenbuilder/internal/intake"
	"greenbuilder/internal/models"
	"greenbuilder/internal/repository"
	"greenbuilder/internal/viewer"
)

// ErrStaleResponse marks a submission result that arrived after the user
// navigated away; the result is discarded, not applied.
var ErrStaleResponse = errors.New("submission result arrived for a discarded view")

// ErrNoCurrentDesign is returned for viewer operations without a selected design.
var ErrNoCurrentDesign = errors.New("no design is currently selected")

// Mode tells the client which surface to render.
type Mode string

const (
	// ModeForm — показываем форму ввода.
	ModeForm Mode = "form"
	// ModeResult — показываем сохраненный дизайн в режиме чтения.
	ModeResult Mode = "result"
)

// View is the single-source-of-truth snapshot of what is displayed.
type View struct {
	Mode        Mode
	Creating    bool
	Dirty       bool
	FormState   intake.State
	Draft       *models.DesignDraft // заполнен в ModeForm
	Design      *models.Design      // заполнен в ModeResult
	ActiveIndex int                 // позиция карусели в ModeResult
}

// Controller mediates between the intake form, the design repository and the
// result viewer for one user. All transitions serialize on an internal
// mutex — это замена однопоточного event loop исходного UI; сетевые вызовы
// выполняются вне блокировки и фиксируются обратно через generation-токен.
type Controller struct {
	repo   repository.DesignRepository
	logger *zap.Logger

	mu       sync.Mutex
	form     *intake.Form
	current  *viewer.Viewer // nil — активна форма
	creating bool
	// Токен подписи текущей отправки. Навигация инвалидирует его, и поздний
	// ответ отбрасывается вместо применения к устаревшему виду.
	generation string
}

// NewController creates a controller with an empty intake form.
func NewController(repo repository.DesignRepository, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		repo:   repo,
		logger: logger.Named("WorkflowController"),
		form:   intake.NewForm(),
	}
}

// SetField forwards a text-field mutation to the form.
func (c *Controller) SetField(field intake.TextField, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.SetField(field, value)
}

// AdjustRoom forwards a clamped room-count change to the form.
func (c *Controller) AdjustRoom(kind models.RoomKind, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.AdjustRoom(kind, delta)
}

// ToggleWindow forwards a window flag flip to the form.
func (c *Controller) ToggleWindow(side models.WindowSide) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.ToggleWindow(side)
}

// SubmitDesign consumes the draft: create when no design is selected, update
// of the selected identity otherwise. At most one submission is outstanding;
// a second attempt is rejected with ErrSubmissionInFlight (намеренное
// решение: отклоняем, не ставим в очередь). The creating indicator is set
// for the duration and cleared on both success and failure.
func (c *Controller) SubmitDesign(ctx context.Context) (*models.Design, error) {
	c.mu.Lock()
	if c.creating {
		c.mu.Unlock()
		return nil, models.ErrSubmissionInFlight
	}
	draft, err := c.form.BeginSubmit()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	token := uuid.NewString()
	c.generation = token
	c.creating = true
	targetID := ""
	if c.current != nil {
		targetID = c.current.Design().ID
	}
	c.mu.Unlock()

	// Сетевой вызов вне блокировки: остальные операции не ждут генерацию
	var design *models.Design
	if targetID != "" {
		design, err = c.repo.Update(ctx, targetID, draft)
	} else {
		design, err = c.repo.Create(ctx, draft)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != token {
		// Пользователь уже ушел с этого вида; форма сброшена навигацией
		c.logger.Info("Discarding stale submission result",
			zap.String("designName", draft.DesignName))
		return nil, ErrStaleResponse
	}
	c.creating = false
	c.generation = ""

	if err != nil {
		c.form.FailSubmit()
		c.logger.Warn("Design submission failed", zap.Error(err))
		return nil, err
	}

	c.form.CompleteSubmit()
	c.form.Reset() // следующий черновик начинается с чистого листа
	c.current = viewer.New(*design)
	c.logger.Info("Design submission applied",
		zap.String("id", design.ID), zap.String("designName", design.DesignName))
	return design, nil
}

// StartNewDesign clears the current design and resets the form. A dirty form
// demands explicit confirmation first; cancelling the confirmation leaves
// the draft untouched.
func (c *Controller) StartNewDesign(confirmed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil && c.form.IsDirty() && !confirmed {
		return models.ErrConfirmationRequired
	}

	// Инвалидируем возможную отправку в полете: ее поздний ответ будет отброшен
	c.generation = ""
	c.creating = false
	c.current = nil
	c.form.Reset()
	return nil
}

// SelectDesign switches the view to an existing persisted design. On lookup
// failure the controller stays exactly where it was (no partial navigation).
func (c *Controller) SelectDesign(ctx context.Context, id string) (*models.Design, error) {
	design, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation = ""
	c.creating = false
	c.current = viewer.New(*design)
	// Форма засеивается полями выбранного дизайна: повторная отправка идет
	// как Update той же сущности
	c.form.Load(models.DesignDraft{
		DesignName:     design.DesignName,
		Length:         design.Length,
		Width:          design.Width,
		Rooms:          design.Rooms,
		Windows:        design.Windows,
		SpecialRequest: design.SpecialRequest,
	})
	return design, nil
}

// SelectConfiguration moves the result carousel, clamping out-of-range input.
func (c *Controller) SelectConfiguration(index int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return 0, ErrNoCurrentDesign
	}
	return c.current.SelectConfiguration(index), nil
}

// View returns the display snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := View{
		Creating:  c.creating,
		Dirty:     c.form.IsDirty(),
		FormState: c.form.State(),
	}
	if c.current != nil {
		view.Mode = ModeResult
		design := c.current.Design()
		view.Design = &design
		view.ActiveIndex = c.current.ActiveIndex()
	} else {
		view.Mode = ModeForm
		draft := c.form.Draft()
		view.Draft = &draft
	}
	return view
}
