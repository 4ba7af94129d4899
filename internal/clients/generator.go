package clients

import (
	"context"

	"greenbuilder/internal/models"
)

// GeneratorClient talks to the external design-generation service. It is the
// only place that knows the service's wire format; everything above works
// with models.Design.
type GeneratorClient interface {
	// Generate отправляет черновик и дожидается сгенерированных конфигураций.
	// Валидация обязательных полей выполняется ДО вызова, поэтому сюда
	// приходит только полный черновик.
	Generate(ctx context.Context, draft models.DesignDraft) (*models.Design, error)
}
