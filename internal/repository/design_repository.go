package repository

import (
	"context"

	"greenbuilder/internal/models"
)

// DesignRepository is the only component that performs I/O against the
// generation service and the designs collection. Поверх него нет другого
// кэша: только упорядоченный список в памяти, без гарантий персистентности.
type DesignRepository interface {
	// List returns the newest designs, most recent first, bounded by the
	// configured sidebar page size.
	List(ctx context.Context) ([]models.DesignSummary, error)

	// Subscribe opens a live feed of sidebar snapshots. Each element replaces
	// the previous list wholesale (last-write-wins). The feed is released
	// when ctx is cancelled; the returned channel is closed afterwards.
	Subscribe(ctx context.Context) (<-chan []models.DesignSummary, error)

	// Create validates the draft, sends it to the generation service, persists
	// the returned design and makes it the newest entry.
	Create(ctx context.Context, draft models.DesignDraft) (*models.Design, error)

	// Update is Create for an existing identity: the stored entry with the
	// matching id is replaced by the regenerated snapshot.
	Update(ctx context.Context, id string, draft models.DesignDraft) (*models.Design, error)

	// GetByID resolves a persisted design, ErrDesignNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Design, error)
}

// validateDraft enforces the required-fields contract shared by Create and
// Update: an incomplete draft must never reach the network.
func validateDraft(draft models.DesignDraft) error {
	if draft.DesignName == "" {
		return &models.ValidationError{Field: "designName"}
	}
	if draft.Length == "" {
		return &models.ValidationError{Field: "length"}
	}
	if draft.Width == "" {
		return &models.ValidationError{Field: "width"}
	}
	return nil
}
