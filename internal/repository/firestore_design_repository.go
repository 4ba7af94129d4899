package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"greenbuilder/internal/clients"
	"greenbuilder/internal/models"
)

// Compile-time check to ensure firestoreDesignRepository implements DesignRepository
var _ DesignRepository = (*firestoreDesignRepository)(nil)

// firestoreDesignRepository stores designs in a Firestore collection ordered
// by creation timestamp and delegates generation to the external service.
type firestoreDesignRepository struct {
	fs         *firestore.Client
	generator  clients.GeneratorClient
	collection string
	pageSize   int
	logger     *zap.Logger

	// Упорядоченный кэш новые-сначала; единственная гарантия — порядок.
	mu    sync.RWMutex
	cache []models.Design
}

// NewFirestoreDesignRepository creates the production DesignRepository.
func NewFirestoreDesignRepository(fs *firestore.Client, generator clients.GeneratorClient, collection string, pageSize int, logger *zap.Logger) DesignRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &firestoreDesignRepository{
		fs:         fs,
		generator:  generator,
		collection: collection,
		pageSize:   pageSize,
		logger:     logger.Named("DesignRepository"),
	}
}

func (r *firestoreDesignRepository) query() firestore.Query {
	return r.fs.Collection(r.collection).
		OrderBy("createdAt", firestore.Desc).
		Limit(r.pageSize)
}

// List выполняет одноразовую выборку N последних дизайнов.
func (r *firestoreDesignRepository) List(ctx context.Context) ([]models.DesignSummary, error) {
	iter := r.query().Documents(ctx)
	defer iter.Stop()

	var designs []models.Design
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &models.NetworkError{Op: "list designs", Err: err}
		}
		var design models.Design
		if err := doc.DataTo(&design); err != nil {
			// Битый документ пропускаем, остальная история важнее
			r.logger.Warn("Skipping undecodable design document",
				zap.String("id", doc.Ref.ID), zap.Error(err))
			continue
		}
		design.ID = doc.Ref.ID
		designs = append(designs, design)
	}

	r.mu.Lock()
	r.cache = designs
	r.mu.Unlock()

	return summaries(designs), nil
}

// Subscribe opens a Firestore snapshot listener scoped to ctx. The iterator
// is stopped and the channel closed as soon as ctx is cancelled, so a
// discarded caller releases the feed with it.
func (r *firestoreDesignRepository) Subscribe(ctx context.Context) (<-chan []models.DesignSummary, error) {
	snapshots := r.query().Snapshots(ctx)
	updates := make(chan []models.DesignSummary, 1)

	go func() {
		defer snapshots.Stop()
		defer close(updates)
		for {
			snap, err := snapshots.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled && ctx.Err() == nil {
					r.logger.Warn("Design snapshot feed terminated", zap.Error(err))
				}
				return
			}

			var designs []models.Design
			docs := snap.Documents
			for {
				doc, err := docs.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					r.logger.Warn("Failed reading snapshot document", zap.Error(err))
					break
				}
				var design models.Design
				if err := doc.DataTo(&design); err != nil {
					r.logger.Warn("Skipping undecodable design document",
						zap.String("id", doc.Ref.ID), zap.Error(err))
					continue
				}
				design.ID = doc.Ref.ID
				designs = append(designs, design)
			}

			r.mu.Lock()
			r.cache = designs
			r.mu.Unlock()

			// Last-write-wins: несем только последний снимок, устаревший
			// вытесняем если получатель не успел его забрать.
			select {
			case updates <- summaries(designs):
			default:
				select {
				case <-updates:
				default:
				}
				updates <- summaries(designs)
			}
		}
	}()

	return updates, nil
}

// Create sends the draft to the generation service and persists the result.
func (r *firestoreDesignRepository) Create(ctx context.Context, draft models.DesignDraft) (*models.Design, error) {
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

	if err := r.persist(ctx, design); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache = append([]models.Design{*design}, r.cache...)
	if len(r.cache) > r.pageSize {
		r.cache = r.cache[:r.pageSize]
	}
	r.mu.Unlock()

	r.logger.Info("Design created",
		zap.String("id", design.ID), zap.String("designName", design.DesignName))
	return design, nil
}

// Update regenerates an existing design and replaces the stored snapshot
// under the same identity.
func (r *firestoreDesignRepository) Update(ctx context.Context, id string, draft models.DesignDraft) (*models.Design, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	// Сначала убеждаемся, что такой дизайн существует
	prev, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	design, err := r.generator.Generate(ctx, draft)
	if err != nil {
		return nil, err
	}

	design.ID = id
	design.CreatedAt = prev.CreatedAt // порядок в истории сохраняется
	if design.CreatedAt.IsZero() {
		design.CreatedAt = time.Now().UTC()
	}

	if err := r.persist(ctx, design); err != nil {
		return nil, err
	}

	r.mu.Lock()
	for i := range r.cache {
		if r.cache[i].ID == id {
			r.cache[i] = *design
			break
		}
	}
	r.mu.Unlock()

	r.logger.Info("Design updated",
		zap.String("id", design.ID), zap.String("designName", design.DesignName))
	return design, nil
}

// GetByID resolves from the in-memory list first, then Firestore.
func (r *firestoreDesignRepository) GetByID(ctx context.Context, id string) (*models.Design, error) {
	r.mu.RLock()
	for i := range r.cache {
		if r.cache[i].ID == id {
			design := r.cache[i]
			r.mu.RUnlock()
			return &design, nil
		}
	}
	r.mu.RUnlock()

	doc, err := r.fs.Collection(r.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrDesignNotFound
		}
		return nil, &models.NetworkError{Op: "get design", Err: err}
	}
	var design models.Design
	if err := doc.DataTo(&design); err != nil {
		return nil, fmt.Errorf("failed to decode design %s: %w", id, err)
	}
	design.ID = doc.Ref.ID
	return &design, nil
}

func (r *firestoreDesignRepository) persist(ctx context.Context, design *models.Design) error {
	if _, err := r.fs.Collection(r.collection).Doc(design.ID).Set(ctx, design); err != nil {
		return &models.NetworkError{Op: "persist design", Err: err}
	}
	return nil
}

func summaries(designs []models.Design) []models.DesignSummary {
	out := make([]models.DesignSummary, 0, len(designs))
	for i := range designs {
		out = append(out, designs[i].Summary())
	}
	return out
}
