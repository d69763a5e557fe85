package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/model"
)

// Repository stores flat comment records. ListByItem returns a snapshot in
// insertion order; Get returns apperr.ErrNotFound for unknown ids.
type Repository interface {
	Create(ctx context.Context, c model.Comment) (model.Comment, error)
	Get(ctx context.Context, id int64) (model.Comment, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]model.Comment, error)
}
