package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/MyNameIsWhaaat/nearbuy/internal/geo"
	"github.com/MyNameIsWhaaat/nearbuy/internal/paging"
	"github.com/MyNameIsWhaaat/nearbuy/internal/product/model"
)

// Repository is the proximity index over uploaded items.
// Get returns apperr.ErrNotFound for unknown ids.
type Repository interface {
	Create(ctx context.Context, item model.Item) (model.Item, error)
	Get(ctx context.Context, id uuid.UUID) (model.Item, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Nearby(ctx context.Context, origin geo.Point, req paging.Request) (paging.Result[model.NearbyItem], error)
}
