package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/MyNameIsWhaaat/nearbuy/internal/geo"
	"github.com/MyNameIsWhaaat/nearbuy/internal/paging"
	"github.com/MyNameIsWhaaat/nearbuy/internal/product/model"
)

type ProductService interface {
	ListNearby(ctx context.Context, origin *geo.Point, page int) (paging.Result[model.NearbyItem], error)
	GetItemDetail(ctx context.Context, id uuid.UUID) (model.Item, error)
	CreateItem(ctx context.Context, ownerID uuid.UUID, in model.CreateItemInput) (model.Item, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
