package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/nearbuy/internal/apperr"
	"github.com/MyNameIsWhaaat/nearbuy/internal/geo"
	"github.com/MyNameIsWhaaat/nearbuy/internal/paging"
	"github.com/MyNameIsWhaaat/nearbuy/internal/product/model"
	"github.com/MyNameIsWhaaat/nearbuy/internal/product/storage"
)

const (
	maxNameLen     = 200
	maxAddressLen  = 500
	maxImageURLLen = 2048
)

type Options struct {
	PageSize  int
	CacheSize int
	CacheTTL  time.Duration
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = paging.DefaultSize
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 512
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	return o
}

type productService struct {
	repo     storage.Repository
	log      zerolog.Logger
	pageSize int

	// items never change after upload, so a cached copy is never stale
	cache *expirable.LRU[uuid.UUID, model.Item]
}

func New(repo storage.Repository, log zerolog.Logger, opts Options) ProductService {
	opts = opts.withDefaults()
	return &productService{
		repo:     repo,
		log:      log.With().Str("component", "product").Logger(),
		pageSize: opts.PageSize,
		cache:    expirable.NewLRU[uuid.UUID, model.Item](opts.CacheSize, nil, opts.CacheTTL),
	}
}

func (s *productService) ListNearby(ctx context.Context, origin *geo.Point, page int) (paging.Result[model.NearbyItem], error) {
	if origin == nil {
		return paging.Result[model.NearbyItem]{}, fmt.Errorf("%w: origin is required", apperr.ErrValidation)
	}
	if err := origin.Validate(); err != nil {
		return paging.Result[model.NearbyItem]{}, err
	}

	req := paging.Request{Page: page, Size: s.pageSize}
	if err := req.Validate(); err != nil {
		return paging.Result[model.NearbyItem]{}, err
	}

	res, err := s.repo.Nearby(ctx, *origin, req)
	if err != nil {
		return paging.Result[model.NearbyItem]{}, fmt.Errorf("nearby items: %w", err)
	}
	return res, nil
}

func (s *productService) GetItemDetail(ctx context.Context, id uuid.UUID) (model.Item, error) {
	if id == uuid.Nil {
		return model.Item{}, fmt.Errorf("%w: item id is required", apperr.ErrValidation)
	}
	if it, ok := s.cache.Get(id); ok {
		return it, nil
	}

	it, err := s.repo.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return model.Item{}, fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return model.Item{}, err
	}

	s.cache.Add(id, it)
	return it, nil
}

func (s *productService) CreateItem(ctx context.Context, ownerID uuid.UUID, in model.CreateItemInput) (model.Item, error) {
	if ownerID == uuid.Nil {
		return model.Item{}, fmt.Errorf("%w: owner is required", apperr.ErrValidation)
	}

	item, err := validateItem(in)
	if err != nil {
		return model.Item{}, err
	}
	item.ID = uuid.New()
	item.OwnerID = ownerID

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return model.Item{}, err
	}

	s.cache.Add(created.ID, created)
	s.log.Info().
		Str("item_id", created.ID.String()).
		Str("owner_id", ownerID.String()).
		Msg("item created")
	return created, nil
}

func (s *productService) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.cache.Contains(id) {
		return true, nil
	}
	return s.repo.Exists(ctx, id)
}

func validateItem(in model.CreateItemInput) (model.Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > maxNameLen {
		return model.Item{}, fmt.Errorf("%w: name must be 1..%d characters", apperr.ErrValidation, maxNameLen)
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price < 0 {
		return model.Item{}, fmt.Errorf("%w: price must be a non-negative number", apperr.ErrValidation)
	}

	loc := geo.Point{Lat: in.Lat, Lon: in.Lon}
	if err := loc.Validate(); err != nil {
		return model.Item{}, err
	}

	address := strings.TrimSpace(in.Address)
	if len(address) > maxAddressLen {
		return model.Item{}, fmt.Errorf("%w: address is too long", apperr.ErrValidation)
	}
	imageURL := strings.TrimSpace(in.ImageURL)
	if len(imageURL) > maxImageURLLen {
		return model.Item{}, fmt.Errorf("%w: image_url is too long", apperr.ErrValidation)
	}

	return model.Item{
		Name:     name,
		Price:    math.Round(in.Price*100) / 100,
		Location: loc,
		Address:  address,
		ImageURL: imageURL,
	}, nil
}
