package inmemory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MyNameIsWhaaat/nearbuy/internal/apperr"
	"github.com/MyNameIsWhaaat/nearbuy/internal/geo"
	"github.com/MyNameIsWhaaat/nearbuy/internal/paging"
	"github.com/MyNameIsWhaaat/nearbuy/internal/product/model"
)

type Repo struct {
	mu sync.RWMutex

	items []model.Item
	byID  map[uuid.UUID]int
}

func New() *Repo {
	return &Repo{
		byID: make(map[uuid.UUID]int),
	}
}

func (r *Repo) Create(ctx context.Context, item model.Item) (model.Item, error) {
	_ = ctx

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[item.ID] = len(r.items)
	r.items = append(r.items, item)

	return item, nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (model.Item, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return model.Item{}, apperr.ErrNotFound
	}
	return r.items[i], nil
}

func (r *Repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byID[id]
	return ok, nil
}

func (r *Repo) Nearby(ctx context.Context, origin geo.Point, req paging.Request) (paging.Result[model.NearbyItem], error) {
	_ = ctx

	r.mu.RLock()
	candidates := make([]model.NearbyItem, len(r.items))
	for i, it := range r.items {
		candidates[i] = model.NearbyItem{Item: it}
	}
	r.mu.RUnlock()

	for i := range candidates {
		candidates[i].DistanceM = geo.Distance(origin, candidates[i].Location)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.DistanceM != b.DistanceM {
			return a.DistanceM < b.DistanceM
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})

	total := len(candidates)
	start, end := req.Bounds(total)

	page := make([]model.NearbyItem, end-start)
	copy(page, candidates[start:end])

	return paging.NewResult(page, req, total), nil
}
