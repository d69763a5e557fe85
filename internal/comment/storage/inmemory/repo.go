package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MyNameIsWhaaat/nearbuy/internal/apperr"
	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/model"
)

type Repo struct {
	mu sync.RWMutex

	nextID int64
	byID   map[int64]model.Comment
	byItem map[uuid.UUID][]int64
}

func New() *Repo {
	return &Repo{
		nextID: 1,
		byID:   make(map[int64]model.Comment),
		byItem: make(map[uuid.UUID][]int64),
	}
}

func (r *Repo) Create(ctx context.Context, c model.Comment) (model.Comment, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = r.nextID
	r.nextID++
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.ParentID != nil {
		p := *c.ParentID
		c.ParentID = &p
	}

	r.byID[c.ID] = c
	r.byItem[c.ItemID] = append(r.byItem[c.ItemID], c.ID)

	return c, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (model.Comment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return model.Comment{}, apperr.ErrNotFound
	}
	return c, nil
}

func (r *Repo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]model.Comment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byItem[itemID]
	out := make([]model.Comment, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	return out, nil
}
