package inmemory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/MyNameIsWhaaat/nearbuy/internal/apperr"
	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/model"
)

func TestCreateGetList(t *testing.T) {
	ctx := context.Background()
	repo := New()
	item := uuid.New()
	other := uuid.New()

	root, err := repo.Create(ctx, model.Comment{ItemID: item, Content: "root"})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	if root.ID != 1 || root.CreatedAt.IsZero() {
		t.Fatalf("unexpected root %+v", root)
	}

	parent := root.ID
	if _, err := repo.Create(ctx, model.Comment{ItemID: item, ParentID: &parent, Content: "child"}); err != nil {
		t.Fatalf("create child: %v", err)
	}
	if _, err := repo.Create(ctx, model.Comment{ItemID: other, Content: "elsewhere"}); err != nil {
		t.Fatalf("create other: %v", err)
	}

	// mutating the caller's variable must not leak into the store
	parent = 42

	list, err := repo.ListByItem(ctx, item)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Content != "root" || list[1].Content != "child" {
		t.Fatalf("unexpected list %+v", list)
	}
	if *list[1].ParentID != root.ID {
		t.Fatalf("parent id changed after create: %d", *list[1].ParentID)
	}

	if _, err := repo.Get(ctx, 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConcurrentCreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := New()
	item := uuid.New()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, _ = repo.Create(ctx, model.Comment{ItemID: item, Content: "c"})
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				list, _ := repo.ListByItem(ctx, item)
				for _, c := range list {
					if c.ID == 0 || c.Content == "" {
						t.Errorf("torn comment observed: %+v", c)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	list, _ := repo.ListByItem(ctx, item)
	if len(list) != 400 {
		t.Fatalf("expected 400 comments, got %d", len(list))
	}
}
