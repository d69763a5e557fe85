package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/nearbuy/internal/apperr"
	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/model"
	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/reply"
	inm "github.com/MyNameIsWhaaat/nearbuy/internal/comment/storage/inmemory"
)

// fakeItems is an ItemChecker backed by a set.
type fakeItems map[uuid.UUID]bool

func (f fakeItems) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return f[id], nil
}

// corruptRepo appends stored-as-is records to every listing.
type corruptRepo struct {
	*inm.Repo
	extra []model.Comment
}

func (c *corruptRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]model.Comment, error) {
	list, err := c.Repo.ListByItem(ctx, itemID)
	return append(list, c.extra...), err
}

type fixture struct {
	svc    CommentService
	repo   *inm.Repo
	itemA  uuid.UUID
	itemB  uuid.UUID
	author uuid.UUID
}

func newFixture() fixture {
	f := fixture{
		repo:   inm.New(),
		itemA:  uuid.New(),
		itemB:  uuid.New(),
		author: uuid.New(),
	}
	items := fakeItems{f.itemA: true, f.itemB: true}
	f.svc = New(f.repo, items, reply.NewMemoryStore(time.Hour), zerolog.Nop())
	return f
}

func (f fixture) post(t *testing.T, item uuid.UUID, content string, parent *int64) model.Comment {
	t.Helper()
	c, err := f.svc.PostComment(context.Background(), PostInput{
		ItemID: item, AuthorID: f.author, Content: content, ParentID: parent,
	})
	if err != nil {
		t.Fatalf("post %q: %v", content, err)
	}
	return c
}

func TestPostCommentValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.PostComment(ctx, PostInput{ItemID: f.itemA, AuthorID: f.author, Content: "   "})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for empty content, got %v", err)
	}

	_, err = f.svc.PostComment(ctx, PostInput{ItemID: uuid.New(), AuthorID: f.author, Content: "hello"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown item, got %v", err)
	}

	missing := int64(9999)
	_, err = f.svc.PostComment(ctx, PostInput{ItemID: f.itemA, AuthorID: f.author, Content: "hello", ParentID: &missing})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for missing parent, got %v", err)
	}
}

func TestPostCommentRejectsCrossItemParent(t *testing.T) {
	f := newFixture()
	onB := f.post(t, f.itemB, "on b", nil)

	_, err := f.svc.PostComment(context.Background(), PostInput{
		ItemID: f.itemA, AuthorID: f.author, Content: "sneaky", ParentID: &onB.ID,
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListCommentsScenario(t *testing.T) {
	f := newFixture()
	hi := f.post(t, f.itemA, "hi", nil)
	f.post(t, f.itemA, "re:hi", &hi.ID)
	f.post(t, f.itemA, "bye", nil)
	f.post(t, f.itemB, "other item", nil)

	th, err := f.svc.ListComments(context.Background(), f.itemA)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if th.Count != 3 || len(th.Items) != 2 {
		t.Fatalf("unexpected thread %+v", th)
	}
	if th.Items[0].Content != "hi" || len(th.Items[0].Children) != 1 || th.Items[0].Children[0].Content != "re:hi" {
		t.Fatalf("unexpected first tree %+v", th.Items[0])
	}
	if th.Items[1].Content != "bye" || len(th.Items[1].Children) != 0 {
		t.Fatalf("unexpected second tree %+v", th.Items[1])
	}

	if _, err := f.svc.ListComments(context.Background(), uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListCommentsDegradesOnCycle(t *testing.T) {
	repo := &corruptRepo{Repo: inm.New()}
	item := uuid.New()
	svc := New(repo, fakeItems{item: true}, reply.NewMemoryStore(time.Hour), zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.PostComment(ctx, PostInput{ItemID: item, AuthorID: uuid.New(), Content: "fine"}); err != nil {
		t.Fatalf("post: %v", err)
	}
	a, b := int64(500), int64(501)
	repo.extra = []model.Comment{
		{ID: a, ItemID: item, ParentID: &b, Content: "a"},
		{ID: b, ItemID: item, ParentID: &a, Content: "b"},
	}

	th, err := svc.ListComments(ctx, item)
	if err != nil {
		t.Fatalf("listing should degrade, not fail: %v", err)
	}
	if th.Count != 1 || len(th.Anomalies) != 2 {
		t.Fatalf("unexpected thread %+v", th)
	}
	for _, an := range th.Anomalies {
		if an.Kind != model.AnomalyCycle {
			t.Fatalf("unexpected anomaly %+v", an)
		}
	}
}

func TestReplySessionFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	root := f.post(t, f.itemA, "root", nil)

	view, err := f.svc.StartReply(ctx, "sess-1", root.ID)
	if err != nil {
		t.Fatalf("start reply: %v", err)
	}
	if view.State != reply.StateTargeting || view.Content != "root" {
		t.Fatalf("unexpected view %+v", view)
	}

	child, err := f.svc.PostComment(ctx, PostInput{ItemID: f.itemA, AuthorID: f.author, Content: "answer", SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("post reply: %v", err)
	}
	if child.ParentID == nil || *child.ParentID != root.ID {
		t.Fatalf("expected reply under root, got %+v", child)
	}

	view, _ = f.svc.ReplyState(ctx, "sess-1")
	if view.State != reply.StateIdle {
		t.Fatalf("session should be idle after submit, got %+v", view)
	}
}

func TestStartCancelSubmitIsTopLevel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	root := f.post(t, f.itemA, "root", nil)

	if _, err := f.svc.StartReply(ctx, "s", root.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	view, err := f.svc.CancelReply(ctx, "s")
	if err != nil || view.State != reply.StateIdle {
		t.Fatalf("cancel: %+v %v", view, err)
	}

	c, err := f.svc.PostComment(ctx, PostInput{ItemID: f.itemA, AuthorID: f.author, Content: "top", SessionID: "s"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if c.ParentID != nil {
		t.Fatalf("expected top-level comment, got parent %d", *c.ParentID)
	}
}

func TestFailedSubmitKeepsReplyTarget(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	onB := f.post(t, f.itemB, "on b", nil)

	if _, err := f.svc.StartReply(ctx, "s", onB.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// replying to an item-B comment from item A fails validation
	_, err := f.svc.PostComment(ctx, PostInput{ItemID: f.itemA, AuthorID: f.author, Content: "oops", SessionID: "s"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	view, _ := f.svc.ReplyState(ctx, "s")
	if view.State != reply.StateTargeting || view.CommentID == nil || *view.CommentID != onB.ID {
		t.Fatalf("target should be preserved, got %+v", view)
	}

	// empty content is rejected before the session is touched
	_, err = f.svc.PostComment(ctx, PostInput{ItemID: f.itemB, AuthorID: f.author, Content: "", SessionID: "s"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	view, _ = f.svc.ReplyState(ctx, "s")
	if view.State != reply.StateTargeting {
		t.Fatalf("target should survive empty content")
	}
}

func TestStartReplyUnknownComment(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.StartReply(context.Background(), "s", 12345); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.svc.StartReply(context.Background(), "", 1); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for missing session, got %v", err)
	}
}
