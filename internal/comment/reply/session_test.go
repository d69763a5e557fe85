package reply

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/MyNameIsWhaaat/nearbuy/internal/apperr"
	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/model"
)

type recorder struct {
	calls   int
	parent  *int64
	content string
	err     error
}

func (r *recorder) create(content string, parentID *int64) (model.Comment, error) {
	r.calls++
	r.parent = parentID
	r.content = content
	if r.err != nil {
		return model.Comment{}, r.err
	}
	return model.Comment{ID: 99, ParentID: parentID, Content: content}, nil
}

func TestStartThenCancelGivesTopLevel(t *testing.T) {
	var s Session
	s.StartReply(7, "original")
	if s.State() != StateTargeting {
		t.Fatalf("expected targeting, got %s", s.State())
	}
	s.CancelReply()
	if s.State() != StateIdle {
		t.Fatalf("expected idle after cancel, got %s", s.State())
	}

	rec := &recorder{}
	c, err := s.Submit("hello", rec.create)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.parent != nil || c.ParentID != nil {
		t.Fatalf("expected top-level comment, got parent %v", rec.parent)
	}
}

func TestCancelFromIdleIsNoop(t *testing.T) {
	var s Session
	s.CancelReply()
	if s.State() != StateIdle {
		t.Fatalf("expected idle")
	}
}

func TestStartReplyOverridesTarget(t *testing.T) {
	var s Session
	s.StartReply(1, "first")
	s.StartReply(2, "second")

	tgt, ok := s.Target()
	if !ok || tgt.CommentID != 2 || tgt.Content != "second" {
		t.Fatalf("unexpected target %+v", tgt)
	}
}

func TestSubmitUsesTargetAndResets(t *testing.T) {
	var s Session
	s.StartReply(5, "parent text")

	rec := &recorder{}
	if _, err := s.Submit("  reply  ", rec.create); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.parent == nil || *rec.parent != 5 {
		t.Fatalf("expected parent 5, got %v", rec.parent)
	}
	if rec.content != "reply" {
		t.Fatalf("expected trimmed content, got %q", rec.content)
	}
	if s.State() != StateIdle {
		t.Fatalf("expected idle after successful submit")
	}
}

func TestSubmitEmptyContentRejected(t *testing.T) {
	var s Session
	s.StartReply(5, "parent text")

	rec := &recorder{}
	_, err := s.Submit("   ", rec.create)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if rec.calls != 0 {
		t.Fatalf("create must not run for empty content")
	}
	if s.State() != StateTargeting {
		t.Fatalf("state must not change on rejected content")
	}
}

func TestSubmitFailureKeepsTarget(t *testing.T) {
	var s Session
	s.StartReply(5, "parent text")

	rec := &recorder{err: errors.New("db down")}
	if _, err := s.Submit("retry me", rec.create); err == nil {
		t.Fatalf("expected error")
	}
	tgt, ok := s.Target()
	if !ok || tgt.CommentID != 5 {
		t.Fatalf("target should survive a failed submit")
	}
}

func TestSessionJSON(t *testing.T) {
	var s Session
	s.StartReply(11, "quoted")

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Session
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	tgt, ok := back.Target()
	if !ok || tgt.CommentID != 11 || tgt.Content != "quoted" {
		t.Fatalf("unexpected decoded target %+v", tgt)
	}

	idle, _ := json.Marshal(Session{})
	if string(idle) != `{"state":"idle"}` {
		t.Fatalf("unexpected idle encoding %s", idle)
	}
}
