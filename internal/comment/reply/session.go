// Package reply tracks which comment a client is currently answering.
//
// A Session is either Idle or Targeting a comment. Submitting a reply
// consumes the target as the new comment's parent; the session drops back
// to Idle only when the comment was actually created, so a failed submit
// can be retried without picking the target again.
package reply

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MyNameIsWhaaat/nearbuy/internal/apperr"
	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/model"
)

type State string

const (
	StateIdle      State = "idle"
	StateTargeting State = "targeting"
)

type Target struct {
	CommentID int64
	Content   string
}

type Session struct {
	target *Target
}

func (s *Session) State() State {
	if s.target == nil {
		return StateIdle
	}
	return StateTargeting
}

func (s *Session) Target() (Target, bool) {
	if s.target == nil {
		return Target{}, false
	}
	return *s.target, true
}

// StartReply targets commentID, replacing any earlier target.
func (s *Session) StartReply(commentID int64, content string) {
	s.target = &Target{CommentID: commentID, Content: content}
}

func (s *Session) CancelReply() {
	s.target = nil
}

// CreateFunc persists a comment with the given parent (nil for top level).
type CreateFunc func(content string, parentID *int64) (model.Comment, error)

func (s *Session) Submit(content string, create CreateFunc) (model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Comment{}, fmt.Errorf("%w: content is required", apperr.ErrValidation)
	}

	var parentID *int64
	if s.target != nil {
		id := s.target.CommentID
		parentID = &id
	}

	c, err := create(content, parentID)
	if err != nil {
		return model.Comment{}, err
	}

	s.target = nil
	return c, nil
}

// View is the serialized form of a session.
type View struct {
	State     State  `json:"state"`
	CommentID *int64 `json:"comment_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

func (s Session) View() View {
	if s.target == nil {
		return View{State: StateIdle}
	}
	id := s.target.CommentID
	return View{State: StateTargeting, CommentID: &id, Content: s.target.Content}
}

func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.View())
}

func (s *Session) UnmarshalJSON(b []byte) error {
	var v View
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	s.target = nil
	if v.State == StateTargeting && v.CommentID != nil {
		s.target = &Target{CommentID: *v.CommentID, Content: v.Content}
	}
	return nil
}
