package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/nearbuy/internal/apperr"
	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/model"
	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/reply"
	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/storage"
	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/thread"
)

const (
	maxContentLen   = 2000
	maxSessionIDLen = 128
)

type commentService struct {
	repo     storage.Repository
	items    ItemChecker
	sessions reply.Store
	log      zerolog.Logger
}

func New(repo storage.Repository, items ItemChecker, sessions reply.Store, log zerolog.Logger) CommentService {
	return &commentService{
		repo:     repo,
		items:    items,
		sessions: sessions,
		log:      log.With().Str("component", "comment").Logger(),
	}
}

func (s *commentService) ListComments(ctx context.Context, itemID uuid.UUID) (model.Thread, error) {
	if err := s.requireItem(ctx, itemID); err != nil {
		return model.Thread{}, err
	}

	flat, err := s.repo.ListByItem(ctx, itemID)
	if err != nil {
		return model.Thread{}, err
	}

	forest, anomalies := thread.Build(flat, itemID)
	s.reportAnomalies(itemID, anomalies)

	return model.Thread{
		ItemID:    itemID,
		Items:     forest,
		Count:     thread.Count(forest),
		Anomalies: anomalies,
	}, nil
}

func (s *commentService) reportAnomalies(itemID uuid.UUID, anomalies []model.Anomaly) {
	for _, a := range anomalies {
		if !a.Kind.Fatal() {
			s.log.Warn().
				Str("item_id", itemID.String()).
				Int64("comment_id", a.CommentID).
				Str("kind", string(a.Kind)).
				Msg("comment attached to top level")
		}
	}
	if err := thread.Err(anomalies); err != nil {
		s.log.Error().
			Err(err).
			Str("item_id", itemID.String()).
			Msg("comment thread is inconsistent")
	}
}

func (s *commentService) PostComment(ctx context.Context, in PostInput) (model.Comment, error) {
	if err := validateContent(in.Content); err != nil {
		return model.Comment{}, err
	}
	if in.AuthorID == uuid.Nil {
		return model.Comment{}, fmt.Errorf("%w: author is required", apperr.ErrValidation)
	}
	if err := s.requireItem(ctx, in.ItemID); err != nil {
		return model.Comment{}, err
	}

	create := func(content string, parentID *int64) (model.Comment, error) {
		return s.create(ctx, in.ItemID, in.AuthorID, content, parentID)
	}

	if in.ParentID != nil || in.SessionID == "" {
		return create(strings.TrimSpace(in.Content), in.ParentID)
	}

	if err := validateSessionID(in.SessionID); err != nil {
		return model.Comment{}, err
	}

	var created model.Comment
	err := s.sessions.Update(ctx, in.SessionID, func(sess *reply.Session) error {
		c, err := sess.Submit(in.Content, create)
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return model.Comment{}, err
	}
	return created, nil
}

func (s *commentService) create(ctx context.Context, itemID, authorID uuid.UUID, content string, parentID *int64) (model.Comment, error) {
	if parentID != nil {
		parent, err := s.repo.Get(ctx, *parentID)
		if errors.Is(err, apperr.ErrNotFound) {
			return model.Comment{}, fmt.Errorf("%w: parent comment %d does not exist", apperr.ErrValidation, *parentID)
		}
		if err != nil {
			return model.Comment{}, err
		}
		if parent.ItemID != itemID {
			return model.Comment{}, fmt.Errorf("%w: parent comment %d belongs to another item", apperr.ErrValidation, *parentID)
		}
	}

	c, err := s.repo.Create(ctx, model.Comment{
		ItemID:   itemID,
		AuthorID: authorID,
		ParentID: parentID,
		Content:  content,
	})
	if err != nil {
		return model.Comment{}, err
	}

	ev := s.log.Debug().Int64("comment_id", c.ID).Str("item_id", itemID.String())
	if parentID != nil {
		ev = ev.Int64("parent_id", *parentID)
	}
	ev.Msg("comment created")
	return c, nil
}

func (s *commentService) StartReply(ctx context.Context, sessionID string, commentID int64) (reply.View, error) {
	if err := validateSessionID(sessionID); err != nil {
		return reply.View{}, err
	}
	if commentID <= 0 {
		return reply.View{}, fmt.Errorf("%w: comment id must be positive", apperr.ErrValidation)
	}

	target, err := s.repo.Get(ctx, commentID)
	if errors.Is(err, apperr.ErrNotFound) {
		return reply.View{}, fmt.Errorf("comment %d: %w", commentID, apperr.ErrNotFound)
	}
	if err != nil {
		return reply.View{}, err
	}

	var view reply.View
	err = s.sessions.Update(ctx, sessionID, func(sess *reply.Session) error {
		sess.StartReply(target.ID, target.Content)
		view = sess.View()
		return nil
	})
	return view, err
}

func (s *commentService) CancelReply(ctx context.Context, sessionID string) (reply.View, error) {
	if err := validateSessionID(sessionID); err != nil {
		return reply.View{}, err
	}

	var view reply.View
	err := s.sessions.Update(ctx, sessionID, func(sess *reply.Session) error {
		sess.CancelReply()
		view = sess.View()
		return nil
	})
	return view, err
}

func (s *commentService) ReplyState(ctx context.Context, sessionID string) (reply.View, error) {
	if err := validateSessionID(sessionID); err != nil {
		return reply.View{}, err
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return reply.View{}, err
	}
	return sess.View(), nil
}

func (s *commentService) requireItem(ctx context.Context, itemID uuid.UUID) error {
	if itemID == uuid.Nil {
		return fmt.Errorf("%w: item id is required", apperr.ErrValidation)
	}
	ok, err := s.items.Exists(ctx, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("item %s: %w", itemID, apperr.ErrNotFound)
	}
	return nil
}

func validateContent(text string) error {
	t := strings.TrimSpace(text)
	if t == "" {
		return fmt.Errorf("%w: content is required", apperr.ErrValidation)
	}
	if len(t) > maxContentLen {
		return fmt.Errorf("%w: content is longer than %d characters", apperr.ErrValidation, maxContentLen)
	}
	return nil
}

func validateSessionID(id string) error {
	if id == "" || len(id) > maxSessionIDLen {
		return fmt.Errorf("%w: session id is required", apperr.ErrValidation)
	}
	return nil
}
