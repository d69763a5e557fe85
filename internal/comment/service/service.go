package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/model"
	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/reply"
)

type CommentService interface {
	ListComments(ctx context.Context, itemID uuid.UUID) (model.Thread, error)
	PostComment(ctx context.Context, in PostInput) (model.Comment, error)
	StartReply(ctx context.Context, sessionID string, commentID int64) (reply.View, error)
	CancelReply(ctx context.Context, sessionID string) (reply.View, error)
	ReplyState(ctx context.Context, sessionID string) (reply.View, error)
}

// ItemChecker reports whether an item exists.
type ItemChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PostInput describes a new comment. An explicit ParentID wins over the
// reply session; with neither the comment is top level.
type PostInput struct {
	ItemID    uuid.UUID
	AuthorID  uuid.UUID
	Content   string
	SessionID string
	ParentID  *int64
}
