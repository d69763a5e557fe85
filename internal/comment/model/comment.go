package model

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        int64     `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	ParentID  *int64    `json:"parent_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Comment) IsTopLevel() bool {
	return c.ParentID == nil
}

type CommentNode struct {
	Comment
	Children []CommentNode `json:"children"`
}
