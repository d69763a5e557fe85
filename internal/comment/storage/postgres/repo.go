package postgres

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MyNameIsWhaaat/nearbuy/internal/apperr"
	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/model"
)

var commentColumns = []string{"id", "item_id", "author_id", "parent_id", "content", "created_at"}

type Repo struct {
	db  *sql.DB
	psq sq.StatementBuilderType
}

func New(db *sql.DB) *Repo {
	return &Repo{
		db:  db,
		psq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *Repo) Create(ctx context.Context, c model.Comment) (model.Comment, error) {
	var parent sql.NullInt64
	if c.ParentID != nil {
		parent = sql.NullInt64{Int64: *c.ParentID, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO comments(item_id, author_id, parent_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, item_id, author_id, parent_id, content, created_at
	`, c.ItemID, c.AuthorID, parent, c.Content)

	return scanComment(row)
}

func (r *Repo) Get(ctx context.Context, id int64) (model.Comment, error) {
	query, args, err := r.psq.
		Select(commentColumns...).
		From("comments").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Comment{}, err
	}

	c, err := scanComment(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Comment{}, apperr.ErrNotFound
	}
	return c, err
}

// ListByItem runs as a single statement, so the rows form one snapshot.
func (r *Repo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]model.Comment, error) {
	query, args, err := r.psq.
		Select(commentColumns...).
		From("comments").
		Where(sq.Eq{"item_id": itemID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Comment, 0, 64)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComment(s scanner) (model.Comment, error) {
	var (
		c      model.Comment
		parent sql.NullInt64
	)
	if err := s.Scan(&c.ID, &c.ItemID, &c.AuthorID, &parent, &c.Content, &c.CreatedAt); err != nil {
		return model.Comment{}, err
	}
	if parent.Valid {
		p := parent.Int64
		c.ParentID = &p
	}
	return c, nil
}
