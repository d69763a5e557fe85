package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MyNameIsWhaaat/nearbuy/internal/apperr"
	"github.com/MyNameIsWhaaat/nearbuy/internal/geo"
	"github.com/MyNameIsWhaaat/nearbuy/internal/paging"
	"github.com/MyNameIsWhaaat/nearbuy/internal/product/model"
)

// haversineSQL expects origin lat, origin lat, origin lon.
var haversineSQL = fmt.Sprintf(`2 * %f * asin(sqrt(least(1,
	power(sin(radians(lat - ?) / 2), 2) +
	cos(radians(?)) * cos(radians(lat)) * power(sin(radians(lon - ?) / 2), 2))))`, geo.EarthRadiusMeters)

var itemColumns = []string{
	"id", "name", "price::float8", "lat", "lon", "address", "image_url", "owner_id", "created_at",
}

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

func (r *Repo) Create(ctx context.Context, item model.Item) (model.Item, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	query, args, err := r.psq.
		Insert("items").
		Columns("id", "name", "price", "lat", "lon", "address", "image_url", "owner_id").
		Values(item.ID, item.Name, item.Price, item.Location.Lat, item.Location.Lon, item.Address, item.ImageURL, item.OwnerID).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return model.Item{}, err
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&item.CreatedAt); err != nil {
		return model.Item{}, err
	}
	return item, nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (model.Item, error) {
	query, args, err := r.psq.
		Select(itemColumns...).
		From("items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Item{}, err
	}

	it, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, apperr.ErrNotFound
	}
	return it, err
}

func (r *Repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM items WHERE id=$1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *Repo) Nearby(ctx context.Context, origin geo.Point, req paging.Request) (paging.Result[model.NearbyItem], error) {
	// count and page must come from the same snapshot
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return paging.Result[model.NearbyItem]{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM items`).Scan(&total); err != nil {
		return paging.Result[model.NearbyItem]{}, err
	}

	if total == 0 || req.Offset() >= total {
		return paging.NewResult[model.NearbyItem](nil, req, total), nil
	}

	query, args, err := r.psq.
		Select(itemColumns...).
		Column(sq.Alias(sq.Expr(haversineSQL, origin.Lat, origin.Lat, origin.Lon), "distance_m")).
		From("items").
		OrderBy("distance_m ASC", "created_at ASC", "id ASC").
		Limit(uint64(req.Size)).
		Offset(uint64(req.Offset())).
		ToSql()
	if err != nil {
		return paging.Result[model.NearbyItem]{}, err
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return paging.Result[model.NearbyItem]{}, err
	}
	defer rows.Close()

	items := make([]model.NearbyItem, 0, req.Size)
	for rows.Next() {
		var n model.NearbyItem
		if err := rows.Scan(
			&n.ID, &n.Name, &n.Price, &n.Location.Lat, &n.Location.Lon,
			&n.Address, &n.ImageURL, &n.OwnerID, &n.CreatedAt, &n.DistanceM,
		); err != nil {
			return paging.Result[model.NearbyItem]{}, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return paging.Result[model.NearbyItem]{}, err
	}

	return paging.NewResult(items, req, total), nil
}

func scanItem(row *sql.Row) (model.Item, error) {
	var it model.Item
	err := row.Scan(
		&it.ID, &it.Name, &it.Price, &it.Location.Lat, &it.Location.Lon,
		&it.Address, &it.ImageURL, &it.OwnerID, &it.CreatedAt,
	)
	return it, err
}
