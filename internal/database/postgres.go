package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

const connectAttempts = 10

// Open connects through the pgx stdlib driver, retrying while Postgres
// is still starting up.
func Open(ctx context.Context, databaseURL string, log zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			log.Info().Int("attempt", attempt).Msg("database connected")
			return db, nil
		}

		log.Warn().Err(err).Int("attempt", attempt).Msg("database ping failed")
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("failed to connect after %d attempts: %w", connectAttempts, err)
}
