package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	commenthttp "github.com/MyNameIsWhaaat/nearbuy/internal/comment/handler/http"
	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/reply"
	commentservice "github.com/MyNameIsWhaaat/nearbuy/internal/comment/service"
	commentstorage "github.com/MyNameIsWhaaat/nearbuy/internal/comment/storage"
	commentmem "github.com/MyNameIsWhaaat/nearbuy/internal/comment/storage/inmemory"
	commentpg "github.com/MyNameIsWhaaat/nearbuy/internal/comment/storage/postgres"
	"github.com/MyNameIsWhaaat/nearbuy/internal/config"
	"github.com/MyNameIsWhaaat/nearbuy/internal/database"
	"github.com/MyNameIsWhaaat/nearbuy/internal/logger"
	producthttp "github.com/MyNameIsWhaaat/nearbuy/internal/product/handler/http"
	productservice "github.com/MyNameIsWhaaat/nearbuy/internal/product/service"
	productstorage "github.com/MyNameIsWhaaat/nearbuy/internal/product/storage"
	productmem "github.com/MyNameIsWhaaat/nearbuy/internal/product/storage/inmemory"
	productpg "github.com/MyNameIsWhaaat/nearbuy/internal/product/storage/postgres"
	"github.com/MyNameIsWhaaat/nearbuy/internal/server"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("nearbuy stopped")
	}
	log.Info().Msg("nearbuy stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	items, comments, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	sessions, closeSessions, err := openSessions(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSessions()

	products := productservice.New(items, log, productservice.Options{
		PageSize:  cfg.PageSize,
		CacheSize: cfg.Cache.Size,
		CacheTTL:  cfg.Cache.TTL,
	})
	threads := commentservice.New(comments, products, sessions, log)

	srv := server.New(cfg.Addr(), server.Routes(
		producthttp.New(products, log),
		commenthttp.New(threads, log),
		log,
	))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (productstorage.Repository, commentstorage.Repository, func(), error) {
	switch cfg.Storage {
	case "memory":
		return productmem.New(), commentmem.New(), func() {}, nil
	case "postgres":
		db, err := database.Open(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.RunMigrations(ctx, db, log); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return productpg.New(db), commentpg.New(db), closeDB(db, log), nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}
}

func closeDB(db *sql.DB, log zerolog.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}
}

func openSessions(ctx context.Context, cfg *config.Config, log zerolog.Logger) (reply.Store, func(), error) {
	if cfg.Redis.Addr == "" {
		return reply.NewMemoryStore(cfg.Redis.SessionTTL), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("reply sessions stored in redis")

	return reply.NewRedisStore(rdb, cfg.Redis.SessionTTL), func() { _ = rdb.Close() }, nil
}
