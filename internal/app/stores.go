package app

import (
	"context"
	"fmt"

	"github.com/dafibh/giderler/giderler-backend/internal/config"
	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	mongostore "github.com/dafibh/giderler/giderler-backend/internal/repository/mongo"
	"github.com/dafibh/giderler/giderler-backend/internal/repository/postgres"
	"github.com/dafibh/giderler/giderler-backend/internal/repository/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Stores holds the opened record and receipt backends
type Stores struct {
	Records  domain.RecordStore
	Receipts domain.ObjectStore
	closers  []func()
}

// OpenStores connects the record store selected by cfg.StoreBackend and the
// receipt store selected by cfg.ObjectStore concurrently. Receipts is nil
// when receipt storage is disabled.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	s := &Stores{}

	// Clients outlive this call, so they get ctx rather than a group context
	var g errgroup.Group
	g.Go(func() error {
		return s.openRecords(ctx, cfg)
	})
	g.Go(func() error {
		receipts, err := OpenReceiptStore(ctx, cfg)
		s.Receipts = receipts
		return err
	})

	if err := g.Wait(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Stores) openRecords(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return fmt.Errorf("failed to ping database: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		s.Records = postgres.NewDocumentStore(pool)
		log.Info().Msg("Connected to PostgreSQL")

	case config.StoreMongo:
		client, err := mongostore.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("Failed to disconnect from MongoDB")
			}
		})
		s.Records = mongostore.NewDocumentStore(client.Database(cfg.Mongo.Database))
		log.Info().Str("database", cfg.Mongo.Database).Msg("Connected to MongoDB")

	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", cfg.StoreBackend)
	}
	return nil
}

// OpenReceiptStore returns the configured receipt store, or nil when
// OBJECT_STORE is none
func OpenReceiptStore(ctx context.Context, cfg *config.Config) (domain.ObjectStore, error) {
	switch cfg.ObjectStore {
	case config.ObjectStoreNone, "":
		log.Warn().Msg("Receipt storage disabled, uploads will be rejected")
		return nil, nil

	case config.ObjectStoreS3:
		store, err := storage.NewS3ReceiptStore(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Receipt storage: S3")
		return store, nil

	case config.ObjectStoreMinIO:
		store, err := storage.NewMinIOReceiptStore(ctx, cfg.MinIO)
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", cfg.MinIO.BucketName).Msg("Receipt storage: MinIO")
		return store, nil
	}
	return nil, fmt.Errorf("unsupported OBJECT_STORE %q", cfg.ObjectStore)
}

// Close releases every backend in reverse order of opening
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
