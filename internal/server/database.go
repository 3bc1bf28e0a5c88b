package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/permit-compliance/internal/common"
	repo "github.com/joseph-ayodele/permit-compliance/internal/repository"
)

// Store is the document store behind the API, backed by Postgres or SQLite.
type Store interface {
	Documents() repo.DocumentRepository
	Reviews() repo.ReviewRepository
	Ping(ctx context.Context) error
	Close() error
}

// ConnectStore opens the store selected by cfg.Driver and brings its schema
// up to date.
func ConnectStore(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "sqlite":
		s, err := repo.OpenSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres", "":
		s, err := connectPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

type pgStore struct {
	pool   *pgxpool.Pool
	docs   repo.DocumentRepository
	revs   repo.ReviewRepository
	logger *slog.Logger
}

func connectPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*pgStore, error) {
	logger.Info("connecting to database", "driver", "postgres")
	pool, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.DSN,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := repo.Migrate(pool, logger); err != nil {
		repo.Close(pool, logger)
		return nil, err
	}
	return &pgStore{
		pool:   pool,
		docs:   repo.NewPgDocumentRepository(pool, logger),
		revs:   repo.NewPgReviewRepository(pool, logger),
		logger: logger,
	}, nil
}

func (s *pgStore) Documents() repo.DocumentRepository { return s.docs }
func (s *pgStore) Reviews() repo.ReviewRepository     { return s.revs }

func (s *pgStore) Ping(ctx context.Context) error {
	return repo.HealthCheck(ctx, s.pool, 3*time.Second, s.logger)
}

func (s *pgStore) Close() error {
	repo.Close(s.pool, s.logger)
	return nil
}

// PingDB pings the store to ensure it's responsive
func PingDB(ctx context.Context, store Store, logger *slog.Logger, timeout time.Duration) error {
	logger.Debug("pinging database")
	ctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		return err
	}
	logger.Debug("database ping successful")
	return nil
}
