package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"deepcrawler/internal/config"
	"deepcrawler/internal/db"
	"deepcrawler/internal/repository"
	"deepcrawler/internal/repository/sqlite"
)

// Store agrupa los repositorios del backend elegido en la configuración.
type Store struct {
	Driver   string
	Users    repository.UserRepository
	Sessions repository.SessionRepository
	Messages repository.MessageRepository

	ping  func(ctx context.Context) error
	close func()
}

// Open conecta con Postgres o SQLite según DB_DRIVER y aplica el esquema.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		logger.Info("store ready", zap.String("driver", cfg.DBDriver))
		return &Store{
			Driver:   cfg.DBDriver,
			Users:    repository.NewPgUserRepository(pool),
			Sessions: repository.NewPgSessionRepository(pool),
			Messages: repository.NewPgMessageRepository(pool),
			ping:     func(ctx context.Context) error { return db.Ping(ctx, pool) },
			close:    pool.Close,
		}, nil

	case config.DriverSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite open: %w", err)
		}
		logger.Info("store ready", zap.String("driver", cfg.DBDriver), zap.String("path", cfg.SQLitePath))
		return &Store{
			Driver:   cfg.DBDriver,
			Users:    sqlite.NewUserRepository(conn),
			Sessions: sqlite.NewSessionRepository(conn),
			Messages: sqlite.NewMessageRepository(conn),
			ping:     conn.PingContext,
			close:    func() { _ = conn.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}
