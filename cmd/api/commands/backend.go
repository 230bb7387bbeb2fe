package commands

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/daybook/core/internal/adapters/localstore"
	"github.com/daybook/core/internal/adapters/memory"
	"github.com/daybook/core/internal/adapters/repository"
	"github.com/daybook/core/internal/application/retry"
	"github.com/daybook/core/internal/infrastructure/cache"
	"github.com/daybook/core/internal/infrastructure/config"
	"github.com/daybook/core/internal/infrastructure/database"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/infrastructure/metrics"
	"github.com/daybook/core/internal/infrastructure/server"
)

// openBackend connects every store the server reads from or writes to.
// The returned cleanup closes them in reverse order.
func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics, migrate bool) (server.Backend, func(), error) {
	var (
		backend server.Backend
		closers []func() error
	)
	backend.Checks = map[string]server.HealthCheck{}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warnw("Failed to close resource", "error", err)
			}
		}
	}

	if cfg.Database.InMemory() {
		log.Warnw("Using in-memory remote store; data is lost on restart")
		store := memory.New(nil)
		backend.Users = store.Users()
		backend.Notes = store.Notes()
		backend.FutureTasks = store.FutureTasks()
		backend.Payroll = store.Payroll()
		backend.WorkTracking = store.WorkTracking()
		backend.SpecialDays = store.SpecialDays()
	} else {
		if migrate {
			if err := migrateUp(cfg.Database, log); err != nil {
				return backend, cleanup, err
			}
		}

		db, err := database.New(cfg.Database)
		if err != nil {
			return backend, cleanup, fmt.Errorf("connect to database: %w", err)
		}
		closers = append(closers, db.Close)

		backend.Users = repository.NewUserRepository(db.DB)
		backend.Notes = repository.NewNoteRepository(db.DB, log)
		backend.FutureTasks = repository.NewFutureTaskRepository(db.DB, log)
		backend.Payroll = repository.NewPayrollRepository(db.DB, log)
		backend.WorkTracking = repository.NewWorkTrackingRepository(db.DB, log)
		backend.SpecialDays = repository.NewSpecialDayRepository(db.DB, log)
		backend.Checks["database"] = db.HealthCheck
		backend.Stats = db.GetConnectionInfo
	}

	switch cfg.Cache.Backend {
	case "redis":
		policy := retry.New(cfg.Sync.RetryCount, cfg.Sync.RetryDelay, retry.WithLogger(log), retry.WithMetrics(m))
		client, err := retry.Do(ctx, policy, func(ctx context.Context) (*redis.Client, error) {
			return cache.NewRedisClient(ctx, cfg.Redis)
		})
		if err != nil {
			cleanup()
			return backend, func() {}, fmt.Errorf("connect to redis: %w", err)
		}
		closers = append(closers, client.Close)

		store := cache.NewRedisStore(client, log, m)
		backend.Cache = store
		backend.Checks["cache"] = store.Ping
	default:
		backend.Cache = cache.NewStore(nil, log, m)
	}

	local, err := localstore.Open(cfg.LocalStore.Path)
	if err != nil {
		cleanup()
		return backend, func() {}, err
	}
	closers = append(closers, local.Close)
	backend.Fallback = local
	backend.Checks["local_store"] = local.Ping

	return backend, cleanup, nil
}

// migrateUp runs on its own connection; closing the migrator closes it.
func migrateUp(cfg config.DatabaseConfig, log *logger.Logger) error {
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db)
	if err != nil {
		return err
	}
	defer migrator.Close()

	changed, err := migrator.Up()
	if err != nil {
		return err
	}
	version, _, _ := migrator.Version()
	log.Infow("Database schema ready", "version", version, "migrated", changed)
	return nil
}
