//go:build wireinject
// +build wireinject

package wire

import (
	"log/slog"
	"sync"
	"time"

	"fleet-sync-server/cmd/config"
	"fleet-sync-server/internal/driver_sync/communication"
	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/driver_sync/persistence"
	"fleet-sync-server/internal/driver_sync/usecases"
	"fleet-sync-server/internal/infra/cache"
	"fleet-sync-server/internal/infra/sql"
	"fleet-sync-server/internal/infra/utils"
	"fleet-sync-server/internal/logger"
)

var (
	databaseOnce sync.Once
	database     sql.ORM
	cacheOnce    sync.Once
	sharedCache  cache.Cache
)

const _scheduleCheckInterval = time.Minute

func provideAppConfig() config.AppConfig {
	return config.LoadConfig()
}

func provideLogger(cfg config.AppConfig) logger.Logger {
	return logger.NewLogger(cfg.General.LogLevel)
}

// provideDatabase opens the store once per process. Postgres wins over a
// sqlite file, which wins over an in-memory database.
func provideDatabase(cfg config.AppConfig) sql.ORM {
	databaseOnce.Do(func() {
		var err error
		switch {
		case cfg.Database.DSN != "":
			database, err = sql.NewPosgreORM(cfg.Database.DSN)
		case cfg.Database.SQLitePath != "":
			database, err = sql.NewSQLiteORM(cfg.Database.SQLitePath)
		default:
			slog.Warn("no database configured, using an in-memory store")
			database, err = sql.NewMemoryORM("fleet-sync")
		}
		if err != nil {
			panic(err)
		}
	})
	return database
}

// provideCache shares one cache between the rate limit gate and the driver
// repository. Redis makes the gate visible to every replica.
func provideCache(cfg config.AppConfig) cache.Cache {
	cacheOnce.Do(func() {
		if cfg.Redis.Addr != "" {
			redisConfig := cache.DefaultRedisConfig()
			redisConfig.Addr = cfg.Redis.Addr
			redisConfig.Password = cfg.Redis.Password
			redisConfig.DB = cfg.Redis.DB
			redisCache, err := cache.NewRedisCache(redisConfig)
			if err != nil {
				panic(err)
			}
			sharedCache = redisCache
			return
		}

		ristrettoCache, err := cache.New(cache.DefaultConfig())
		if err != nil {
			panic(err)
		}
		sharedCache = ristrettoCache
	})
	return sharedCache
}

func provideSyncSettings(cfg config.AppConfig) (domain.SyncSettings, error) {
	var location *time.Location
	if cfg.STC.Timezone != "" {
		loc, err := utils.LoadTimezone(cfg.STC.Timezone)
		if err != nil {
			return domain.SyncSettings{}, err
		}
		location = loc
	}
	return cfg.Sync.Settings(location), nil
}

func provideHTTPTransportConfig(cfg config.AppConfig) communication.HTTPTransportConfig {
	return communication.HTTPTransportConfig{
		BaseURL:           cfg.STC.BaseURL,
		Key:               cfg.STC.Key,
		Timeout:           cfg.STC.Timeout,
		RequestsPerSecond: cfg.STC.RequestsPerSecond,
		Burst:             cfg.STC.Burst,
	}
}

func provideInventorySyncConfig(cfg config.AppConfig) usecases.InventorySyncConfig {
	return usecases.InventorySyncConfig{
		FilterParam: cfg.Inventory.FilterParam,
		Filters:     cfg.Inventory.Filters,
	}
}

func provideSyncSchedules(cfg config.AppConfig) usecases.SyncSchedules {
	return usecases.SyncSchedules{
		Drivers:   cfg.Sync.Schedule,
		Inventory: cfg.Inventory.Schedule,
	}
}

func provideDriverRepository(repository *persistence.SimpleDriverRepository, c cache.Cache) usecases.DriverRepository {
	return persistence.NewCachedDriverRepository(repository, c)
}

func provideTicker() *time.Ticker {
	return time.NewTicker(_scheduleCheckInterval)
}
