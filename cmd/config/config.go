package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"fleet-sync-server/internal/driver_sync/domain"

	"github.com/spf13/viper"
)

var loadConfigOnce sync.Once
var configInstance AppConfig

func LoadConfig() AppConfig {
	loadConfigOnce.Do(func() {
		configInstance = mustLoad(viper.GetViper())
	})

	return configInstance
}

func mustLoad(v *viper.Viper) AppConfig {
	v.SetEnvPrefix("fleet_sync")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigName("server")
	v.AddConfigPath("config")
	v.AddConfigPath("/config")
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.log_level", "info")
	v.SetDefault("http.addr", ":3000")
	v.SetDefault("stc.timeout", 30*time.Second)
	v.SetDefault("stc.burst", 1)
	v.SetDefault("sync.queue_confirmation_window", domain.DefaultQueueConfirmationWindow)
	v.SetDefault("sync.wait_after_list_request", domain.DefaultWaitAfterListRequest)
	v.SetDefault("sync.insert_page_size", domain.DefaultInsertPageSize)
	v.SetDefault("sync.max_attempts", domain.DefaultMaxAttempts)
	v.SetDefault("sync.retry_initial_interval", domain.DefaultRetryInitialInterval)
	v.SetDefault("sync.retry_max_interval", domain.DefaultRetryMaxInterval)
	v.SetDefault("sync.queue_poll_interval", domain.DefaultQueuePollInterval)
	v.SetDefault("sync.max_queue_polls", domain.DefaultMaxQueuePolls)
	v.SetDefault("inventory.filter_param", "filter")
}

func fromViper(v *viper.Viper) AppConfig {
	return AppConfig{
		General: GeneralConfig{
			LogLevel: v.GetString("general.log_level"),
		},
		HTTP: HTTPConfig{
			Addr:           v.GetString("http.addr"),
			AllowedOrigins: v.GetStringSlice("http.allowed_origins"),
		},
		Database: DatabaseConfig{
			DSN:        v.GetString("database.dsn"),
			SQLitePath: v.GetString("database.sqlite_path"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		STC: STCConfig{
			BaseURL:           v.GetString("stc.base_url"),
			Key:               v.GetString("stc.key"),
			Timeout:           v.GetDuration("stc.timeout"),
			RequestsPerSecond: v.GetFloat64("stc.requests_per_second"),
			Burst:             v.GetInt("stc.burst"),
			Timezone:          v.GetString("stc.timezone"),
		},
		Sync: SyncConfig{
			QueueConfirmationWindow: v.GetDuration("sync.queue_confirmation_window"),
			WaitAfterListRequest:    v.GetDuration("sync.wait_after_list_request"),
			InsertPageSize:          v.GetInt("sync.insert_page_size"),
			MaxAttempts:             v.GetInt("sync.max_attempts"),
			RetryInitialInterval:    v.GetDuration("sync.retry_initial_interval"),
			RetryMaxInterval:        v.GetDuration("sync.retry_max_interval"),
			QueuePollInterval:       v.GetDuration("sync.queue_poll_interval"),
			MaxQueuePolls:           v.GetInt("sync.max_queue_polls"),
			Schedule:                v.GetString("sync.schedule"),
		},
		Inventory: InventoryConfig{
			FilterParam: v.GetString("inventory.filter_param"),
			Filters:     v.GetStringSlice("inventory.filters"),
			Schedule:    v.GetString("inventory.schedule"),
		},
	}
}

type AppConfig struct {
	General   GeneralConfig
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	STC       STCConfig
	Sync      SyncConfig
	Inventory InventoryConfig
}

type GeneralConfig struct {
	LogLevel string
}

type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
}

// DatabaseConfig selects the store: postgres when DSN is set, then a sqlite
// file, then an in-memory database.
type DatabaseConfig struct {
	DSN        string
	SQLitePath string
}

// RedisConfig is optional. When Addr is empty the rate limit gate lives in
// process memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type STCConfig struct {
	BaseURL           string
	Key               string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Timezone          string
}

type SyncConfig struct {
	QueueConfirmationWindow time.Duration
	WaitAfterListRequest    time.Duration
	InsertPageSize          int
	MaxAttempts             int
	RetryInitialInterval    time.Duration
	RetryMaxInterval        time.Duration
	QueuePollInterval       time.Duration
	MaxQueuePolls           int
	Schedule                string
}

type InventoryConfig struct {
	FilterParam string
	Filters     []string
	Schedule    string
}

// Settings turns the sync section into engine settings, filling unset
// values with their defaults.
func (c SyncConfig) Settings(location *time.Location) domain.SyncSettings {
	return domain.SyncSettings{
		QueueConfirmationWindow: c.QueueConfirmationWindow,
		WaitAfterListRequest:    c.WaitAfterListRequest,
		InsertPageSize:          c.InsertPageSize,
		MaxAttempts:             c.MaxAttempts,
		RetryInitialInterval:    c.RetryInitialInterval,
		RetryMaxInterval:        c.RetryMaxInterval,
		QueuePollInterval:       c.QueuePollInterval,
		MaxQueuePolls:           c.MaxQueuePolls,
		APILocation:             location,
	}.WithDefaults()
}
