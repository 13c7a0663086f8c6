package sql

import (
	"fmt"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	_queryTimeout = 5 * time.Second
	_maxRetries   = 5
	_retryDelay   = 5 * time.Second
)

func NewPosgreORM(dsn string) (*DB, error) {
	pass, ok := os.LookupEnv("FLEET_SYNC_POSTGRES_PASSWORD")
	if ok {
		dsn = fmt.Sprintf("%s password=%s", dsn, pass)
	}

	var (
		gormDB *gorm.DB
		err    error
	)
	for attempt := range _maxRetries {
		gormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		if attempt < _maxRetries-1 {
			time.Sleep(_retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("imposible to connect to database after %d retries: %w", _maxRetries, err)
	}

	return &DB{
		DB:                   gormDB,
		autoMigrationEnabled: true,
		timeout:              _queryTimeout,
		system:               "postgresql",
	}, nil
}
