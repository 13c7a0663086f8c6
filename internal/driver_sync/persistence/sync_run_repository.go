package persistence

import (
	"context"
	"errors"
	"fmt"

	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/driver_sync/persistence/internal"
	"fleet-sync-server/internal/driver_sync/usecases"
	"fleet-sync-server/internal/infra/sql"
)

func NewSyncRunRepository(orm sql.ORM) (*SimpleSyncRunRepository, error) {
	err := orm.AutoMigrate(&internal.SyncRun{})
	if err != nil {
		return nil, fmt.Errorf("auto migrating: %w", err)
	}

	return &SimpleSyncRunRepository{
		orm: orm,
	}, nil
}

var _ usecases.SyncRunRepository = (*SimpleSyncRunRepository)(nil)

type SimpleSyncRunRepository struct {
	orm sql.ORM
}

func (s *SimpleSyncRunRepository) Create(ctx context.Context, run domain.SyncRun) error {
	value := internal.FromSyncRun(run)
	if err := s.orm.WithContext(ctx).Create(&value).Error(); err != nil {
		return fmt.Errorf("creating sync run: %w", err)
	}
	return nil
}

func (s *SimpleSyncRunRepository) Update(ctx context.Context, run domain.SyncRun) error {
	value := internal.FromSyncRun(run)
	if err := s.orm.WithContext(ctx).Save(&value).Error(); err != nil {
		return fmt.Errorf("updating sync run: %w", err)
	}
	return nil
}

func (s *SimpleSyncRunRepository) Get(ctx context.Context, id domain.ID) (domain.SyncRun, error) {
	var entity internal.SyncRun
	err := s.orm.WithContext(ctx).
		Where("id = ?", id.String()).
		First(&entity).
		Error()

	if errors.Is(err, sql.ErrRecordNotFound) {
		return domain.SyncRun{}, usecases.ErrSyncRunNotFound
	}

	if err != nil {
		return domain.SyncRun{}, fmt.Errorf("database query: %w", err)
	}

	return entity.ToDomain(), nil
}

func (s *SimpleSyncRunRepository) FindAll(ctx context.Context, pagination usecases.Pagination) ([]domain.SyncRun, int, error) {
	var total int64
	err := s.orm.WithContext(ctx).
		Model(&internal.SyncRun{}).
		Count(&total).
		Error()
	if err != nil {
		return nil, 0, fmt.Errorf("counting sync runs: %w", err)
	}

	var entities []internal.SyncRun
	query := s.orm.WithContext(ctx).Order("created_at desc")
	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.Offset)
	}
	if err := query.Find(&entities).Error(); err != nil {
		return nil, 0, fmt.Errorf("database query: %w", err)
	}

	runs := make([]domain.SyncRun, len(entities))
	for i, entity := range entities {
		runs[i] = entity.ToDomain()
	}
	return runs, int(total), nil
}
