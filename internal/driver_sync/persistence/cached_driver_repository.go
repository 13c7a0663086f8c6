package persistence

import (
	"context"
	"fmt"
	"time"

	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/driver_sync/usecases"
	"fleet-sync-server/internal/infra/cache"
)

const _registeredDriversTTL = 30 * time.Second

// CachedDriverRepository serves authoritative driver lists from the cache.
// Devices of the same owner share one entry, so a run over a whole fleet
// reads each list once.
type CachedDriverRepository struct {
	next  usecases.DriverRepository
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedDriverRepository(next usecases.DriverRepository, c cache.Cache) *CachedDriverRepository {
	return &CachedDriverRepository{
		next:  next,
		cache: c,
		ttl:   _registeredDriversTTL,
	}
}

var _ usecases.DriverRepository = (*CachedDriverRepository)(nil)

func (r *CachedDriverRepository) RegisteredDrivers(ctx context.Context, device domain.Device) ([]domain.DriverID, error) {
	value, err := r.cache.GetOrSet(ctx, driversKey(device.DriverOwner()), r.ttl, func() (any, error) {
		drivers, err := r.next.RegisteredDrivers(ctx, device)
		if err != nil {
			return nil, err
		}
		ids := make([]int64, len(drivers))
		for i, driver := range drivers {
			ids[i] = int64(driver)
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}

	drivers, ok := toDriverIDs(value)
	if !ok {
		r.cache.Delete(ctx, driversKey(device.DriverOwner()))
		return r.next.RegisteredDrivers(ctx, device)
	}
	return drivers, nil
}

func (r *CachedDriverRepository) ReplaceDrivers(ctx context.Context, owner domain.OwnerID, drivers []domain.DriverID) error {
	err := r.next.ReplaceDrivers(ctx, owner, drivers)
	r.cache.Delete(ctx, driversKey(owner))
	return err
}

func driversKey(owner domain.OwnerID) string {
	return fmt.Sprintf("driver_sync:registered_drivers:%d", int64(owner))
}

// toDriverIDs accepts the local form ([]int64) and the JSON decoded form
// ([]any of float64) of a cached list.
func toDriverIDs(value any) ([]domain.DriverID, bool) {
	switch ids := value.(type) {
	case []int64:
		result := make([]domain.DriverID, len(ids))
		for i, id := range ids {
			result[i] = domain.DriverID(id)
		}
		return result, true
	case []any:
		result := make([]domain.DriverID, 0, len(ids))
		for _, id := range ids {
			number, ok := id.(float64)
			if !ok {
				return nil, false
			}
			result = append(result, domain.DriverID(number))
		}
		return result, true
	default:
		return nil, false
	}
}
