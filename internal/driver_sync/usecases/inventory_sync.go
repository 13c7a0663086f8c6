package usecases

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"fleet-sync-server/internal/driver_sync/communication"
	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/infra/utils"
	"fleet-sync-server/internal/logger"
)

type InventorySyncConfig struct {
	FilterParam string
	Filters     []string
}

// InventorySync keeps the local device table in line with the equipment
// listing of the tracking API.
type InventorySync struct {
	synchronizer *Synchronizer
	devices      DeviceRepository
	config       InventorySyncConfig
	logger       logger.Logger
}

func NewInventorySync(engine *Engine, devices DeviceRepository, config InventorySyncConfig, log logger.Logger) *InventorySync {
	return &InventorySync{
		synchronizer: engine.NewSynchronizer(),
		devices:      devices,
		config:       config,
		logger:       log,
	}
}

func (s *InventorySync) Run(ctx context.Context, progress ProgressReporter) BulkReport {
	return s.synchronizer.Run(ctx, BulkRequest{
		Name:        "inventory",
		Path:        communication.PathEquipmentList,
		Params:      url.Values{},
		FilterParam: s.config.FilterParam,
		Filters:     s.config.Filters,
		Paginated:   true,
	}, s.upsertRow, progress)
}

func (s *InventorySync) upsertRow(ctx context.Context, _ string, row any) error {
	device, err := DeviceFromRow(row)
	if err != nil {
		return err
	}
	if err := s.devices.Upsert(ctx, device); err != nil {
		return fmt.Errorf("upserting device %s: %w", device.ID.String(), err)
	}
	return nil
}

// DeviceFromRow maps one equipment row of the tracking API to a device.
func DeviceFromRow(row any) (domain.Device, error) {
	id, ok := firstInt(row, "id", "equipmentId", "deviceId")
	if !ok {
		return domain.Device{}, fmt.Errorf("equipment row without id: %v", row)
	}

	builder := domain.NewDeviceBuilder().
		WithID(domain.DeviceID(id)).
		WithName(firstNonEmpty(row, "name", "description")).
		WithPlate(firstNonEmpty(row, "plate", "placa"))

	if owner, ok := firstInt(row, "clientId", "client_id"); ok {
		builder = builder.WithOwnerID(domain.OwnerID(owner))
	}

	return builder.Build()
}

func firstInt(row any, properties ...string) (int64, bool) {
	for _, property := range properties {
		if value, ok := utils.ExtractIntValue(row, property); ok {
			return value, true
		}
	}
	return 0, false
}

func firstNonEmpty(row any, properties ...string) string {
	for _, property := range properties {
		if value := strings.TrimSpace(utils.ExtractStringValue(row, property)); value != "" {
			return value
		}
	}
	return ""
}
