package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/driver_sync/httpapi/internal"
	"fleet-sync-server/internal/driver_sync/usecases"
	"fleet-sync-server/internal/infra/httpserver"
)

const (
	listDevicesErrMessage   = "failed to list devices"
	setDriversErrMessage    = "failed to set registered drivers"
	inventorySyncErrMessage = "failed to start inventory sync"
)

func NewDeviceController(devices usecases.DeviceService, sync usecases.SyncService) *DeviceController {
	return &DeviceController{
		devices: devices,
		sync:    sync,
	}
}

var _ httpserver.Controller = &DeviceController{}

type DeviceController struct {
	devices usecases.DeviceService
	sync    usecases.SyncService
}

func (c *DeviceController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /v1/devices", c.listDevices())
	router.Handle("PUT /v1/devices/{id}/drivers", c.setRegisteredDrivers())
	router.Handle("POST /v1/devices/inventory-sync", c.startInventorySync())
}

func (c *DeviceController) listDevices() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := httpserver.ExtractPaginationParams(r)
		devices, total, err := c.devices.AllDevices(r.Context(), usecases.Pagination{
			Limit:  params.Limit,
			Offset: params.Offset(),
		})
		if err != nil {
			slog.Error("listing devices", slog.Any("error", err))
			httpserver.ReplyWithError(w, http.StatusInternalServerError, listDevicesErrMessage)
			return
		}

		httpserver.ReplyWithPaginatedData(w, http.StatusOK, internal.FromDevices(devices), total, params)
	}
}

func (c *DeviceController) setRegisteredDrivers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpserver.GetInt64PathParam(r, "id")
		if err != nil || id <= 0 {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid device id")
			return
		}

		var body internal.RegisteredDriversRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, setDriversErrMessage)
			return
		}

		drivers := body.ToDomain()
		for _, driver := range drivers {
			if driver <= 0 {
				httpserver.ReplyWithError(w, http.StatusBadRequest, "driver ids must be positive")
				return
			}
		}

		err = c.devices.SetRegisteredDrivers(r.Context(), domain.DeviceID(id), drivers)
		if errors.Is(err, usecases.ErrDeviceNotFound) {
			httpserver.ReplyWithError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			slog.Error("setting registered drivers", slog.Int64("device_id", id), slog.Any("error", err))
			httpserver.ReplyWithError(w, http.StatusInternalServerError, setDriversErrMessage)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (c *DeviceController) startInventorySync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := c.sync.StartInventorySync(r.Context())
		if errors.Is(err, usecases.ErrSyncBusy) {
			httpserver.ReplyWithError(w, http.StatusConflict, err.Error())
			return
		}
		if err != nil {
			slog.Error("starting inventory sync", slog.Any("error", err))
			httpserver.ReplyWithError(w, http.StatusInternalServerError, inventorySyncErrMessage)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusAccepted, internal.FromSyncRun(run))
	}
}
