package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/driver_sync/httpapi/internal"
	"fleet-sync-server/internal/driver_sync/usecases"
	"fleet-sync-server/internal/infra/httpserver"

	"go.opentelemetry.io/otel/attribute"
)

const (
	startSyncErrMessage = "failed to start driver sync"
	listRunsErrMessage  = "failed to list sync runs"
	getRunErrMessage    = "failed to get sync run"
)

func NewSyncRunController(service usecases.SyncService) *SyncRunController {
	return &SyncRunController{
		service: service,
	}
}

var _ httpserver.Controller = &SyncRunController{}

type SyncRunController struct {
	service usecases.SyncService
}

func (c *SyncRunController) AddRoutes(router *http.ServeMux) {
	router.Handle("POST /v1/driver-sync/runs", c.startRun())
	router.Handle("GET /v1/driver-sync/runs", c.listRuns())
	router.Handle("GET /v1/driver-sync/runs/{id}", c.getRun())
}

func (c *SyncRunController) startRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body internal.SyncRunCreateRequest
		if r.ContentLength != 0 {
			if err := httpserver.DecodeJSONBody(r, &body); err != nil {
				httpserver.ReplyWithError(w, http.StatusBadRequest, startSyncErrMessage)
				return
			}
		}

		ids := body.ToDomain()
		for _, id := range ids {
			if id <= 0 {
				httpserver.ReplyWithError(w, http.StatusBadRequest, "device ids must be positive")
				return
			}
		}

		run, err := c.service.StartDriverSync(r.Context(), ids)
		switch {
		case errors.Is(err, usecases.ErrDeviceBusy):
			httpserver.ReplyWithError(w, http.StatusConflict, err.Error())
			return
		case errors.Is(err, usecases.ErrDeviceNotFound):
			httpserver.ReplyWithError(w, http.StatusNotFound, err.Error())
			return
		case errors.Is(err, usecases.ErrNoDevices):
			httpserver.ReplyWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		case err != nil:
			slog.Error("starting driver sync", slog.Any("error", err))
			httpserver.ReplyWithError(w, http.StatusInternalServerError, startSyncErrMessage)
			return
		}

		httpserver.GetSpanFromContext(r).SetAttributes(
			attribute.String("sync_run.id", run.ID.String()),
			attribute.Int("sync_run.devices", len(run.DeviceIDs)),
		)
		httpserver.ReplyJSONResponse(w, http.StatusAccepted, internal.FromSyncRun(run))
	}
}

func (c *SyncRunController) listRuns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := httpserver.ExtractPaginationParams(r)
		runs, total, err := c.service.FindRuns(r.Context(), usecases.Pagination{
			Limit:  params.Limit,
			Offset: params.Offset(),
		})
		if err != nil {
			slog.Error("listing sync runs", slog.Any("error", err))
			httpserver.ReplyWithError(w, http.StatusInternalServerError, listRunsErrMessage)
			return
		}

		httpserver.ReplyWithPaginatedData(w, http.StatusOK, internal.FromSyncRuns(runs), total, params)
	}
}

func (c *SyncRunController) getRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := domain.ID(httpserver.GetPathParam(r, "id"))
		run, err := c.service.GetRun(r.Context(), id)
		if errors.Is(err, usecases.ErrSyncRunNotFound) {
			httpserver.ReplyWithError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			slog.Error("getting sync run", slog.String("run_id", id.String()), slog.Any("error", err))
			httpserver.ReplyWithError(w, http.StatusInternalServerError, getRunErrMessage)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, internal.FromSyncRun(run))
	}
}
