package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/driver_sync/httpapi/internal"
	"fleet-sync-server/internal/driver_sync/usecases"
	"fleet-sync-server/internal/infra/async"
	"fleet-sync-server/internal/infra/httpserver"

	"github.com/gorilla/websocket"
)

const (
	_writeWait  = 10 * time.Second
	_pongWait   = 60 * time.Second
	_pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SyncProgressWebSocketController streams the progress of one sync run to
// websocket clients and closes the connection once the run is finished.
type SyncProgressWebSocketController struct {
	broker  async.InternalBroker
	service usecases.SyncService
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewSyncProgressWebSocketController(broker async.InternalBroker, service usecases.SyncService) *SyncProgressWebSocketController {
	ctx, cancel := context.WithCancel(context.Background())
	return &SyncProgressWebSocketController{
		broker:  broker,
		service: service,
		ctx:     ctx,
		cancel:  cancel,
	}
}

var _ httpserver.Controller = (*SyncProgressWebSocketController)(nil)

func (wsc *SyncProgressWebSocketController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /ws/driver-sync/runs/{id}/progress", wsc.handleWebSocket())
}

func (wsc *SyncProgressWebSocketController) handleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := domain.ID(httpserver.GetPathParam(r, "id"))
		if _, err := wsc.service.GetRun(r.Context(), runID); err != nil {
			if errors.Is(err, usecases.ErrSyncRunNotFound) {
				http.Error(w, "sync run not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to get sync run", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", slog.Any("error", err))
			return
		}

		subscription, err := wsc.broker.Subscribe(usecases.ProgressTopic)
		if err != nil {
			slog.Error("subscribing to sync progress", slog.Any("error", err))
			conn.Close()
			return
		}

		slog.Info("sync progress websocket connected",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("run_id", runID.String()))

		wsc.wg.Add(1)
		go wsc.stream(conn, runID, subscription)
	}
}

func (wsc *SyncProgressWebSocketController) stream(conn *websocket.Conn, runID domain.ID, subscription async.Subscription) {
	defer wsc.wg.Done()
	defer conn.Close()
	defer wsc.broker.Unsubscribe(usecases.ProgressTopic, subscription)

	// Subscribed before this read, so a run finishing in between is not missed.
	run, err := wsc.service.GetRun(wsc.ctx, runID)
	if err == nil && run.IsCompleted() {
		wsc.write(conn, internal.FinishedMessage(run))
		wsc.close(conn, "run finished")
		return
	}

	closed := make(chan struct{})
	go wsc.readUntilClosed(conn, closed)

	ticker := time.NewTicker(_pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-wsc.ctx.Done():
			wsc.close(conn, "server shutting down")
			return
		case <-closed:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(_writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg, ok := <-subscription.Receiver:
			if !ok {
				return
			}
			switch value := msg.Value.(type) {
			case domain.ProgressEvent:
				if value.RunID != runID {
					continue
				}
				if !wsc.write(conn, internal.FromProgressEvent(value)) {
					return
				}
			case domain.SyncRun:
				if value.ID != runID {
					continue
				}
				wsc.write(conn, internal.FinishedMessage(value))
				wsc.close(conn, "run finished")
				return
			}
		}
	}
}

func (wsc *SyncProgressWebSocketController) readUntilClosed(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(_pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(_pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("sync progress websocket read error", slog.Any("error", err))
			}
			return
		}
	}
}

func (wsc *SyncProgressWebSocketController) write(conn *websocket.Conn, message internal.ProgressMessage) bool {
	conn.SetWriteDeadline(time.Now().Add(_writeWait))
	if err := conn.WriteJSON(message); err != nil {
		slog.Warn("writing sync progress", slog.String("run_id", message.RunID), slog.Any("error", err))
		return false
	}
	return true
}

func (wsc *SyncProgressWebSocketController) close(conn *websocket.Conn, reason string) {
	deadline := time.Now().Add(_writeWait)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason), deadline)
}

// Shutdown closes every open progress stream.
func (wsc *SyncProgressWebSocketController) Shutdown() {
	slog.Info("shutting down sync progress websocket controller")
	wsc.cancel()
	wsc.wg.Wait()
}
