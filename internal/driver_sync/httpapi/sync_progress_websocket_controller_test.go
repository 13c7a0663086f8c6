package httpapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/driver_sync/httpapi"
	"fleet-sync-server/internal/driver_sync/usecases"
	"fleet-sync-server/internal/infra/async"
	mockusecases "fleet-sync-server/test/unit/doubles/driver_sync/usecases"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type progressFrame struct {
	Type    string  `json:"type"`
	RunID   string  `json:"run_id"`
	Done    float64 `json:"done"`
	Total   float64 `json:"total"`
	Percent float64 `json:"percent"`
	Run     *struct {
		Status   string `json:"status"`
		Inserted int    `json:"inserted"`
	} `json:"run"`
}

var _ = Describe("SyncProgressWebSocketController", func() {
	var (
		ctrl        *gomock.Controller
		mockService *mockusecases.MockSyncService
		broker      *async.LocalBroker
		controller  *httpapi.SyncProgressWebSocketController
		server      *httptest.Server
		run         domain.SyncRun
	)

	wsURL := func(id domain.ID) string {
		return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/driver-sync/runs/" + id.String() + "/progress"
	}

	// the stream subscribes after the upgrade; events of other runs are filtered out
	waitForSubscriber := func() {
		warmup := async.BrokerMessage{
			Event: usecases.ProgressEventName,
			Value: domain.ProgressEvent{RunID: domain.ID("warmup"), Done: 0, Total: 1},
		}
		Eventually(func() error {
			return broker.Publish(context.Background(), usecases.ProgressTopic, warmup)
		}).WithTimeout(2 * time.Second).Should(Succeed())
	}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		mockService = mockusecases.NewMockSyncService(ctrl)
		broker = async.NewLocalBroker()
		controller = httpapi.NewSyncProgressWebSocketController(broker, mockService)

		router := http.NewServeMux()
		controller.AddRoutes(router)
		server = httptest.NewServer(router)

		var err error
		run, err = domain.NewSyncRunBuilder().WithKind(domain.SyncRunKindDrivers).WithDeviceIDs([]domain.DeviceID{1234}).Build()
		Expect(err).NotTo(HaveOccurred())
		run.Start()
	})

	AfterEach(func() {
		server.Close()
		controller.Shutdown()
		broker.Stop()
	})

	It("answers 404 for unknown runs", func() {
		mockService.EXPECT().GetRun(gomock.Any(), domain.ID("missing")).Return(domain.SyncRun{}, usecases.ErrSyncRunNotFound)

		_, response, err := websocket.DefaultDialer.Dial(wsURL("missing"), nil)
		Expect(err).To(HaveOccurred())
		Expect(response.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("streams progress of the run and closes once it is finished", func() {
		mockService.EXPECT().GetRun(gomock.Any(), run.ID).Return(run, nil).Times(2)

		conn, _, err := websocket.DefaultDialer.Dial(wsURL(run.ID), nil)
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		waitForSubscriber()
		Expect(broker.Publish(context.Background(), usecases.ProgressTopic, async.BrokerMessage{
			Event: usecases.ProgressEventName,
			Value: domain.ProgressEvent{RunID: run.ID, Done: 1, Total: 4, Label: "001234 read_stored_drivers"},
		})).To(Succeed())

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var frame progressFrame
		Expect(conn.ReadJSON(&frame)).To(Succeed())
		Expect(frame.Type).To(Equal("progress"))
		Expect(frame.RunID).To(Equal(run.ID.String()))
		Expect(frame.Percent).To(BeNumerically("==", 25))

		other := domain.ProgressEvent{RunID: domain.ID("other"), Done: 3, Total: 4}
		Expect(broker.Publish(context.Background(), usecases.ProgressTopic, async.BrokerMessage{Event: usecases.ProgressEventName, Value: other})).To(Succeed())

		finished := run
		finished.Finish([]domain.DeviceOutcome{{DeviceID: 1234, Inserted: []domain.DriverID{5}}}, nil)
		Expect(broker.Publish(context.Background(), usecases.ProgressTopic, async.BrokerMessage{Event: usecases.FinishedEventName, Value: finished})).To(Succeed())

		var last progressFrame
		Expect(conn.ReadJSON(&last)).To(Succeed())
		Expect(last.Type).To(Equal("finished"))
		Expect(last.Run.Status).To(Equal("finished"))
		Expect(last.Run.Inserted).To(Equal(1))

		_, _, err = conn.ReadMessage()
		Expect(websocket.IsCloseError(err, websocket.CloseNormalClosure)).To(BeTrue())
	})

	It("sends the final state right away for a finished run", func() {
		run.Finish(nil, nil)
		mockService.EXPECT().GetRun(gomock.Any(), run.ID).Return(run, nil).Times(2)

		conn, _, err := websocket.DefaultDialer.Dial(wsURL(run.ID), nil)
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var frame progressFrame
		Expect(conn.ReadJSON(&frame)).To(Succeed())
		Expect(frame.Type).To(Equal("finished"))
		Expect(frame.Percent).To(BeNumerically("==", 100))
	})
})
