package communication_test

import (
	"context"
	"errors"
	"time"

	"fleet-sync-server/internal/driver_sync/communication"
	"fleet-sync-server/internal/logger"
	mockcommunication "fleet-sync-server/test/unit/doubles/driver_sync/communication"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

func queueResponse(entries ...map[string]any) map[string]any {
	data := make([]any, 0, len(entries))
	for _, entry := range entries {
		data = append(data, entry)
	}
	return map[string]any{"success": true, "error": float64(0), "data": data}
}

var _ = ginkgo.Describe("QueuePoller", func() {
	var (
		ctrl      *gomock.Controller
		transport *mockcommunication.MockTransport
		poller    *communication.QueuePoller
		now       time.Time
	)

	ginkgo.BeforeEach(func() {
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		transport = mockcommunication.NewMockTransport(ctrl)
		now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local)
		poller = communication.NewQueuePoller(transport, logger.NewNopLogger(), 2*time.Minute).
			WithClock(func() time.Time { return now })
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	ginkgo.It("repeats until the command is confirmed", func() {
		gomock.InOrder(
			transport.EXPECT().SendRequest(gomock.Any(), communication.PathPendingCommands, gomock.Any()).
				Return(queueResponse(map[string]any{"commandId": "77", "sendDate": nil, "confirmDate": nil}), nil),
			transport.EXPECT().SendRequest(gomock.Any(), communication.PathPendingCommands, gomock.Any()).
				Return(queueResponse(map[string]any{"commandId": "77", "sendDate": "2024-05-10 11:59:30", "confirmDate": nil}), nil),
			transport.EXPECT().SendRequest(gomock.Any(), communication.PathPendingCommands, gomock.Any()).
				Return(queueResponse(map[string]any{"commandId": "77", "sendDate": "2024-05-10 11:59:00", "confirmDate": nil}), nil),
			transport.EXPECT().SendRequest(gomock.Any(), communication.PathPendingCommands, gomock.Any()).
				Return(queueResponse(map[string]any{"commandId": "77", "sendDate": "2024-05-10 11:59:00", "confirmDate": "2024-05-10 11:59:40"}), nil),
		)

		statuses := make([]communication.QueueStatus, 0, 4)
		for i := 0; i < 4; i++ {
			status, err := poller.Poll(context.Background(), "001234", "77")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			statuses = append(statuses, status)
		}

		gomega.Expect(statuses).To(gomega.Equal([]communication.QueueStatus{
			communication.QueueRepeat,
			communication.QueueRepeat,
			communication.QueueRepeat,
			communication.QueueContinue,
		}))
	})

	ginkgo.It("breaks when the device holds the command past the window", func() {
		transport.EXPECT().SendRequest(gomock.Any(), communication.PathPendingCommands, gomock.Any()).
			Return(queueResponse(map[string]any{"commandId": "77", "sendDate": "2024-05-10 11:57:59", "confirmDate": nil}), nil)

		status, err := poller.Poll(context.Background(), "001234", "77")
		gomega.Expect(status).To(gomega.Equal(communication.QueueBreak))
		gomega.Expect(communication.IsQueueTimeout(err)).To(gomega.BeTrue())
	})

	ginkgo.It("continues when the queue is empty", func() {
		transport.EXPECT().SendRequest(gomock.Any(), communication.PathPendingCommands, gomock.Any()).
			Return(queueResponse(), nil)

		status, err := poller.Poll(context.Background(), "001234", "77")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(status).To(gomega.Equal(communication.QueueContinue))
	})

	ginkgo.It("repeats on rate limit", func() {
		transport.EXPECT().SendRequest(gomock.Any(), communication.PathPendingCommands, gomock.Any()).
			Return(map[string]any{"success": false, "error": float64(1), "msg": "Limite de acessos atingido (1 minutos)"}, nil)

		status, err := poller.Poll(context.Background(), "001234", "77")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(status).To(gomega.Equal(communication.QueueRepeat))
	})

	ginkgo.DescribeTable("breaks on unusable responses",
		func(raw any, transportErr error) {
			transport.EXPECT().SendRequest(gomock.Any(), communication.PathPendingCommands, gomock.Any()).
				Return(raw, transportErr)

			status, err := poller.Poll(context.Background(), "001234", "77")
			gomega.Expect(status).To(gomega.Equal(communication.QueueBreak))
			gomega.Expect(err).To(gomega.HaveOccurred())
		},
		ginkgo.Entry("malformed", map[string]any{"foo": "bar"}, nil),
		ginkgo.Entry("api error", map[string]any{"success": false, "error": float64(4), "msg": "Equipamento invalido"}, nil),
		ginkgo.Entry("transport failure", nil, &communication.TransportError{Path: communication.PathPendingCommands, Err: errors.New("boom")}),
	)
})
