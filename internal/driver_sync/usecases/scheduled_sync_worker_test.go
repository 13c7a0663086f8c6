package usecases_test

import (
	"context"
	"time"

	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/driver_sync/usecases"
	mockusecases "fleet-sync-server/test/unit/doubles/driver_sync/usecases"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("ScheduledSyncWorker", func() {
	var (
		ctrl    *gomock.Controller
		service *mockusecases.MockSyncService
		ticker  *time.Ticker
	)

	ginkgo.BeforeEach(func() {
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		service = mockusecases.NewMockSyncService(ctrl)
		ticker = time.NewTicker(10 * time.Millisecond)
	})

	ginkgo.AfterEach(func() {
		ticker.Stop()
		ctrl.Finish()
	})

	runWorker := func(worker *usecases.ScheduledSyncWorker) {
		ctx, cancel := context.WithCancel(context.Background())
		finished := make(chan struct{})
		go worker.Run(ctx, func() { close(finished) })
		time.Sleep(50 * time.Millisecond)
		cancel()
		gomega.Eventually(finished).Should(gomega.BeClosed())
	}

	ginkgo.It("starts the runs whose schedule is due", func() {
		service.EXPECT().StartDriverSync(gomock.Any(), gomock.Nil()).Return(domain.SyncRun{}, nil).MinTimes(1)
		service.EXPECT().StartInventorySync(gomock.Any()).Return(domain.SyncRun{}, usecases.ErrSyncBusy).MinTimes(1)

		runWorker(usecases.NewScheduledSyncWorker(ticker, service, usecases.SyncSchedules{
			Drivers:   "* * * * *",
			Inventory: "* * * * *",
		}))
	})

	ginkgo.It("ignores empty and invalid schedules", func() {
		runWorker(usecases.NewScheduledSyncWorker(ticker, service, usecases.SyncSchedules{
			Drivers: "not a cron",
		}))
	})

	ginkgo.It("stops on shutdown", func() {
		worker := usecases.NewScheduledSyncWorker(ticker, service, usecases.SyncSchedules{})
		finished := make(chan struct{})
		go worker.Run(context.Background(), func() { close(finished) })

		worker.Shutdown()
		worker.Shutdown()

		gomega.Eventually(finished).Should(gomega.BeClosed())
	})
})
