package usecases_test

import (
	"context"
	"errors"
	"net/url"
	"time"

	"fleet-sync-server/internal/driver_sync/communication"
	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/driver_sync/usecases"
	"fleet-sync-server/internal/logger"
	mockusecases "fleet-sync-server/test/unit/doubles/driver_sync/usecases"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

func storedList(ids ...int) []any {
	rows := make([]any, 0, len(ids))
	for i, id := range ids {
		rows = append(rows, map[string]any{"position": float64(i + 1), "driverId": float64(id)})
	}
	return rows
}

func driverRange(from, to int) []domain.DriverID {
	result := make([]domain.DriverID, 0, to-from+1)
	for i := from; i <= to; i++ {
		result = append(result, domain.DriverID(i))
	}
	return result
}

func paths(calls []call) []string {
	result := make([]string, 0, len(calls))
	for _, c := range calls {
		result = append(result, c.path)
	}
	return result
}

var _ = ginkgo.Describe("Job", func() {
	var (
		ctrl      *gomock.Controller
		drivers   *mockusecases.MockDriverRepository
		transport *scriptedTransport
		pauser    *recordingPauser
		progress  *progressRecorder
		settings  domain.SyncSettings
		now       time.Time
		device    domain.Device
	)

	newJob := func() *usecases.Job {
		engine := usecases.NewEngine(transport, nil, settings, logger.NewNopLogger()).
			WithPauser(pauser).
			WithClock(func() time.Time { return now })
		return engine.NewDriverSyncJob(drivers)
	}

	ginkgo.BeforeEach(func() {
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		drivers = mockusecases.NewMockDriverRepository(ctrl)
		transport = newScriptedTransport().
			on(communication.PathRequestDriverList, func(url.Values) (any, error) { return ok200("9001"), nil }).
			on(communication.PathRemoveDriver, func(url.Values) (any, error) { return ok200("9002"), nil }).
			on(communication.PathInsertDrivers, func(url.Values) (any, error) { return ok200("9003"), nil })
		pauser = &recordingPauser{}
		progress = &progressRecorder{}
		settings = domain.DefaultSyncSettings()
		now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local)
		device = domain.Device{ID: 1234, Name: "truck"}
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	ginkgo.When("the device holds duplicated and unknown drivers", func() {
		ginkgo.BeforeEach(func() {
			transport.on(communication.PathDriverList, func(url.Values) (any, error) {
				return ok200(storedList(100, 200, 200)), nil
			})
			drivers.EXPECT().RegisteredDrivers(gomock.Any(), device).Return([]domain.DriverID{100, 300}, nil)
		})

		ginkgo.It("removes and inserts the minimal set of drivers in order", func() {
			report := newJob().Run(context.Background(), []domain.Device{device}, progress.report)

			gomega.Expect(report.Removed).To(gomega.Equal(1))
			gomega.Expect(report.Inserted).To(gomega.Equal(1))
			gomega.Expect(report.Devices[0].Removed).To(gomega.Equal([]domain.DriverID{200}))
			gomega.Expect(report.Devices[0].Inserted).To(gomega.Equal([]domain.DriverID{300}))
			gomega.Expect(report.Devices[0].Aborted).To(gomega.BeFalse())

			gomega.Expect(paths(transport.calls)).To(gomega.Equal([]string{
				communication.PathRequestDriverList,
				communication.PathPendingCommands,
				communication.PathDriverList,
				communication.PathRemoveDriver,
				communication.PathPendingCommands,
				communication.PathInsertDrivers,
			}))

			remove := transport.callsTo(communication.PathRemoveDriver)[0]
			gomega.Expect(remove.params.Get(communication.ParamDeviceID)).To(gomega.Equal("001234"))
			gomega.Expect(remove.params.Get(communication.ParamDriverID)).To(gomega.Equal("200"))

			insert := transport.callsTo(communication.PathInsertDrivers)[0]
			gomega.Expect(insert.params[communication.ParamDriverIDs]).To(gomega.Equal([]string{"300"}))

			pending := transport.callsTo(communication.PathPendingCommands)
			gomega.Expect(pending[0].params.Get(communication.ParamCommandID)).To(gomega.Equal("9001"))
			gomega.Expect(pending[1].params.Get(communication.ParamCommandID)).To(gomega.Equal("9002"))
		})

		ginkgo.It("waits for the device report before reading its list", func() {
			newJob().Run(context.Background(), []domain.Device{device}, nil)

			gomega.Expect(pauser.recorded()).To(gomega.ContainElement(domain.DefaultWaitAfterListRequest))
		})

		ginkgo.It("reports monotonic progress up to the total", func() {
			newJob().Run(context.Background(), []domain.Device{device}, progress.report)

			gomega.Expect(progress.isMonotonic()).To(gomega.BeTrue())
			gomega.Expect(progress.last()).To(gomega.Equal(4.0))
			gomega.Expect(progress.totals).To(gomega.HaveEach(4.0))
		})
	})

	ginkgo.It("removes a duplicated registered driver and inserts it back once", func() {
		transport.on(communication.PathDriverList, func(url.Values) (any, error) {
			return ok200(storedList(100, 100)), nil
		})
		drivers.EXPECT().RegisteredDrivers(gomock.Any(), device).Return([]domain.DriverID{100}, nil)

		report := newJob().Run(context.Background(), []domain.Device{device}, nil)

		gomega.Expect(report.Devices[0].Removed).To(gomega.Equal([]domain.DriverID{100}))
		gomega.Expect(report.Devices[0].Inserted).To(gomega.Equal([]domain.DriverID{100}))
	})

	ginkgo.It("inserts 45 drivers in pages of 20, 20 and 5", func() {
		transport.on(communication.PathDriverList, func(url.Values) (any, error) {
			return ok200([]any{}), nil
		})
		drivers.EXPECT().RegisteredDrivers(gomock.Any(), device).Return(driverRange(1, 45), nil)

		report := newJob().Run(context.Background(), []domain.Device{device}, progress.report)

		inserts := transport.callsTo(communication.PathInsertDrivers)
		gomega.Expect(inserts).To(gomega.HaveLen(3))
		gomega.Expect(inserts[0].params[communication.ParamDriverIDs]).To(gomega.HaveLen(20))
		gomega.Expect(inserts[1].params[communication.ParamDriverIDs]).To(gomega.HaveLen(20))
		gomega.Expect(inserts[2].params[communication.ParamDriverIDs]).To(gomega.HaveLen(5))
		gomega.Expect(inserts[2].params[communication.ParamDriverIDs][4]).To(gomega.Equal("45"))
		gomega.Expect(report.Inserted).To(gomega.Equal(45))
		gomega.Expect(transport.callsTo(communication.PathRemoveDriver)).To(gomega.BeEmpty())
		gomega.Expect(progress.isMonotonic()).To(gomega.BeTrue())
	})

	ginkgo.It("re-issues rate limited requests unchanged", func() {
		attempts := 0
		transport.on(communication.PathDriverList, func(url.Values) (any, error) {
			attempts++
			if attempts < 3 {
				return rateLimited(), nil
			}
			return ok200(storedList(100)), nil
		})
		drivers.EXPECT().RegisteredDrivers(gomock.Any(), device).Return([]domain.DriverID{100}, nil)

		report := newJob().Run(context.Background(), []domain.Device{device}, nil)

		reads := transport.callsTo(communication.PathDriverList)
		gomega.Expect(reads).To(gomega.HaveLen(3))
		gomega.Expect(reads[2].params).To(gomega.Equal(reads[0].params))
		gomega.Expect(pauser.recorded()).To(gomega.ContainElements(20*time.Second, 40*time.Second))
		gomega.Expect(report.Devices[0].Skipped).To(gomega.BeEmpty())
	})

	ginkgo.It("gives up on a persistently rate limited request and moves on", func() {
		settings.MaxAttempts = 4
		transport.on(communication.PathDriverList, func(url.Values) (any, error) {
			return rateLimited(), nil
		})

		report := newJob().Run(context.Background(), []domain.Device{device}, nil)

		gomega.Expect(transport.callsTo(communication.PathDriverList)).To(gomega.HaveLen(4))
		gomega.Expect(pauser.recorded()).To(gomega.ContainElements(20*time.Second, 40*time.Second, time.Minute))
		gomega.Expect(report.Devices[0].Skipped).To(gomega.Equal([]string{"read_stored_drivers"}))
		gomega.Expect(report.Devices[0].Aborted).To(gomega.BeFalse())
		gomega.Expect(transport.callsTo(communication.PathInsertDrivers)).To(gomega.BeEmpty())
	})

	ginkgo.It("skips the rest of the device on an unretryable answer", func() {
		transport.on(communication.PathDriverList, func(url.Values) (any, error) {
			return ok200(storedList(7, 8, 9)), nil
		})
		transport.on(communication.PathRemoveDriver, func(url.Values) (any, error) {
			return apiError(5, "Comando nao suportado"), nil
		})
		drivers.EXPECT().RegisteredDrivers(gomock.Any(), device).Return([]domain.DriverID{10}, nil)

		report := newJob().Run(context.Background(), []domain.Device{device}, progress.report)

		gomega.Expect(transport.callsTo(communication.PathRemoveDriver)).To(gomega.HaveLen(1))
		gomega.Expect(transport.callsTo(communication.PathInsertDrivers)).To(gomega.BeEmpty())
		gomega.Expect(report.Devices[0].Removed).To(gomega.BeEmpty())
		gomega.Expect(report.Devices[0].Inserted).To(gomega.BeEmpty())
		gomega.Expect(report.Devices[0].Skipped).To(gomega.Equal([]string{"remove_drivers"}))
		gomega.Expect(report.Devices[0].Aborted).To(gomega.BeFalse())
		gomega.Expect(errors.Is(report.Devices[0].Err, communication.ErrUnretryable)).To(gomega.BeTrue())
		gomega.Expect(progress.last()).To(gomega.Equal(4.0))
	})

	ginkgo.It("does not reinsert a duplicate whose removal was refused", func() {
		transport.on(communication.PathDriverList, func(url.Values) (any, error) {
			return ok200(storedList(100, 100)), nil
		})
		transport.on(communication.PathRemoveDriver, func(url.Values) (any, error) {
			return apiError(5, "Comando nao suportado"), nil
		})
		drivers.EXPECT().RegisteredDrivers(gomock.Any(), device).Return([]domain.DriverID{100}, nil)

		report := newJob().Run(context.Background(), []domain.Device{device}, nil)

		gomega.Expect(transport.callsTo(communication.PathRemoveDriver)).To(gomega.HaveLen(1))
		gomega.Expect(transport.callsTo(communication.PathInsertDrivers)).To(gomega.BeEmpty())
		gomega.Expect(report.Inserted).To(gomega.BeZero())
	})

	ginkgo.It("goes on with the next device after skipping one", func() {
		other := domain.Device{ID: 1234567, Name: "van"}
		transport.on(communication.PathRequestDriverList, func(params url.Values) (any, error) {
			if params.Get(communication.ParamDeviceID) == "001234" {
				return apiError(5, "Comando nao suportado"), nil
			}
			return ok200("9001"), nil
		})
		transport.on(communication.PathDriverList, func(url.Values) (any, error) {
			return ok200([]any{}), nil
		})
		drivers.EXPECT().RegisteredDrivers(gomock.Any(), other).Return([]domain.DriverID{1}, nil)

		report := newJob().Run(context.Background(), []domain.Device{device, other}, nil)

		gomega.Expect(report.Devices[0].Skipped).To(gomega.Equal([]string{"request_stored_drivers"}))
		gomega.Expect(report.Devices[0].Aborted).To(gomega.BeFalse())
		gomega.Expect(report.Devices[1].Inserted).To(gomega.Equal([]domain.DriverID{1}))

		reads := transport.callsTo(communication.PathDriverList)
		gomega.Expect(reads).To(gomega.HaveLen(1))
		gomega.Expect(reads[0].params.Get(communication.ParamDeviceID)).To(gomega.Equal("001234567"))
	})

	ginkgo.It("aborts a device when the command queue cannot be reached", func() {
		transport.on(communication.PathDriverList, func(url.Values) (any, error) {
			return ok200(storedList(7)), nil
		})
		transport.on(communication.PathPendingCommands, func(params url.Values) (any, error) {
			if params.Get(communication.ParamCommandID) == "9002" {
				return nil, &communication.TransportError{Path: communication.PathPendingCommands, Err: errors.New("connection reset")}
			}
			return ok200([]any{}), nil
		})
		drivers.EXPECT().RegisteredDrivers(gomock.Any(), device).Return([]domain.DriverID{}, nil)

		report := newJob().Run(context.Background(), []domain.Device{device}, nil)

		gomega.Expect(report.Devices[0].Aborted).To(gomega.BeTrue())
		var transportErr *communication.TransportError
		gomega.Expect(errors.As(report.Devices[0].Err, &transportErr)).To(gomega.BeTrue())
		gomega.Expect(report.Devices[0].Removed).To(gomega.BeEmpty())
		gomega.Expect(report.Removed).To(gomega.BeZero())
	})

	ginkgo.It("aborts a device on transport failure and goes on with the next one", func() {
		other := domain.Device{ID: 1234567, Name: "van"}
		transport.on(communication.PathRequestDriverList, func(params url.Values) (any, error) {
			if params.Get(communication.ParamDeviceID) == "001234" {
				return nil, &communication.TransportError{Path: communication.PathRequestDriverList, Err: errors.New("connection reset")}
			}
			return ok200("9001"), nil
		})
		transport.on(communication.PathDriverList, func(url.Values) (any, error) {
			return ok200(storedList(1)), nil
		})
		drivers.EXPECT().RegisteredDrivers(gomock.Any(), other).Return([]domain.DriverID{1}, nil)

		report := newJob().Run(context.Background(), []domain.Device{device, other}, progress.report)

		gomega.Expect(report.Devices).To(gomega.HaveLen(2))
		gomega.Expect(report.Devices[0].Aborted).To(gomega.BeTrue())
		var transportErr *communication.TransportError
		gomega.Expect(errors.As(report.Devices[0].Err, &transportErr)).To(gomega.BeTrue())
		gomega.Expect(report.Devices[1].Aborted).To(gomega.BeFalse())

		reads := transport.callsTo(communication.PathDriverList)
		gomega.Expect(reads).To(gomega.HaveLen(1))
		gomega.Expect(reads[0].params.Get(communication.ParamDeviceID)).To(gomega.Equal("001234567"))
		gomega.Expect(progress.isMonotonic()).To(gomega.BeTrue())
		gomega.Expect(progress.last()).To(gomega.Equal(8.0))
	})

	ginkgo.It("aborts a device on a malformed response", func() {
		transport.on(communication.PathRequestDriverList, func(url.Values) (any, error) {
			return map[string]any{"unexpected": true}, nil
		})

		report := newJob().Run(context.Background(), []domain.Device{device}, nil)

		gomega.Expect(report.Devices[0].Aborted).To(gomega.BeTrue())
		gomega.Expect(errors.Is(report.Devices[0].Err, communication.ErrMalformedResponse)).To(gomega.BeTrue())
		gomega.Expect(transport.callsTo(communication.PathDriverList)).To(gomega.BeEmpty())
	})

	ginkgo.It("proceeds without confirmation when the queue poll budget runs out", func() {
		settings.MaxQueuePolls = 3
		transport.on(communication.PathPendingCommands, func(url.Values) (any, error) {
			return ok200([]any{map[string]any{"commandId": "9001", "sendDate": nil}}), nil
		})
		transport.on(communication.PathDriverList, func(url.Values) (any, error) {
			return ok200([]any{}), nil
		})
		drivers.EXPECT().RegisteredDrivers(gomock.Any(), device).Return([]domain.DriverID{}, nil)

		report := newJob().Run(context.Background(), []domain.Device{device}, nil)

		gomega.Expect(transport.callsTo(communication.PathPendingCommands)).To(gomega.HaveLen(3))
		gomega.Expect(transport.callsTo(communication.PathDriverList)).To(gomega.HaveLen(1))
		gomega.Expect(report.Devices[0].Aborted).To(gomega.BeFalse())
	})
})
