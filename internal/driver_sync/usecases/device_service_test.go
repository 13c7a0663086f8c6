package usecases_test

import (
	"context"
	"errors"

	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/driver_sync/usecases"
	mockusecases "fleet-sync-server/test/unit/doubles/driver_sync/usecases"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("DeviceService", func() {
	var (
		ctrl    *gomock.Controller
		devices *mockusecases.MockDeviceRepository
		drivers *mockusecases.MockDriverRepository
		service *usecases.SimpleDeviceService
	)

	ginkgo.BeforeEach(func() {
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		devices = mockusecases.NewMockDeviceRepository(ctrl)
		drivers = mockusecases.NewMockDriverRepository(ctrl)
		service = usecases.NewDeviceService(devices, drivers)
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	ginkgo.It("stores a sorted list without duplicates for the device owner", func() {
		devices.EXPECT().Get(gomock.Any(), domain.DeviceID(10)).Return(domain.Device{ID: 10, OwnerID: 3}, nil)
		drivers.EXPECT().ReplaceDrivers(gomock.Any(), domain.OwnerID(3), []domain.DriverID{1, 5, 8}).Return(nil)

		err := service.SetRegisteredDrivers(context.Background(), 10, []domain.DriverID{8, 1, 5, 1})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.It("keeps a list per device when the device has no owner", func() {
		devices.EXPECT().Get(gomock.Any(), domain.DeviceID(10)).Return(domain.Device{ID: 10}, nil)
		drivers.EXPECT().ReplaceDrivers(gomock.Any(), domain.OwnerID(10), []domain.DriverID{}).Return(nil)

		err := service.SetRegisteredDrivers(context.Background(), 10, []domain.DriverID{})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.It("reports unknown devices", func() {
		devices.EXPECT().Get(gomock.Any(), domain.DeviceID(11)).Return(domain.Device{}, usecases.ErrDeviceNotFound)

		err := service.SetRegisteredDrivers(context.Background(), 11, []domain.DriverID{1})
		gomega.Expect(errors.Is(err, usecases.ErrDeviceNotFound)).To(gomega.BeTrue())
	})
})
