package httpapi_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"fleet-sync-server/internal/driver_sync/domain"
	"fleet-sync-server/internal/driver_sync/httpapi"
	"fleet-sync-server/internal/driver_sync/usecases"
	mockusecases "fleet-sync-server/test/unit/doubles/driver_sync/usecases"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("DeviceController", func() {
	var (
		ctrl        *gomock.Controller
		mockDevices *mockusecases.MockDeviceService
		mockSync    *mockusecases.MockSyncService
		router      *http.ServeMux
		recorder    *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		mockDevices = mockusecases.NewMockDeviceService(ctrl)
		mockSync = mockusecases.NewMockSyncService(ctrl)
		router = http.NewServeMux()
		httpapi.NewDeviceController(mockDevices, mockSync).AddRoutes(router)
		recorder = httptest.NewRecorder()
	})

	Context("listDevices", func() {
		It("uses the default pagination and pads device ids", func() {
			mockDevices.EXPECT().
				AllDevices(gomock.Any(), usecases.Pagination{Limit: 10, Offset: 0}).
				Return([]domain.Device{{ID: 1234, Name: "truck", Plate: "ABC1D23", OwnerID: 7}}, 1, nil)

			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/devices", nil))

			Expect(recorder.Code).To(Equal(http.StatusOK))
			var body struct {
				Data []map[string]any `json:"data"`
			}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Data).To(HaveLen(1))
			Expect(body.Data[0]["device_id"]).To(Equal("001234"))
			Expect(body.Data[0]["owner_id"]).To(BeNumerically("==", 7))
		})

		It("reports failures", func() {
			mockDevices.EXPECT().AllDevices(gomock.Any(), gomock.Any()).Return(nil, 0, errors.New("boom"))
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/devices", nil))
			Expect(recorder.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Context("setRegisteredDrivers", func() {
		It("replaces the authoritative list", func() {
			mockDevices.EXPECT().
				SetRegisteredDrivers(gomock.Any(), domain.DeviceID(1234), []domain.DriverID{10, 20}).
				Return(nil)

			request := httptest.NewRequest(http.MethodPut, "/v1/devices/1234/drivers", strings.NewReader(`{"driver_ids":[10,20]}`))
			router.ServeHTTP(recorder, request)

			Expect(recorder.Code).To(Equal(http.StatusNoContent))
		})

		It("answers 404 for unknown devices", func() {
			mockDevices.EXPECT().
				SetRegisteredDrivers(gomock.Any(), domain.DeviceID(99), gomock.Any()).
				Return(fmt.Errorf("%w: 000099", usecases.ErrDeviceNotFound))

			request := httptest.NewRequest(http.MethodPut, "/v1/devices/99/drivers", strings.NewReader(`{"driver_ids":[]}`))
			router.ServeHTTP(recorder, request)

			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})

		DescribeTable("rejects bad input",
			func(path, body string) {
				router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, path, strings.NewReader(body)))
				Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			},
			Entry("non numeric device", "/v1/devices/abc/drivers", `{"driver_ids":[1]}`),
			Entry("zero device", "/v1/devices/0/drivers", `{"driver_ids":[1]}`),
			Entry("malformed body", "/v1/devices/1/drivers", `{"driver_ids":`),
			Entry("negative driver", "/v1/devices/1/drivers", `{"driver_ids":[-4]}`),
		)
	})

	Context("startInventorySync", func() {
		It("starts an inventory run", func() {
			run := newRun(domain.SyncRunKindInventory)
			mockSync.EXPECT().StartInventorySync(gomock.Any()).Return(run, nil)

			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/devices/inventory-sync", nil))

			Expect(recorder.Code).To(Equal(http.StatusAccepted))
			Expect(recorder.Body.String()).To(ContainSubstring(run.ID.String()))
		})

		It("refuses a second concurrent inventory run", func() {
			mockSync.EXPECT().StartInventorySync(gomock.Any()).Return(domain.SyncRun{}, usecases.ErrSyncBusy)
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/devices/inventory-sync", nil))
			Expect(recorder.Code).To(Equal(http.StatusConflict))
		})
	})
})
