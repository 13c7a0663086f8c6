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

func newRun(kind domain.SyncRunKind, ids ...domain.DeviceID) domain.SyncRun {
	run, err := domain.NewSyncRunBuilder().WithKind(kind).WithDeviceIDs(ids).Build()
	Expect(err).NotTo(HaveOccurred())
	return run
}

var _ = Describe("SyncRunController", func() {
	var (
		ctrl        *gomock.Controller
		mockService *mockusecases.MockSyncService
		router      *http.ServeMux
		recorder    *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		mockService = mockusecases.NewMockSyncService(ctrl)
		router = http.NewServeMux()
		httpapi.NewSyncRunController(mockService).AddRoutes(router)
		recorder = httptest.NewRecorder()
	})

	Context("startRun", func() {
		It("starts a run for the requested devices", func() {
			run := newRun(domain.SyncRunKindDrivers, 1234, 1234567)
			mockService.EXPECT().
				StartDriverSync(gomock.Any(), []domain.DeviceID{1234, 1234567}).
				Return(run, nil)

			request := httptest.NewRequest(http.MethodPost, "/v1/driver-sync/runs", strings.NewReader(`{"device_ids":[1234,1234567]}`))
			router.ServeHTTP(recorder, request)

			Expect(recorder.Code).To(Equal(http.StatusAccepted))
			var body map[string]any
			Expect(json.Unmarshal(recorder.Body.Bytes(), &body)).To(Succeed())
			Expect(body["id"]).To(Equal(run.ID.String()))
			Expect(body["status"]).To(Equal("pending"))
			Expect(body["device_ids"]).To(Equal([]any{"001234", "001234567"}))
		})

		It("syncs every device when the body is empty", func() {
			mockService.EXPECT().
				StartDriverSync(gomock.Any(), []domain.DeviceID{}).
				Return(newRun(domain.SyncRunKindDrivers, 1), nil)

			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/driver-sync/runs", nil))

			Expect(recorder.Code).To(Equal(http.StatusAccepted))
		})

		DescribeTable("maps service errors",
			func(err error, code int) {
				mockService.EXPECT().StartDriverSync(gomock.Any(), gomock.Any()).Return(domain.SyncRun{}, err)

				request := httptest.NewRequest(http.MethodPost, "/v1/driver-sync/runs", strings.NewReader(`{"device_ids":[1]}`))
				router.ServeHTTP(recorder, request)

				Expect(recorder.Code).To(Equal(code))
			},
			Entry("busy device", fmt.Errorf("%w: device 000001", usecases.ErrDeviceBusy), http.StatusConflict),
			Entry("unknown device", fmt.Errorf("getting device: %w", usecases.ErrDeviceNotFound), http.StatusNotFound),
			Entry("no devices", usecases.ErrNoDevices, http.StatusUnprocessableEntity),
			Entry("anything else", errors.New("database down"), http.StatusInternalServerError),
		)

		It("rejects malformed bodies", func() {
			request := httptest.NewRequest(http.MethodPost, "/v1/driver-sync/runs", strings.NewReader(`{"device_ids":`))
			router.ServeHTTP(recorder, request)
			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects non positive device ids", func() {
			request := httptest.NewRequest(http.MethodPost, "/v1/driver-sync/runs", strings.NewReader(`{"device_ids":[0]}`))
			router.ServeHTTP(recorder, request)
			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("listRuns", func() {
		It("pages through the runs", func() {
			runs := []domain.SyncRun{newRun(domain.SyncRunKindDrivers, 1), newRun(domain.SyncRunKindInventory)}
			mockService.EXPECT().
				FindRuns(gomock.Any(), usecases.Pagination{Limit: 2, Offset: 2}).
				Return(runs, 5, nil)

			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/driver-sync/runs?page=2&limit=2", nil))

			Expect(recorder.Code).To(Equal(http.StatusOK))
			var body struct {
				Data       []map[string]any `json:"data"`
				Pagination map[string]int  `json:"pagination"`
			}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Data).To(HaveLen(2))
			Expect(body.Data[1]["kind"]).To(Equal("inventory"))
			Expect(body.Pagination).To(Equal(map[string]int{"page": 2, "limit": 2, "total": 5, "total_pages": 3}))
		})

		It("reports failures", func() {
			mockService.EXPECT().FindRuns(gomock.Any(), gomock.Any()).Return(nil, 0, errors.New("boom"))
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/driver-sync/runs", nil))
			Expect(recorder.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Context("getRun", func() {
		It("returns the run with its device outcomes", func() {
			run := newRun(domain.SyncRunKindDrivers, 1234)
			run.Start()
			run.Finish([]domain.DeviceOutcome{{DeviceID: 1234, Removed: []domain.DriverID{7}, Inserted: []domain.DriverID{8, 9}}}, nil)
			mockService.EXPECT().GetRun(gomock.Any(), run.ID).Return(run, nil)

			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/driver-sync/runs/"+run.ID.String(), nil))

			Expect(recorder.Code).To(Equal(http.StatusOK))
			var body map[string]any
			Expect(json.Unmarshal(recorder.Body.Bytes(), &body)).To(Succeed())
			Expect(body["status"]).To(Equal("finished"))
			Expect(body["removed"]).To(BeNumerically("==", 1))
			Expect(body["inserted"]).To(BeNumerically("==", 2))
			Expect(body["outcomes"]).To(HaveLen(1))
		})

		It("answers 404 for unknown runs", func() {
			mockService.EXPECT().GetRun(gomock.Any(), domain.ID("missing")).Return(domain.SyncRun{}, usecases.ErrSyncRunNotFound)
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/driver-sync/runs/missing", nil))
			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})
	})
})
