package communication_test

import (
	"errors"
	"time"

	"fleet-sync-server/internal/driver_sync/communication"
	"fleet-sync-server/internal/driver_sync/domain"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Payloads", func() {
	ginkgo.Context("CommandID", func() {
		ginkgo.DescribeTable("extracts the command id",
			func(data any, expected string) {
				id, ok := communication.CommandID(data)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(id).To(gomega.Equal(expected))
			},
			ginkgo.Entry("plain string", "abc", "abc"),
			ginkgo.Entry("number", float64(991), "991"),
			ginkgo.Entry("object", map[string]any{"commandId": float64(12)}, "12"),
			ginkgo.Entry("list of objects", []any{map[string]any{"id": "x1"}}, "x1"),
		)

		ginkgo.It("rejects empty values", func() {
			_, ok := communication.CommandID([]any{})
			gomega.Expect(ok).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("StoredDriversFromData", func() {
		ginkgo.It("reads a list of slots", func() {
			stored, err := communication.StoredDriversFromData([]any{
				map[string]any{"position": float64(2), "driverId": "500"},
				map[string]any{"position": float64(1), "driverId": float64(100)},
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(stored).To(gomega.Equal(domain.StoredDrivers{1: 100, 2: 500}))
		})

		ginkgo.It("reads an object keyed by position", func() {
			stored, err := communication.StoredDriversFromData(map[string]any{"1": "100", "3": float64(300)})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(stored.Values()).To(gomega.Equal([]domain.DriverID{100, 300}))
		})

		ginkgo.It("rejects entries without driver id", func() {
			_, err := communication.StoredDriversFromData([]any{map[string]any{"position": float64(1)}})
			gomega.Expect(errors.Is(err, communication.ErrMalformedResponse)).To(gomega.BeTrue())
		})
	})

	ginkgo.Context("BulkPageFromData", func() {
		ginkgo.It("reads the pagination fields", func() {
			page, err := communication.BulkPageFromData(map[string]any{
				"current_page": float64(1),
				"per_page":     float64(2),
				"last_page":    float64(3),
				"total":        float64(5),
				"data":         []any{"a", "b"},
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(page.LastPage).To(gomega.Equal(3))
			gomega.Expect(page.HasNext()).To(gomega.BeTrue())
			gomega.Expect(page.Rows).To(gomega.HaveLen(2))
		})

		ginkgo.It("rejects a page without last_page", func() {
			_, err := communication.BulkPageFromData(map[string]any{
				"current_page": float64(1), "per_page": float64(2), "total": float64(5), "data": []any{},
			})
			gomega.Expect(errors.Is(err, communication.ErrMalformedResponse)).To(gomega.BeTrue())
		})
	})

	ginkgo.Context("QueueEntriesFromData", func() {
		ginkgo.It("parses dates and keeps nulls", func() {
			entries, err := communication.QueueEntriesFromData([]any{
				map[string]any{"commandId": "9", "requestDate": "2024-05-10 11:00:00", "sendDate": nil},
			}, time.Local)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(entries).To(gomega.HaveLen(1))
			gomega.Expect(entries[0].RequestDate).NotTo(gomega.BeNil())
			gomega.Expect(entries[0].IsSent()).To(gomega.BeFalse())
		})

		ginkgo.It("reads dates in the api time zone", func() {
			saoPaulo := time.FixedZone("BRT", -3*60*60)
			entries, err := communication.QueueEntriesFromData([]any{
				map[string]any{"commandId": "9", "sendDate": "2024-05-10 11:00:00"},
			}, saoPaulo)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(entries[0].SendDate.UTC()).To(gomega.Equal(time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)))
		})

		ginkgo.It("rejects invalid dates", func() {
			_, err := communication.QueueEntriesFromData([]any{map[string]any{"sendDate": "yesterday"}}, time.Local)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})
})
