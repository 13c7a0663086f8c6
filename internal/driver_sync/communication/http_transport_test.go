package communication_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"

	"fleet-sync-server/internal/driver_sync/communication"
	"fleet-sync-server/internal/logger"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("HTTPTransport", func() {
	var (
		server    *httptest.Server
		received  url.Values
		path      string
		status    int
		body      string
		transport *communication.HTTPTransport
	)

	ginkgo.BeforeEach(func() {
		status = http.StatusOK
		body = `{"success":true,"error":0,"data":[1,2]}`
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseForm()
			received = r.PostForm
			path = r.URL.Path
			w.WriteHeader(status)
			fmt.Fprint(w, body)
		}))

		var err error
		transport, err = communication.NewHTTPTransport(communication.HTTPTransportConfig{
			BaseURL: server.URL + "/api/",
			Key:     "secret",
		}, logger.NewNopLogger())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.AfterEach(func() {
		server.Close()
	})

	ginkgo.It("posts the form with the account key", func() {
		params := url.Values{}
		params.Set(communication.ParamDeviceID, "001234")
		params.Add(communication.ParamDriverIDs, "1")
		params.Add(communication.ParamDriverIDs, "2")

		raw, err := transport.SendRequest(context.Background(), communication.PathInsertDrivers, params)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(path).To(gomega.Equal("/api/" + communication.PathInsertDrivers))
		gomega.Expect(received.Get(communication.ParamKey)).To(gomega.Equal("secret"))
		gomega.Expect(received[communication.ParamDriverIDs]).To(gomega.Equal([]string{"1", "2"}))
		gomega.Expect(params.Get(communication.ParamKey)).To(gomega.BeEmpty())
		gomega.Expect(raw).To(gomega.HaveKeyWithValue("success", true))
	})

	ginkgo.It("reports non 2xx answers as transport errors", func() {
		status = http.StatusBadGateway
		body = "bad gateway"

		_, err := transport.SendRequest(context.Background(), communication.PathDriverList, url.Values{})
		var transportErr *communication.TransportError
		gomega.Expect(errors.As(err, &transportErr)).To(gomega.BeTrue())
		gomega.Expect(transportErr.StatusCode).To(gomega.Equal(http.StatusBadGateway))
	})

	ginkgo.It("reports undecodable bodies as transport errors", func() {
		body = "<html>"

		_, err := transport.SendRequest(context.Background(), communication.PathDriverList, url.Values{})
		var transportErr *communication.TransportError
		gomega.Expect(errors.As(err, &transportErr)).To(gomega.BeTrue())
	})

	ginkgo.It("requires a base url", func() {
		_, err := communication.NewHTTPTransport(communication.HTTPTransportConfig{}, logger.NewNopLogger())
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
