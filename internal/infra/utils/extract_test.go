package utils_test

import (
	"fleet-sync-server/internal/infra/utils"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractStringValue", func() {
	It("reads a string from a decoded row", func() {
		row := map[string]any{"placa": "ABC1D23"}
		Expect(utils.ExtractStringValue(row, "placa")).To(Equal("ABC1D23"))
	})

	It("reads a struct field", func() {
		msg := struct{ Name string }{Name: "truck"}
		Expect(utils.ExtractStringValue(msg, "Name")).To(Equal("truck"))
	})

	It("follows dotted paths", func() {
		row := map[string]any{"client": map[string]any{"name": "acme"}}
		Expect(utils.ExtractStringValue(row, "client.name")).To(Equal("acme"))
	})

	It("formats non string values", func() {
		Expect(utils.ExtractStringValue(map[string]any{"n": 12}, "n")).To(Equal("12"))
	})

	It("returns an empty string when the property is missing or unnamed", func() {
		Expect(utils.ExtractStringValue(map[string]any{"a": "b"}, "missing")).To(BeEmpty())
		Expect(utils.ExtractStringValue(map[string]any{"a": "b"}, "")).To(BeEmpty())
	})
})

var _ = Describe("ExtractIntValue", func() {
	DescribeTable("accepts integral values",
		func(value any, expected int64) {
			got, ok := utils.ExtractIntValue(map[string]any{"id": value}, "id")
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(expected))
		},
		Entry("JSON number", float64(1234567), int64(1234567)),
		Entry("large JSON number", float64(123456789), int64(123456789)),
		Entry("int", 42, int64(42)),
		Entry("int64", int64(7), int64(7)),
		Entry("numeric string", " 001234 ", int64(1234)),
	)

	DescribeTable("rejects everything else",
		func(value any) {
			_, ok := utils.ExtractIntValue(map[string]any{"id": value}, "id")
			Expect(ok).To(BeFalse())
		},
		Entry("fraction", 1.5),
		Entry("text", "abc"),
		Entry("bool", true),
		Entry("missing", nil),
	)

	It("rejects an empty property name", func() {
		_, ok := utils.ExtractIntValue(map[string]any{"id": 1}, "")
		Expect(ok).To(BeFalse())
	})
})
