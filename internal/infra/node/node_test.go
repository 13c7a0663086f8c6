package node_test

import (
	"fleet-sync-server/internal/infra/node"

	"github.com/google/uuid"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Node", func() {
	ginkgo.It("describes the running replica", func() {
		info := node.GetNodeInfo()

		gomega.Expect(info.Hostname).NotTo(gomega.BeEmpty())
		gomega.Expect(info.Version).To(gomega.Equal(node.Version))
		gomega.Expect(info.CommitHash).To(gomega.Equal(node.CommitHash))
		_, err := uuid.Parse(info.ID)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.It("keeps the same identity for the whole process", func() {
		first := node.GetNodeInfo()
		second := node.GetNodeInfo()
		gomega.Expect(second.ID).To(gomega.Equal(first.ID))
		gomega.Expect(second.Hostname).To(gomega.Equal(first.Hostname))
	})

	ginkgo.It("hands out copies", func() {
		first := node.GetNodeInfo()
		first.ID = "changed"
		gomega.Expect(node.GetNodeInfo().ID).NotTo(gomega.Equal("changed"))
	})
})
