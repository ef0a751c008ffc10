package node_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/netsim-project/netsim/node"
	"github.com/netsim-project/netsim/units"
)

var _ = Describe("Builder", func() {
	It("defaults to unlimited bandwidth and buffers", func() {
		n := node.NewBuilder().Build()
		Expect(uint64(n.UploadBandwidth)).To(BeEquivalentTo(node.Unlimited))
		Expect(n.UploadBufferMax).To(BeEquivalentTo(node.Unlimited))
	})

	It("applies only the overrides given", func() {
		n := node.NewBuilder().
			UploadBandwidth(units.Bandwidth(100)).
			UploadBufferMax(10).
			Build()
		Expect(uint64(n.UploadBandwidth)).To(BeEquivalentTo(100))
		Expect(n.UploadBufferMax).To(BeEquivalentTo(uint64(10)))
		Expect(n.DownloadBufferMax).To(BeEquivalentTo(node.Unlimited))
	})
})

var _ = Describe("Node buffer headroom", func() {
	It("reports max-used while under capacity", func() {
		n := node.Node{UploadBufferMax: 100, UploadBufferUsed: 40}
		Expect(n.UploadHeadroom()).To(BeEquivalentTo(uint64(60)))
	})

	It("never goes negative at or past capacity", func() {
		n := node.Node{UploadBufferMax: 100, UploadBufferUsed: 100}
		Expect(n.UploadHeadroom()).To(BeEquivalentTo(uint64(0)))
		n.UploadBufferUsed = 150
		Expect(n.UploadHeadroom()).To(BeEquivalentTo(uint64(0)))
	})
})
