package link_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/netsim-project/netsim/link"
	"github.com/netsim-project/netsim/units"
)

var _ = Describe("Builder.Apply", func() {
	It("sets both directions symmetrically", func() {
		a, b := units.NodeID(1), units.NodeID(2)
		l := link.NewBuilder(a, b).
			Bandwidth(units.Bandwidth(1000)).
			Latency(units.Latency(0)).
			PacketLoss(units.MustPacketLoss(0.1)).
			Apply()

		Expect(*l.Channel(a, b)).To(Equal(*l.Channel(b, a)))
	})

	It("canonicalizes the LinkID regardless of argument order", func() {
		a, b := units.NodeID(5), units.NodeID(2)
		l1 := link.NewBuilder(a, b).Apply()
		l2 := link.NewBuilder(b, a).Apply()
		Expect(l1.ID()).To(Equal(l2.ID()))
	})
})

var _ = Describe("ApplyDirectional", func() {
	It("changes only the addressed direction", func() {
		a, b := units.NodeID(1), units.NodeID(2)
		base := link.NewBuilder(a, b).Bandwidth(units.Bandwidth(100)).Apply()

		updated := link.NewBuilder(a, b).Bandwidth(units.Bandwidth(9999)).ApplyDirectional(base, a, b)

		Expect(updated.Channel(a, b).Bandwidth).To(BeEquivalentTo(9999))
		Expect(updated.Channel(b, a).Bandwidth).To(BeEquivalentTo(100))
	})
})

var _ = Describe("Channel", func() {
	It("panics for a node pair that doesn't belong to the link", func() {
		a, b, c := units.NodeID(1), units.NodeID(2), units.NodeID(3)
		l := link.NewBuilder(a, b).Apply()
		Expect(func() { l.Channel(a, c) }).To(Panic())
	})
})
