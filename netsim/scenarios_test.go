package netsim_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/netsim-project/netsim/netsim"
	"github.com/netsim-project/netsim/payload"
	"github.com/netsim-project/netsim/units"
)

func send(net *netsim.Network[payload.Sized], from, to units.NodeID, size uint64) (netsim.Packet[payload.Sized], error) {
	pkt, err := netsim.NewPacketBuilder[payload.Sized](net.PacketIDGenerator()).
		From(from).To(to).Data(payload.Sized(size)).Build()
	if err != nil {
		return pkt, err
	}
	return pkt, net.Send(pkt)
}

var _ = Describe("AdvanceWith, end-to-end scenarios (seed 42)", func() {
	var net *netsim.Network[payload.Sized]
	var a, b units.NodeID

	BeforeEach(func() {
		net = netsim.New[payload.Sized]()
		a = net.NewNode().Build()
		b = net.NewNode().Build()
	})

	It("scenario 1: single hop delivery waits exactly two ticks at latency==step", func() {
		net.ConfigureLink(a, b).
			Bandwidth(units.Bandwidth(100_000_000 / 8)).
			Latency(units.Latency(50 * time.Millisecond)).
			Apply()
		_, err := send(net, a, b, 5)
		Expect(err).NotTo(HaveOccurred())

		var delivered []netsim.Packet[payload.Sized]
		sink := func(p netsim.Packet[payload.Sized]) { delivered = append(delivered, p) }

		Expect(net.AdvanceWith(50*time.Millisecond, sink)).To(Succeed())
		Expect(delivered).To(BeEmpty())

		Expect(net.AdvanceWith(50*time.Millisecond, sink)).To(Succeed())
		Expect(delivered).To(HaveLen(1))
		Expect(delivered[0].From).To(Equal(a))
		Expect(delivered[0].To).To(Equal(b))
	})

	It("scenario 2: latency ordering delivers both in ascending PacketID order in one call", func() {
		net.ConfigureLink(a, b).
			Bandwidth(units.Bandwidth(100_000_000 / 8)).
			Latency(units.Latency(20 * time.Millisecond)).
			Apply()
		pktA, err := send(net, a, b, 4)
		Expect(err).NotTo(HaveOccurred())
		pktB, err := send(net, a, b, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(pktA.ID < pktB.ID).To(BeTrue())

		var delivered []units.PacketID
		sink := func(p netsim.Packet[payload.Sized]) { delivered = append(delivered, p.ID) }

		Expect(net.AdvanceWith(25*time.Millisecond, sink)).To(Succeed())
		Expect(delivered).To(Equal([]units.PacketID{pktA.ID, pktB.ID}))
	})

	It("scenario 3: bandwidth throttle needs two ticks for a 10-byte packet at 10 B/s", func() {
		net.ConfigureLink(a, b).Bandwidth(units.Bandwidth(10)).Latency(units.Latency(0)).Apply()
		_, err := send(net, a, b, 10)
		Expect(err).NotTo(HaveOccurred())

		var delivered int
		sink := func(netsim.Packet[payload.Sized]) { delivered++ }

		Expect(net.AdvanceWith(500*time.Millisecond, sink)).To(Succeed())
		Expect(delivered).To(Equal(0))

		Expect(net.AdvanceWith(500*time.Millisecond, sink)).To(Succeed())
		Expect(delivered).To(Equal(1))
	})

	It("scenario 4: sender buffer full rejects until the buffer drains", func() {
		aNode := net.NewNode().UploadBufferMax(100).Build()
		net.ConfigureLink(aNode, b).Bandwidth(units.Bandwidth(1_000_000)).Latency(units.Latency(0)).Apply()

		_, err := send(net, aNode, b, 100)
		Expect(err).NotTo(HaveOccurred())

		_, err = send(net, aNode, b, 1)
		Expect(netsim.IsSenderBufferFull(err)).To(BeTrue())

		sink := func(netsim.Packet[payload.Sized]) {}
		for i := 0; i < 5; i++ {
			Expect(net.AdvanceWith(100*time.Millisecond, sink)).To(Succeed())
		}

		_, err = send(net, aNode, b, 1)
		Expect(err).NotTo(HaveOccurred())
	})

	It("scenario 5: download overflow corrupts a packet instead of delivering it", func() {
		bNode := net.NewNode().DownloadBufferMax(4).Build()
		net.ConfigureLink(a, bNode).Bandwidth(units.Bandwidth(1)).Latency(units.Latency(0)).Apply()

		_, err := send(net, a, bNode, 10)
		Expect(err).NotTo(HaveOccurred())

		sinkCalls := 0
		sink := func(netsim.Packet[payload.Sized]) { sinkCalls++ }
		for i := 0; i < 10; i++ {
			Expect(net.AdvanceWith(1*time.Second, sink)).To(Succeed())
		}
		Expect(sinkCalls).To(Equal(0))
		Expect(net.PacketsInTransit()).To(Equal(0))
	})

	It("scenario 6: loss is deterministic per seed and differs across seeds", func() {
		configure := func(seed uint64) map[units.PacketID]bool {
			net := netsim.New[payload.Sized]()
			net.SetSeed(seed)
			a := net.NewNode().Build()
			b := net.NewNode().Build()
			net.ConfigureLink(a, b).
				Bandwidth(units.Bandwidth(1_000_000)).
				Latency(units.Latency(0)).
				PacketLoss(units.MustPacketLoss(0.5)).
				Apply()

			delivered := make(map[units.PacketID]bool)
			sink := func(p netsim.Packet[payload.Sized]) { delivered[p.ID] = true }
			for i := 0; i < 1000; i++ {
				_, err := send(net, a, b, 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(net.AdvanceWith(time.Second, sink)).To(Succeed())
			}
			return delivered
		}

		run1 := configure(42)
		run2 := configure(42)
		run3 := configure(43)

		Expect(run1).To(Equal(run2))
		Expect(run1).NotTo(Equal(run3))
	})
})
