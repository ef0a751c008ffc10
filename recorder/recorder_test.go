package recorder_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/netsim-project/netsim/recorder"
	"github.com/netsim-project/netsim/units"
)

var _ = Describe("Frame round trip", func() {
	It("survives Append/Read unchanged", func() {
		f := recorder.Frame{ID: 7, From: 1, To: 2, Size: 128, DeliveredRound: 3}
		var log []byte
		log = recorder.AppendFrame(log, f)

		got, rest, err := recorder.ReadFrame(log)
		Expect(err).NotTo(HaveOccurred())
		Expect(rest).To(BeEmpty())
		Expect(got).To(Equal(f))
	})

	It("decodes a log of several frames in order", func() {
		frames := []recorder.Frame{
			{ID: 0, From: 1, To: 2, Size: 5, DeliveredRound: 1},
			{ID: 1, From: 1, To: 2, Size: 9, DeliveredRound: 2},
			{ID: 2, From: 2, To: 1, Size: 3, DeliveredRound: 2},
		}
		var log []byte
		for _, f := range frames {
			log = recorder.AppendFrame(log, f)
		}

		got, err := recorder.ReadLog(log)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(frames))
	})
})

var _ = Describe("Recorder", func() {
	It("stamps each observation with the round at call time", func() {
		round := uint64(0)
		r := recorder.New(func() uint64 { return round })

		r.Observe(units.PacketID(1), units.NodeID(1), units.NodeID(2), 10)
		round = 5
		r.Observe(units.PacketID(2), units.NodeID(1), units.NodeID(2), 20)

		frames, err := r.Frames()
		Expect(err).NotTo(HaveOccurred())
		Expect(frames).To(HaveLen(2))
		Expect(frames[0].DeliveredRound).To(BeEquivalentTo(0))
		Expect(frames[1].DeliveredRound).To(BeEquivalentTo(5))
	})
})
