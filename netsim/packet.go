package netsim

import (
	"time"

	"github.com/netsim-project/netsim/payload"
	"github.com/netsim-project/netsim/units"
)

// Packet is the immutable, caller-visible snapshot of an in-flight message:
// the fields a sink receives on delivery. The engine's own mutable transit
// bookkeeping (bytes emitted/delivered, latency remaining, corruption) lives
// in the unexported trackedPacket that wraps one of these.
type Packet[T payload.Data] struct {
	ID         units.PacketID
	From, To   units.NodeID
	Payload    T
	TotalBytes uint64
}

// Releasable is implemented by payload types that need to be told when the
// engine is done with them on a path other than delivery (loss or
// corruption. On delivery, ownership simply moves to the sink and Release
// is never called by the engine). payload.Bytes implements this.
type Releasable interface {
	Free()
}

// PacketBuilder constructs a Packet, validating that From, To, and Data were
// all supplied before handing out a PacketID.
type PacketBuilder[T payload.Data] struct {
	gen *units.Generator

	from, to       units.NodeID
	hasFrom, hasTo bool
	data           T
	hasData        bool
}

// NewPacketBuilder starts building a packet whose id will be drawn from gen
// normally a Network's own generator, obtained via Network.PacketIDGenerator.
func NewPacketBuilder[T payload.Data](gen *units.Generator) *PacketBuilder[T] {
	return &PacketBuilder[T]{gen: gen}
}

func (b *PacketBuilder[T]) From(id units.NodeID) *PacketBuilder[T] {
	b.from, b.hasFrom = id, true
	return b
}

func (b *PacketBuilder[T]) To(id units.NodeID) *PacketBuilder[T] {
	b.to, b.hasTo = id, true
	return b
}

func (b *PacketBuilder[T]) Data(data T) *PacketBuilder[T] {
	b.data, b.hasData = data, true
	return b
}

// Build validates the builder and, on success, draws the next PacketID from
// the generator. A PacketID is never consumed on a failed Build.
func (b *PacketBuilder[T]) Build() (Packet[T], error) {
	switch {
	case !b.hasFrom:
		return Packet[T]{}, &BuildError{Kind: MissingFrom}
	case !b.hasTo:
		return Packet[T]{}, &BuildError{Kind: MissingTo}
	case !b.hasData:
		return Packet[T]{}, &BuildError{Kind: MissingData}
	}
	return Packet[T]{
		ID:         b.gen.Next(),
		From:       b.from,
		To:         b.to,
		Payload:    b.data,
		TotalBytes: b.data.BytesSize(),
	}, nil
}

// trackedPacket is the Network's private view of a Packet in flight.
type trackedPacket[T payload.Data] struct {
	pkt Packet[T]

	bytesEmitted   uint64
	bytesDelivered uint64 // bytes that have crossed the channel's download side, including discarded overflow
	bufferedBytes  uint64 // subset of bytesDelivered actually occupying the receiver's download buffer

	latencyRemaining   time.Duration
	latencyInitialized bool

	lossRolled bool
	corrupted  bool
}

func (tp *trackedPacket[T]) emissionDone() bool  { return tp.bytesEmitted >= tp.pkt.TotalBytes }
func (tp *trackedPacket[T]) deliveryDone() bool  { return tp.bytesDelivered >= tp.pkt.TotalBytes }
func (tp *trackedPacket[T]) onWire() bool        { return tp.bytesEmitted > 0 }
func (tp *trackedPacket[T]) eligibleToAbsorb() bool {
	return tp.onWire() && tp.latencyRemaining < 0 && tp.bytesDelivered < tp.bytesEmitted
}
