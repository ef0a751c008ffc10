package netsim

import (
	"time"

	"github.com/netsim-project/netsim/cmn/debug"
	"github.com/netsim-project/netsim/link"
	"github.com/netsim-project/netsim/units"
)

// dirKey addresses one direction of a Link by its endpoints, independent of
// how the pair's LinkID happened to canonicalize.
type dirKey struct{ from, to units.NodeID }

// AdvanceWith runs one tick of step duration: it rolls loss for newly-seen
// packets, emits bytes from sender upload buffers onto the wire, propagates
// latency, absorbs bytes into receiver download buffers (charging overflow
// against the medium rather than blocking it), and finally delivers or
// drops every packet that finished this tick, in ascending PacketID order
// at every phase. sink is called exactly once per packet that completes
// uncorrupted; corrupted packets are silently released instead.
//
// AdvanceWith never reads a real clock and never blocks: step is supplied
// by the caller, and every packet either makes progress or sits waiting on
// a budget that resets next call.
func (n *Network[T]) AdvanceWith(step time.Duration, sink func(Packet[T])) error {
	if step <= 0 {
		return &ErrNonPositiveStep{Step: step.String()}
	}

	// Snapshot link configuration once per round: a ConfigureLink call
	// observed mid-round (e.g. from inside sink) takes effect starting next
	// round, never retroactively within this one.
	links := make(map[units.LinkID]link.Link, len(n.links))
	for id, l := range n.links {
		links[id] = l
	}

	n.rollLoss(links)
	n.emit(step, links)
	n.propagateLatency(step)
	n.absorb(step, links)
	n.complete(sink)

	n.round++
	n.elapsed += step
	return nil
}

func (n *Network[T]) rollLoss(links map[units.LinkID]link.Link) {
	for _, id := range n.order {
		tp := n.packets[id]
		if tp.lossRolled {
			continue
		}
		ch := channelIn(links, tp.pkt.From, tp.pkt.To)
		if ch != nil && ch.PacketLoss > 0 {
			if n.rng.Float64() < ch.PacketLoss.Float64() {
				tp.corrupted = true
			}
		}
		tp.lossRolled = true
	}
}

func (n *Network[T]) emit(step time.Duration, links map[units.LinkID]link.Link) {
	nodeRemaining := make(map[units.NodeID]uint64)
	chRemaining := make(map[dirKey]uint64)

	for _, id := range n.order {
		tp := n.packets[id]
		if tp.emissionDone() {
			continue
		}
		from, to := tp.pkt.From, tp.pkt.To
		ch := channelIn(links, from, to)
		if ch == nil {
			continue // link removed mid-flight; packet stalls rather than panics
		}
		nRem := lazyInit(nodeRemaining, from, n.nodes[from].UploadBandwidth.Bytes(step))
		cRem := lazyInit(chRemaining, dirKey{from, to}, ch.Bandwidth.Bytes(step))

		want := tp.pkt.TotalBytes - tp.bytesEmitted
		amt := minUint64(want, nRem, cRem)
		if amt == 0 {
			continue
		}

		tp.bytesEmitted += amt
		nodeRemaining[from] -= amt
		chRemaining[dirKey{from, to}] -= amt

		node := n.nodes[from]
		debug.Assert(node.UploadBufferUsed >= amt)
		node.UploadBufferUsed -= amt

		if !tp.latencyInitialized {
			tp.latencyRemaining = ch.Latency.Duration()
			tp.latencyInitialized = true
		}
	}
}

func (n *Network[T]) propagateLatency(step time.Duration) {
	for _, id := range n.order {
		tp := n.packets[id]
		if !tp.onWire() {
			continue
		}
		tp.latencyRemaining -= step
	}
}

func (n *Network[T]) absorb(step time.Duration, links map[units.LinkID]link.Link) {
	nodeRemaining := make(map[units.NodeID]uint64)
	chRemaining := make(map[dirKey]uint64)

	for _, id := range n.order {
		tp := n.packets[id]
		if !tp.eligibleToAbsorb() {
			continue
		}
		from, to := tp.pkt.From, tp.pkt.To
		ch := channelIn(links, from, to)
		if ch == nil {
			continue
		}
		nRem := lazyInit(nodeRemaining, to, n.nodes[to].DownloadBandwidth.Bytes(step))
		cRem := lazyInit(chRemaining, dirKey{from, to}, ch.Bandwidth.Bytes(step))

		want := tp.bytesEmitted - tp.bytesDelivered
		amt := minUint64(want, nRem, cRem)
		if amt == 0 {
			continue
		}

		node := n.nodes[to]
		headroom := node.DownloadHeadroom()
		accepted := amt
		if accepted > headroom {
			accepted = headroom
			tp.corrupted = true // charge the medium: overflow still consumes budget, payload is lost
		}

		tp.bytesDelivered += amt
		tp.bufferedBytes += accepted
		node.DownloadBufferUsed += accepted

		nodeRemaining[to] -= amt
		chRemaining[dirKey{from, to}] -= amt
	}
}

func (n *Network[T]) complete(sink func(Packet[T])) {
	var done []units.PacketID
	for _, id := range n.order {
		tp := n.packets[id]
		if !tp.deliveryDone() {
			continue
		}
		node := n.nodes[tp.pkt.To]
		debug.Assert(node.DownloadBufferUsed >= tp.bufferedBytes)
		node.DownloadBufferUsed -= tp.bufferedBytes

		if tp.corrupted {
			if r, ok := any(tp.pkt.Payload).(Releasable); ok {
				r.Free()
			}
			if n.dropHook != nil {
				n.dropHook(tp.pkt)
			}
		} else {
			n.guardDelivery(tp.pkt.ID)
			sink(tp.pkt)
		}
		done = append(done, id)
	}
	if len(done) == 0 {
		return
	}
	for _, id := range done {
		delete(n.packets, id)
	}
	kept := n.order[:0]
	doneSet := make(map[units.PacketID]struct{}, len(done))
	for _, id := range done {
		doneSet[id] = struct{}{}
	}
	for _, id := range n.order {
		if _, drop := doneSet[id]; drop {
			continue
		}
		kept = append(kept, id)
	}
	n.order = kept
}

func channelIn(links map[units.LinkID]link.Link, from, to units.NodeID) *link.Channel {
	l, ok := links[units.NewLinkID(from, to)]
	if !ok {
		return nil
	}
	return l.Channel(from, to)
}

func lazyInit[K comparable](m map[K]uint64, key K, init uint64) uint64 {
	if v, ok := m[key]; ok {
		return v
	}
	m[key] = init
	return init
}

func minUint64(vs ...uint64) uint64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
