// Package netsim is the deterministic packet-propagation engine: the
// Network value type that owns nodes, links, in-flight packets, and the
// advance_with tick algorithm. The Network never opens a socket, starts a
// goroutine, or reads a real clock. Every time-dependent operation takes
// an explicit Duration, and all mutation happens synchronously inside a
// single call.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package netsim

import (
	"math"
	"sort"
	"time"

	"github.com/netsim-project/netsim/cmn/debug"
	"github.com/netsim-project/netsim/cmn/xoshiro256"
	"github.com/netsim-project/netsim/link"
	"github.com/netsim-project/netsim/node"
	"github.com/netsim-project/netsim/payload"
	"github.com/netsim-project/netsim/units"
)

// DefaultSeed is used when a Network is constructed via New without an
// explicit SetSeed call. It is fixed (not randomized) so that a caller who
// never thinks about reproducibility still gets it for free.
const DefaultSeed uint64 = 42

// Network owns every Node, Link, and in-flight Packet for one simulation.
// It is a value type: the zero Network is not useful, construct with New.
// Concurrent mutation from multiple goroutines is a programmer error; a
// caller that needs to share a Network across goroutines must supply its
// own synchronization.
type Network[T payload.Data] struct {
	nodes map[units.NodeID]*node.Node
	links map[units.LinkID]link.Link

	packets map[units.PacketID]*trackedPacket[T]
	// order is kept sorted by ascending PacketID and walked in that order
	// at every tick phase, so older packets (lower ids) always get first
	// claim on a tick's bandwidth budget, whatever order they were sent in.
	order []units.PacketID

	nextNodeID uint64
	idGen      *units.Generator

	seed uint64
	rng  *xoshiro256.Rng

	round   uint64
	elapsed time.Duration

	// guard backs the -tags debug duplicate-delivery check; see guard_on.go
	// and guard_off.go. Left nil (and untouched) in default builds.
	guard any

	dropHook func(Packet[T])
}

// OnDrop registers a hook invoked for every packet that completes corrupted
// (loss-rolled or download-overflow) instead of reaching sink, after its
// payload has already been released. Unlike sink, which AdvanceWith takes
// per call, this is a standing observer: set once, e.g. by a stats
// server wrapping the Network, not threaded through every tick call.
func (n *Network[T]) OnDrop(hook func(Packet[T])) { n.dropHook = hook }

// New returns an empty Network seeded with DefaultSeed.
func New[T payload.Data]() *Network[T] {
	n := &Network[T]{
		nodes:   make(map[units.NodeID]*node.Node),
		links:   make(map[units.LinkID]link.Link),
		packets: make(map[units.PacketID]*trackedPacket[T]),
		idGen:   units.NewGenerator(),
	}
	n.SetSeed(DefaultSeed)
	return n
}

// SetSeed replaces the Network's RNG with one freshly seeded from seed.
// Only the RNG is affected; topology, buffers, and in-flight packets are
// untouched. Calling this mid-simulation is allowed but makes the loss
// rolls from that point on depend on the new seed; full reproducibility
// requires setting the seed once, before any Send or AdvanceWith call.
func (n *Network[T]) SetSeed(seed uint64) {
	n.seed = seed
	n.rng = xoshiro256.New(seed)
}

// PacketIDGenerator returns the Network's packet-id generator, handed to
// Packet.Builder via NewPacketBuilder.
func (n *Network[T]) PacketIDGenerator() *units.Generator { return n.idGen }

// Round reports how many AdvanceWith calls have completed.
func (n *Network[T]) Round() uint64 { return n.round }

// Elapsed reports the accumulated simulated time across all AdvanceWith calls.
func (n *Network[T]) Elapsed() time.Duration { return n.elapsed }

// PacketsInTransit reports how many packets are currently tracked by the
// Network (sent but neither delivered nor dropped).
func (n *Network[T]) PacketsInTransit() int { return len(n.packets) }

// Node returns a read-only copy of the Node identified by id, and whether
// it exists.
func (n *Network[T]) Node(id units.NodeID) (node.Node, bool) {
	np, ok := n.nodes[id]
	if !ok {
		return node.Node{}, false
	}
	return *np, true
}

// Link returns a read-only copy of the Link identified by id, and whether
// it exists.
func (n *Network[T]) Link(id units.LinkID) (link.Link, bool) {
	l, ok := n.links[id]
	return l, ok
}

// MinimumStepDuration reports the smallest step such that every configured
// channel's bandwidth*step is at least one byte. A Network with no
// configured channels (or only zero-bandwidth ones, which no finite step
// could satisfy) reports 1 nanosecond.
func (n *Network[T]) MinimumStepDuration() time.Duration {
	var min time.Duration
	consider := func(bw units.Bandwidth) {
		if bw == 0 {
			return
		}
		// smallest d with bw*d.Seconds() >= 1, i.e. d >= 1/bw seconds.
		d := time.Duration(math.Ceil(float64(time.Second) / float64(bw)))
		if d <= 0 {
			d = time.Nanosecond
		}
		if d > min {
			min = d
		}
	}
	for _, l := range n.links {
		consider(l.AtoB.Bandwidth)
		consider(l.BtoA.Bandwidth)
	}
	if min == 0 {
		min = time.Nanosecond
	}
	return min
}

// NodeBuilder configures and inserts a new Node into a Network.
type NodeBuilder[T payload.Data] struct {
	net   *Network[T]
	b     *node.Builder
	id    units.NodeID
	hasID bool
}

// NewNode starts configuring a Node; call Build to allocate its NodeID and
// insert it. Nodes are never deleted during a simulation.
func (n *Network[T]) NewNode() *NodeBuilder[T] {
	return &NodeBuilder[T]{net: n, b: node.NewBuilder()}
}

// WithID pins the NodeID Build() inserts under, instead of drawing the next
// sequential id. Callers that derive a stable id from elsewhere (e.g.
// units.NodeIDFromName, so a topology can address nodes by name) use this to
// keep that id as the one the Network actually stores the Node under.
func (b *NodeBuilder[T]) WithID(id units.NodeID) *NodeBuilder[T] {
	b.id, b.hasID = id, true
	return b
}

func (b *NodeBuilder[T]) UploadBandwidth(bw units.Bandwidth) *NodeBuilder[T] {
	b.b.UploadBandwidth(bw)
	return b
}

func (b *NodeBuilder[T]) DownloadBandwidth(bw units.Bandwidth) *NodeBuilder[T] {
	b.b.DownloadBandwidth(bw)
	return b
}

func (b *NodeBuilder[T]) UploadBufferMax(max uint64) *NodeBuilder[T] {
	b.b.UploadBufferMax(max)
	return b
}

func (b *NodeBuilder[T]) DownloadBufferMax(max uint64) *NodeBuilder[T] {
	b.b.DownloadBufferMax(max)
	return b
}

// Build inserts the configured Node and returns its id: the id pinned via
// WithID, or else a freshly allocated sequential NodeID.
func (b *NodeBuilder[T]) Build() units.NodeID {
	id := b.id
	if !b.hasID {
		b.net.nextNodeID++
		id = units.NodeID(b.net.nextNodeID)
	}
	built := b.b.Build()
	b.net.nodes[id] = &built
	return id
}

// LinkBuilder configures the Link between two nodes, either symmetrically
// (Apply) or one direction at a time (ApplyDirectional).
type LinkBuilder[T payload.Data] struct {
	net  *Network[T]
	b    *link.Builder
	a, z units.NodeID
}

// ConfigureLink starts configuring the Link between a and b. Apply (or
// ApplyDirectional) inserts or updates the Link identified by
// units.NewLinkID(a, b); re-invoking later with new values makes those
// values apply starting the next AdvanceWith round. Packets already
// mid-flight keep using the values in force when they began their current
// round: AdvanceWith snapshots link configuration once at the start of
// each round.
func (n *Network[T]) ConfigureLink(a, b units.NodeID) *LinkBuilder[T] {
	return &LinkBuilder[T]{net: n, b: link.NewBuilder(a, b), a: a, z: b}
}

func (lb *LinkBuilder[T]) Bandwidth(bw units.Bandwidth) *LinkBuilder[T] {
	lb.b.Bandwidth(bw)
	return lb
}

func (lb *LinkBuilder[T]) Latency(l units.Latency) *LinkBuilder[T] {
	lb.b.Latency(l)
	return lb
}

func (lb *LinkBuilder[T]) PacketLoss(p units.PacketLoss) *LinkBuilder[T] {
	lb.b.PacketLoss(p)
	return lb
}

// Apply inserts or updates the Link with both directions set symmetrically.
func (lb *LinkBuilder[T]) Apply() units.LinkID {
	l := lb.b.Apply()
	lb.net.links[l.ID()] = l
	return l.ID()
}

// ApplyDirectional inserts or updates only the (from, to) Channel of the
// Link between the builder's two nodes, leaving the opposite direction as
// it was (or zero-valued, if the Link didn't exist yet).
func (lb *LinkBuilder[T]) ApplyDirectional(from, to units.NodeID) units.LinkID {
	id := units.NewLinkID(lb.a, lb.z)
	existing := lb.net.links[id] // zero value if absent
	l := lb.b.ApplyDirectional(existing, from, to)
	lb.net.links[id] = l
	return id
}

// Send admits pkt into the Network, reserving its TotalBytes against the
// sender's upload buffer. It never blocks and never drops due to link
// conditions; loss and corruption are evaluated during AdvanceWith. On a
// rejected Send, no state changes are made.
func (n *Network[T]) Send(pkt Packet[T]) error {
	if pkt.From == pkt.To {
		return &SendError{Kind: SelfSend}
	}
	from, ok := n.nodes[pkt.From]
	if !ok {
		return &SendError{Kind: UnknownRoute}
	}
	if _, ok := n.nodes[pkt.To]; !ok {
		return &SendError{Kind: UnknownRoute}
	}
	linkID := units.NewLinkID(pkt.From, pkt.To)
	if _, ok := n.links[linkID]; !ok {
		return &SendError{Kind: UnknownRoute}
	}
	if from.UploadBufferUsed+pkt.TotalBytes > from.UploadBufferMax {
		return &SendError{Kind: SenderBufferFull}
	}

	from.UploadBufferUsed += pkt.TotalBytes
	n.packets[pkt.ID] = &trackedPacket[T]{pkt: pkt}
	i := sort.Search(len(n.order), func(i int) bool { return n.order[i] > pkt.ID })
	n.order = append(n.order, 0)
	copy(n.order[i+1:], n.order[i:])
	n.order[i] = pkt.ID
	debug.Assert(from.UploadBufferUsed <= from.UploadBufferMax)
	return nil
}
