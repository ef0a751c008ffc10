// Package units provides the typed wrappers for bandwidth, latency, loss
// rate, and the opaque integer identifiers that the rest of the simulator
// navigates by. The engine never stores raw integers or durations where one
// of these types belongs. The newtypes exist so that a misplaced byte count
// can never silently stand in for a rate, and so that node/link/packet
// identity is never confused with an array index.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package units

import (
	"fmt"
	"time"

	"github.com/OneOfOne/xxhash"

	"github.com/netsim-project/netsim/cmn/cos"
)

// Bandwidth is a rate in bytes per second. Presentation concerns (parsing
// "100Mbps" and the like) live outside the core; the engine only ever
// stores and multiplies bytes/s.
type Bandwidth uint64

// Bytes returns the number of whole bytes this bandwidth allows to move in
// d. Fractional bytes are truncated, so a step that is too small yields a
// budget of zero; AdvanceWith does not check for this (it rejects only a
// non-positive step), and Network.MinimumStepDuration reports the smallest
// step that moves at least one byte on every configured channel.
func (b Bandwidth) Bytes(d time.Duration) uint64 {
	if b == 0 || d <= 0 {
		return 0
	}
	return uint64(float64(b) * d.Seconds())
}

func (b Bandwidth) String() string { return fmt.Sprintf("%d B/s", uint64(b)) }

// Latency is a one-way propagation delay, independent of packet size.
type Latency time.Duration

func (l Latency) Duration() time.Duration { return time.Duration(l) }
func (l Latency) String() string          { return time.Duration(l).String() }

// PacketLoss is a drop rate in [0,1]. Constructed only through NewPacketLoss
// so that an out-of-range rate fails at the call site instead of silently
// clamping or, worse, rolling a nonsensical probability at tick time.
type PacketLoss float64

// NewPacketLoss validates rate and returns a PacketLoss, or a *cos.DomainError
// if rate is outside [0,1].
func NewPacketLoss(rate float64) (PacketLoss, error) {
	if rate < 0 || rate > 1 {
		return 0, cos.NewDomainError("packet loss rate", rate)
	}
	return PacketLoss(rate), nil
}

// MustPacketLoss is NewPacketLoss for callers (tests, scenario fixtures)
// that already know the rate is valid and would rather panic on a bug than
// thread an error through.
func MustPacketLoss(rate float64) PacketLoss {
	p, err := NewPacketLoss(rate)
	if err != nil {
		panic(err)
	}
	return p
}

func (p PacketLoss) Float64() float64 { return float64(p) }

// NodeID opaquely identifies a Node for the lifetime of its owning Network.
type NodeID uint64

func (n NodeID) String() string { return fmt.Sprintf("node-%d", uint64(n)) }

// NodeIDFromName deterministically derives a NodeID from a human-readable
// name, so topologies declared in scenario files can refer to nodes by name
// while the engine still keys everything off a stable integer. The same
// name always yields the same ID, which is the only property that matters
// here: xxhash is not a cryptographic primitive, just a fast, stable hash.
func NodeIDFromName(name string) NodeID {
	return NodeID(xxhash.Checksum64([]byte(name)))
}

// PacketID is assigned by a Network's packet-id generator, strictly
// increasing, and doubles as the engine's canonical within-tick ordering
// key (see Generator).
type PacketID uint64

func (p PacketID) String() string { return fmt.Sprintf("packet-%d", uint64(p)) }

// Generator hands out strictly increasing PacketIDs. It belongs to exactly
// one Network; handed to Packet.Builder so packets can be constructed
// before being handed to Network.Send.
type Generator struct {
	next uint64
}

// NewGenerator returns a Generator whose first Next() call yields 0.
func NewGenerator() *Generator { return &Generator{} }

// Next returns the next PacketID and advances the generator.
func (g *Generator) Next() PacketID {
	id := g.next
	g.next++
	return PacketID(id)
}

// Peek reports the PacketID Next() would return without advancing.
func (g *Generator) Peek() PacketID { return PacketID(g.next) }

// LinkID identifies a Link. Links are undirected pairs of nodes carrying
// two independent directional Channels; LinkID canonicalizes over the
// unordered pair so NewLinkID(a, b) == NewLinkID(b, a).
type LinkID struct {
	lo, hi NodeID
}

// NewLinkID canonicalizes the unordered pair (a, b).
func NewLinkID(a, b NodeID) LinkID {
	if a <= b {
		return LinkID{lo: a, hi: b}
	}
	return LinkID{lo: b, hi: a}
}

// Nodes returns the canonical (lo, hi) pair backing this LinkID. It is not
// the caller's "from"/"to"; direction is carried separately by whichever
// Channel of the Link is being addressed.
func (l LinkID) Nodes() (NodeID, NodeID) { return l.lo, l.hi }

func (l LinkID) String() string { return fmt.Sprintf("link-%d-%d", l.lo, l.hi) }
