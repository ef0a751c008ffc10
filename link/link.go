// Package link models a directed-pair channel between two nodes: one Link
// per unordered node pair, carrying two independent Channels (one per
// direction). Changing one Channel never perturbs the other: saturating
// a→b must never reduce throughput achievable on b→a.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package link

import (
	"github.com/netsim-project/netsim/units"
)

// Channel is one direction of a Link.
type Channel struct {
	Bandwidth  units.Bandwidth
	Latency    units.Latency
	PacketLoss units.PacketLoss
}

// Link is the full-duplex pair of Channels between two nodes, keyed by
// LinkID (the canonicalized unordered pair). AtoB carries traffic from the
// numerically lower NodeID to the higher one as returned by LinkID.Nodes; BtoA
// is the reverse. Callers normally don't address AtoB/BtoA directly; use
// Link.Channel(from, to) to get the channel facing the direction they care
// about regardless of how the pair happened to canonicalize.
type Link struct {
	id   units.LinkID
	AtoB Channel
	BtoA Channel
}

// New returns a Link for id with both directions zero-valued; callers
// populate it via a Builder before it carries traffic.
func New(id units.LinkID) Link {
	return Link{id: id}
}

// ID returns the canonicalized LinkID this Link was constructed for.
func (l Link) ID() units.LinkID { return l.id }

// Channel returns the directional channel facing from->to. Panics if
// (from, to) doesn't name the two endpoints of this link; that is a
// programmer error (the caller fetched the wrong Link), not a runtime
// condition the engine needs to recover from.
func (l *Link) Channel(from, to units.NodeID) *Channel {
	lo, hi := l.id.Nodes()
	switch {
	case from == lo && to == hi:
		return &l.AtoB
	case from == hi && to == lo:
		return &l.BtoA
	default:
		panic("link: (from, to) does not match this link's endpoints")
	}
}

// Builder configures both Channels of a Link, or one at a time via
// ApplyDirectional for asymmetric links.
type Builder struct {
	a, b       units.NodeID
	bandwidth  units.Bandwidth
	latency    units.Latency
	packetLoss units.PacketLoss
}

// NewBuilder starts configuring the link between a and b. Both directions
// receive the same settings unless ApplyDirectional is used instead of
// Apply.
func NewBuilder(a, b units.NodeID) *Builder {
	return &Builder{a: a, b: b}
}

func (c *Builder) Bandwidth(bw units.Bandwidth) *Builder {
	c.bandwidth = bw
	return c
}

func (c *Builder) Latency(l units.Latency) *Builder {
	c.latency = l
	return c
}

func (c *Builder) PacketLoss(p units.PacketLoss) *Builder {
	c.packetLoss = p
	return c
}

// Apply returns the fully-configured Link with both directions set
// symmetrically from the builder's settings.
func (c *Builder) Apply() Link {
	ch := Channel{Bandwidth: c.bandwidth, Latency: c.latency, PacketLoss: c.packetLoss}
	return Link{id: units.NewLinkID(c.a, c.b), AtoB: ch, BtoA: ch}
}

// ApplyDirectional merges the builder's settings into existing (a Link
// already in the Network, or a fresh zero Link) by overwriting only the
// (from, to) channel, leaving the other direction untouched. This is the
// setter for asymmetric links, where the two directions carry different
// bandwidth, latency, or loss.
func (c *Builder) ApplyDirectional(existing Link, from, to units.NodeID) Link {
	ch := Channel{Bandwidth: c.bandwidth, Latency: c.latency, PacketLoss: c.packetLoss}
	out := existing
	out.id = units.NewLinkID(c.a, c.b)
	*out.Channel(from, to) = ch
	return out
}
