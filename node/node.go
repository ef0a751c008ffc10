// Package node models a Network endpoint: its upload/download bandwidth
// ceilings and the buffers that back pressure both directions. A Node
// never references a Link or a Packet directly; all navigation goes
// through the owning Network by id, so Node is a plain value, safe to
// copy and compare.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package node

import (
	"math"

	"github.com/netsim-project/netsim/units"
)

// Unlimited is the default ceiling/capacity: "effectively unlimited" is
// represented as an explicit large value, not a sentinel, so the tick
// engine's arithmetic needs no special case for it.
const Unlimited = math.MaxUint64

// Node is an endpoint's bandwidth ceilings and buffer occupancy.
type Node struct {
	UploadBandwidth   units.Bandwidth
	DownloadBandwidth units.Bandwidth

	UploadBufferMax  uint64
	UploadBufferUsed uint64

	DownloadBufferMax  uint64
	DownloadBufferUsed uint64
}

// UploadHeadroom reports how many more bytes may be admitted to the upload
// buffer without exceeding UploadBufferMax.
func (n *Node) UploadHeadroom() uint64 {
	return headroom(n.UploadBufferMax, n.UploadBufferUsed)
}

// DownloadHeadroom is the download-side counterpart of UploadHeadroom.
func (n *Node) DownloadHeadroom() uint64 {
	return headroom(n.DownloadBufferMax, n.DownloadBufferUsed)
}

func headroom(max, used uint64) uint64 {
	if used >= max {
		return 0
	}
	return max - used
}

// Builder constructs a Node with defaulted-to-unlimited ceilings; pass only
// the limits you want to constrain.
type Builder struct {
	n Node
}

// NewBuilder returns a Builder whose Node defaults to unlimited bandwidth
// and buffers in every direction.
func NewBuilder() *Builder {
	return &Builder{n: Node{
		UploadBandwidth:   units.Bandwidth(Unlimited),
		DownloadBandwidth: units.Bandwidth(Unlimited),
		UploadBufferMax:   Unlimited,
		DownloadBufferMax: Unlimited,
	}}
}

func (b *Builder) UploadBandwidth(bw units.Bandwidth) *Builder {
	b.n.UploadBandwidth = bw
	return b
}

func (b *Builder) DownloadBandwidth(bw units.Bandwidth) *Builder {
	b.n.DownloadBandwidth = bw
	return b
}

func (b *Builder) UploadBufferMax(max uint64) *Builder {
	b.n.UploadBufferMax = max
	return b
}

func (b *Builder) DownloadBufferMax(max uint64) *Builder {
	b.n.DownloadBufferMax = max
	return b
}

// Build returns the constructed Node. Construction cannot fail: every
// field has a sane default and setters take already-validated unit types.
func (b *Builder) Build() Node {
	return b.n
}
