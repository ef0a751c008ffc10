// Package payload defines the capability every packet body must provide:
// a stable byte size. The engine never looks at payload bytes; only the
// reported size governs bandwidth and buffer accounting, and that size is
// cached once when the packet is built (see netsim.Packet.TotalBytes).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package payload

// Data is the capability a packet payload must provide. Implementations
// must report a stable size for the lifetime of a packet; the engine reads
// it exactly once, at Packet.Builder.Build, and never again.
type Data interface {
	BytesSize() uint64
}

// Bytes is the byte-buffer realization of Data: a caller-owned slice plus
// an optional release hook. It models the "concrete byte-buffer
// specialization used at the foreign-callable boundary with caller-supplied
// allocation/release hooks" design note. The Release hook is this
// repository's stand-in for that boundary's ownership contract, without
// constructing the surrounding C ABI itself (out of scope; see DESIGN.md).
type Bytes struct {
	Body []byte
	// Release, if non-nil, is invoked by Free, which the engine calls only
	// when it drops a packet (loss or corruption) rather than delivering
	// it. On delivery, ownership of the payload moves to the sink and the
	// engine never calls Free itself. It is the caller's hook for returning
	// Body to a pool or freeing foreign-owned memory.
	Release func([]byte)
}

// NewBytes wraps body with no release hook; body is assumed to be owned by
// the Go garbage collector like any other slice.
func NewBytes(body []byte) Bytes {
	return Bytes{Body: body}
}

// NewOwnedBytes wraps body with a release hook invoked by Free. The engine
// calls Free once for a packet it drops; a delivered payload is handed to
// the sink and its hook is not called by the engine.
func NewOwnedBytes(body []byte, release func([]byte)) Bytes {
	return Bytes{Body: body, Release: release}
}

func (b Bytes) BytesSize() uint64 { return uint64(len(b.Body)) }

// Free invokes the release hook, if any. Safe to call on a zero-value
// Bytes. The engine calls this at most once per packet, only on the
// dropped (loss or corruption) path; see netsim.Packet lifecycle notes.
func (b Bytes) Free() {
	if b.Release != nil {
		b.Release(b.Body)
	}
}

// Sized is a minimal Data implementation for callers that only care about
// accounting, not payload identity (property tests, synthetic load).
type Sized uint64

func (s Sized) BytesSize() uint64 { return uint64(s) }
