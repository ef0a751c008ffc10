// Package recorder is a pure, synchronous observer that captures packet
// deliveries as a reproducibility fixture: an ordered log of (id, from, to,
// size, delivered-round) frames. It is normally called from inside the sink
// passed to netsim.Network.AdvanceWith, so a scripted run
// can later be replayed or compared byte-for-byte against a second run with
// the same seed (a determinism property, turned into a comparable artifact).
//
// Frames are hand-encoded with the runtime helpers in
// github.com/tinylib/msgp/msgp rather than generated code: this package has
// exactly one record shape and no wire-compatibility story with another
// service, so running msgp's code generator over it would be overhead this
// repo doesn't need. The helpers give the same compact binary framing a
// generated Marshal/Unmarshal pair would, without the generated file.
package recorder

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"

	"github.com/netsim-project/netsim/units"
)

// Frame is one recorded delivery.
type Frame struct {
	ID             units.PacketID
	From, To       units.NodeID
	Size           uint64
	DeliveredRound uint64
}

// AppendFrame appends the msgp encoding of f onto b, returning the grown
// slice. Frames are concatenated with no length prefix between them; a log
// is read back by repeatedly calling ReadFrame until the slice is empty.
func AppendFrame(b []byte, f Frame) []byte {
	b = msgp.AppendUint64(b, uint64(f.ID))
	b = msgp.AppendUint64(b, uint64(f.From))
	b = msgp.AppendUint64(b, uint64(f.To))
	b = msgp.AppendUint64(b, f.Size)
	b = msgp.AppendUint64(b, f.DeliveredRound)
	return b
}

// ReadFrame decodes one Frame from the head of b, returning the decoded
// Frame and the remaining, unconsumed slice.
func ReadFrame(b []byte) (Frame, []byte, error) {
	var f Frame
	id, b, err := msgp.ReadUint64Bytes(b)
	if err != nil {
		return f, b, fmt.Errorf("recorder: read id: %w", err)
	}
	from, b, err := msgp.ReadUint64Bytes(b)
	if err != nil {
		return f, b, fmt.Errorf("recorder: read from: %w", err)
	}
	to, b, err := msgp.ReadUint64Bytes(b)
	if err != nil {
		return f, b, fmt.Errorf("recorder: read to: %w", err)
	}
	size, b, err := msgp.ReadUint64Bytes(b)
	if err != nil {
		return f, b, fmt.Errorf("recorder: read size: %w", err)
	}
	round, b, err := msgp.ReadUint64Bytes(b)
	if err != nil {
		return f, b, fmt.Errorf("recorder: read delivered round: %w", err)
	}
	f = Frame{
		ID:             units.PacketID(id),
		From:           units.NodeID(from),
		To:             units.NodeID(to),
		Size:           size,
		DeliveredRound: round,
	}
	return f, b, nil
}

// ReadLog decodes every Frame in b, in order.
func ReadLog(b []byte) ([]Frame, error) {
	var frames []Frame
	for len(b) > 0 {
		f, rest, err := ReadFrame(b)
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
		b = rest
	}
	return frames, nil
}

// Recorder appends a Frame for every delivery passed to Observe. It is not
// itself a sink and forwards nothing; a caller's sink calls Observe.
type Recorder struct {
	log   []byte
	round func() uint64
}

// New returns a Recorder whose DeliveredRound field is read from roundFn at
// the moment each delivery is observed; pass a Network's Round method.
func New(roundFn func() uint64) *Recorder {
	return &Recorder{round: roundFn}
}

// Observe records a delivery. Identity and size are passed directly rather
// than through netsim.Packet, so this package carries no import-time
// dependency on netsim; a caller's sink closure extracts them.
func (r *Recorder) Observe(id units.PacketID, from, to units.NodeID, size uint64) {
	r.log = AppendFrame(r.log, Frame{
		ID:             id,
		From:           from,
		To:             to,
		Size:           size,
		DeliveredRound: r.round(),
	})
}

// Log returns the accumulated binary frame log.
func (r *Recorder) Log() []byte { return r.log }

// Frames decodes the accumulated log back into Frame values.
func (r *Recorder) Frames() ([]Frame, error) { return ReadLog(r.log) }
