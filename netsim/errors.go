package netsim

import "fmt"

// SendErrorKind enumerates why Network.Send rejected a packet.
type SendErrorKind int

const (
	// UnknownRoute covers an unrecognized node id on either end, or no
	// Link configured between a known pair.
	UnknownRoute SendErrorKind = iota
	// SenderBufferFull means admitting the packet would push the
	// sender's upload buffer past its configured ceiling.
	SenderBufferFull
	// SelfSend means packet.From == packet.To.
	SelfSend
)

func (k SendErrorKind) String() string {
	switch k {
	case UnknownRoute:
		return "UnknownRoute"
	case SenderBufferFull:
		return "SenderBufferFull"
	case SelfSend:
		return "SelfSend"
	default:
		return "SendError(unknown)"
	}
}

// SendError reports why Network.Send rejected a packet. No state changes
// are made to the Network when Send returns an error.
type SendError struct {
	Kind SendErrorKind
}

func (e *SendError) Error() string { return e.Kind.String() }

// IsUnknownRoute reports whether err is a SendError{Kind: UnknownRoute}.
func IsUnknownRoute(err error) bool { return isSendErrorKind(err, UnknownRoute) }

// IsSenderBufferFull reports whether err is a SendError{Kind: SenderBufferFull}.
func IsSenderBufferFull(err error) bool { return isSendErrorKind(err, SenderBufferFull) }

// IsSelfSend reports whether err is a SendError{Kind: SelfSend}.
func IsSelfSend(err error) bool { return isSendErrorKind(err, SelfSend) }

func isSendErrorKind(err error, kind SendErrorKind) bool {
	se, ok := err.(*SendError)
	return ok && se.Kind == kind
}

// BuildErrorKind enumerates why Packet.Builder.Build rejected a packet.
type BuildErrorKind int

const (
	MissingFrom BuildErrorKind = iota
	MissingTo
	MissingData
)

func (k BuildErrorKind) String() string {
	switch k {
	case MissingFrom:
		return "MissingFrom"
	case MissingTo:
		return "MissingTo"
	case MissingData:
		return "MissingData"
	default:
		return "BuildError(unknown)"
	}
}

// BuildError reports why Packet.Builder.Build failed.
type BuildError struct {
	Kind BuildErrorKind
}

func (e *BuildError) Error() string { return fmt.Sprintf("packet builder: %s", e.Kind) }

// ErrNonPositiveStep is returned by AdvanceWith when step <= 0.
type ErrNonPositiveStep struct{ Step string }

func (e *ErrNonPositiveStep) Error() string {
	return fmt.Sprintf("advance_with: step must be positive, got %s", e.Step)
}
