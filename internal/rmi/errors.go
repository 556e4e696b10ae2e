package rmi

import "errors"

// Kind classifies a remote error into the taxonomy carried across the wire.
// Kinds, not concrete error types, are what survive serialization.
type Kind uint32

const (
	KindUnspecified Kind = iota
	KindTransport
	KindNotFound
	KindBounds
	KindIO
	KindProgrammer
)

var (
	// ErrTransport means the RPC call could not be completed end-to-end:
	// connection refused, serialization failure, or a truncated reply.
	ErrTransport = errors.New("rmi: transport error")

	// ErrNotFound means a named path does not exist, or exists with the
	// wrong kind (file where a directory was expected, or vice versa).
	ErrNotFound = errors.New("rmi: not found")

	// ErrBounds means an offset/length constraint was violated.
	ErrBounds = errors.New("rmi: bounds error")

	// ErrIO means a local filesystem error occurred below the storage node.
	ErrIO = errors.New("rmi: i/o error")

	// ErrProgrammer means the caller violated an API contract: a nil
	// argument, a duplicate registration, an illegal use of the root path,
	// or an unresolvable method on the wire.
	ErrProgrammer = errors.New("rmi: programmer error")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindBounds:
		return ErrBounds
	case KindIO:
		return ErrIO
	case KindProgrammer:
		return ErrProgrammer
	default:
		return ErrTransport
	}
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrBounds):
		return KindBounds
	case errors.Is(err, ErrIO):
		return KindIO
	case errors.Is(err, ErrProgrammer):
		return KindProgrammer
	default:
		return KindTransport
	}
}

// RemoteError is the wire-carried representation of an error raised by a
// method handler. It travels as an ordinary Value (KindError) rather than
// as a distinct envelope, so it round-trips through the same codec as
// every other result.
//
// RemoteError unwraps to the taxonomy sentinel matching its Kind, so
// callers on the proxy side can use errors.Is(err, rmi.ErrNotFound)
// without caring which concrete type raised it on the server.
type RemoteError struct {
	Kind    Kind
	Message string
}

// NewRemoteError classifies err by the sentinel it wraps and captures its
// message for display on the other side of the wire.
func NewRemoteError(err error) *RemoteError {
	return &RemoteError{Kind: classify(err), Message: err.Error()}
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return sentinelFor(e.Kind)
}
