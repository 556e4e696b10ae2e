package rmi

import (
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/tkrejci/dfscore/internal/logger"
)

// dialTimeout bounds how long Call waits to establish the TCP connection.
// There is no client-side timeout once connected; this only guards against
// a peer that never accepts.
const dialTimeout = 10 * time.Second

// Proxy is the caller side of one bound interface: a remote address plus
// the interface name it is expected to serve. Proxies are comparable by
// value, so they can be used as map keys (the naming node keys its
// replica sets this way) and round-trip through the wire as an ordinary
// Value.
type Proxy struct {
	interfaceName string
	address       string
}

// NewProxy builds a proxy bound to interfaceName at address ("host:port").
func NewProxy(interfaceName, address string) Proxy {
	return Proxy{interfaceName: interfaceName, address: address}
}

// InterfaceName returns the name of the interface this proxy is bound to.
func (p Proxy) InterfaceName() string {
	return p.interfaceName
}

// Address returns the remote TCP address this proxy dials.
func (p Proxy) Address() string {
	return p.address
}

// IsZero reports whether p is the zero-value Proxy (no address bound).
func (p Proxy) IsZero() bool {
	return p.address == "" && p.interfaceName == ""
}

// Equal reports whether p and other carry the same interface type and the
// same address.
func (p Proxy) Equal(other Proxy) bool {
	return p.interfaceName == other.interfaceName && p.address == other.address
}

// String returns a debug representation of p.
func (p Proxy) String() string {
	return fmt.Sprintf("%s@%s", p.interfaceName, p.address)
}

// Call opens a fresh TCP connection to the proxy's address, writes the
// method name, argument tuple, and parameter-type descriptors, reads back
// one value, and closes the connection.
//
// If the remote handler raised an error, Call returns it unwrapped (a
// *RemoteError, whose Unwrap yields the matching taxonomy sentinel) rather than a
// transport error — only a failure of the call itself is reported as
// ErrTransport.
func (p Proxy) Call(method string, paramTypes []string, args []Value) (Value, error) {
	callID := uuid.New().String()
	logger.Debug("rmi: call %s[%s] id=%s -> %s", p.interfaceName, method, callID, p.address)

	conn, err := net.DialTimeout("tcp", p.address, dialTimeout)
	if err != nil {
		return Value{}, fmt.Errorf("rmi: dial %s for %s (id=%s): %w", p.address, method, callID, ErrTransport)
	}
	defer conn.Close()

	if err := writeCall(conn, method, args, paramTypes, callID); err != nil {
		return Value{}, fmt.Errorf("rmi: write call %s to %s (id=%s): %w", method, p.address, callID, ErrTransport)
	}

	reply, err := readReply(conn)
	if err != nil {
		return Value{}, fmt.Errorf("rmi: read reply for %s from %s (id=%s): %w", method, p.address, callID, ErrTransport)
	}

	if reply.Kind == KindError {
		re, err := reply.AsError()
		if err != nil {
			return Value{}, fmt.Errorf("rmi: decode remote error for %s: %w", method, ErrTransport)
		}
		return Value{}, re
	}

	return reply, nil
}
