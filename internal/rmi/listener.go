package rmi

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tkrejci/dfscore/internal/logger"
	"github.com/tkrejci/dfscore/internal/ratelimiter"
)

// Handler implements one remote method. It receives the decoded argument
// tuple and returns either a result Value or an error from the rmi error
// taxonomy; handlers never panic on application errors.
type Handler func(args []Value) (Value, error)

// MethodSpec declares one method of an interface: its name, the parameter
// types a matching call must present, and the handler bound to it.
type MethodSpec struct {
	Name       string
	ParamTypes []string
	Handle     Handler
}

// MethodTable is the compile-time dispatch table for one interface,
// replacing runtime reflection on the wire. It is built once per server
// object and validated for duplicate method names at construction time.
type MethodTable struct {
	interfaceName string
	methods       map[string]MethodSpec
}

// NewMethodTable validates specs and builds a MethodTable for
// interfaceName. A duplicate method name is a programmer error caught here
// rather than at call time.
func NewMethodTable(interfaceName string, specs []MethodSpec) (*MethodTable, error) {
	methods := make(map[string]MethodSpec, len(specs))
	for _, spec := range specs {
		if _, exists := methods[spec.Name]; exists {
			return nil, fmt.Errorf("rmi: interface %q declares method %q twice: %w", interfaceName, spec.Name, ErrProgrammer)
		}
		methods[spec.Name] = spec
	}
	return &MethodTable{interfaceName: interfaceName, methods: methods}, nil
}

// CallMetrics observes completed RPC calls. Implementations must be safe
// for concurrent use; nil is a valid no-op.
type CallMetrics interface {
	RecordCall(method string, duration time.Duration, err error)
	RecordRejected(method string)
}

// Listener is the callee side of the transport: it accepts TCP connections
// on a bound address and dispatches each to the MethodTable it serves.
//
// States: new -> listening -> stopped (terminal). Restart from stopped is
// not supported.
type Listener struct {
	table   *MethodTable
	limiter *ratelimiter.RateLimiter
	metrics CallMetrics

	onListenError func(error) bool
	onStopped     func(error)

	mu       sync.Mutex
	listener net.Listener
	stopped  bool
	wg       sync.WaitGroup
}

// ListenerOption configures optional Listener behavior.
type ListenerOption func(*Listener)

// WithRateLimiter admits connections through rl before they are serviced.
// A connection rejected by the limiter is closed immediately without being
// read.
func WithRateLimiter(rl *ratelimiter.RateLimiter) ListenerOption {
	return func(l *Listener) { l.limiter = rl }
}

// WithMetrics records call outcomes and rejections through m.
func WithMetrics(m CallMetrics) ListenerOption {
	return func(l *Listener) { l.metrics = m }
}

// WithListenErrorHook installs the callback invoked on a top-level error in
// the accept loop. Its return value decides whether to keep accepting
// (true) or shut down (false).
func WithListenErrorHook(f func(error) bool) ListenerOption {
	return func(l *Listener) { l.onListenError = f }
}

// WithStoppedHook installs the callback invoked exactly once when the
// accept loop exits, with the cause (nil for a clean Stop).
func WithStoppedHook(f func(error)) ListenerOption {
	return func(l *Listener) { l.onStopped = f }
}

// NewListener builds a Listener bound to table, not yet started.
func NewListener(table *MethodTable, opts ...ListenerOption) *Listener {
	l := &Listener{table: table}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start binds addr (system-assigned port if addr's port is "0" or empty
// host:0) and spawns the accept loop. It returns once the socket is bound.
func (l *Listener) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rmi: listen on %s for %s: %w", addr, l.table.interfaceName, err)
	}

	l.mu.Lock()
	l.listener = ln
	l.mu.Unlock()

	go l.acceptLoop()

	return nil
}

// Addr returns the bound address, valid after Start returns.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.listener.Addr()
}

// Stop closes the listening socket, which breaks the accept loop. In-flight
// handlers are allowed to run to completion; Stop does not wait for them.
func (l *Listener) Stop() error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return nil
	}
	l.stopped = true
	ln := l.listener
	l.mu.Unlock()

	return ln.Close()
}

func (l *Listener) acceptLoop() {
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			l.mu.Lock()
			stopped := l.stopped
			l.mu.Unlock()

			if stopped {
				if l.onStopped != nil {
					l.onStopped(nil)
				}
				return
			}

			if l.onListenError != nil && l.onListenError(err) {
				continue
			}

			if l.onStopped != nil {
				l.onStopped(err)
			}
			return
		}

		if l.limiter != nil && !l.limiter.Allow() {
			conn.Close()
			if l.metrics != nil {
				l.metrics.RecordRejected(l.table.interfaceName)
			}
			continue
		}

		l.wg.Add(1)
		go l.serve(conn)
	}
}

func (l *Listener) serve(conn net.Conn) {
	defer l.wg.Done()
	defer conn.Close()

	method := "<unreadable>"
	defer func() {
		if r := recover(); r != nil {
			logger.Error("rmi: handler for %s panicked: %v", method, r)
		}
	}()

	start := time.Now()

	readMethod, args, paramTypes, callID, err := readCall(conn)
	if err != nil {
		logger.Warn("rmi: failed to read call on %s: %v", l.table.interfaceName, err)
		return
	}
	method = readMethod
	logger.Debug("rmi: serving %s[%s] id=%s", l.table.interfaceName, method, callID)

	reply, callErr := l.dispatch(method, paramTypes, args)
	if callErr != nil {
		reply = ErrorValue(NewRemoteError(callErr))
	}

	if err := writeReply(conn, reply); err != nil {
		logger.Warn("rmi: failed to write reply for %s (id=%s): %v", method, callID, err)
	}

	if l.metrics != nil {
		l.metrics.RecordCall(method, time.Since(start), callErr)
	}
}

func (l *Listener) dispatch(method string, paramTypes []string, args []Value) (Value, error) {
	spec, ok := l.table.methods[method]
	if !ok || !paramTypesMatch(spec.ParamTypes, paramTypes) {
		return Value{}, fmt.Errorf("rmi: no method %q with params %v on interface %q: %w", method, paramTypes, l.table.interfaceName, ErrProgrammer)
	}
	return spec.Handle(args)
}

func paramTypesMatch(declared, called []string) bool {
	if len(declared) != len(called) {
		return false
	}
	for i, t := range declared {
		if t != called[i] {
			return false
		}
	}
	return true
}
