package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tkrejci/dfscore/internal/rmi"
)

var _ rmi.CallMetrics = (*RPCMetrics)(nil)

var (
	rpcOnce     sync.Once
	rpcCalls    *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	rpcRejected *prometheus.CounterVec
)

func ensureRPCMetrics() {
	rpcOnce.Do(func() {
		if !IsEnabled() {
			return
		}

		rpcCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dfscore",
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "Total RPC calls dispatched, by interface, method, and outcome.",
		}, []string{"interface", "method", "outcome"})

		rpcDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dfscore",
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "RPC call handling latency, by interface and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"interface", "method"})

		rpcRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dfscore",
			Subsystem: "rpc",
			Name:      "rejected_total",
			Help:      "Connections rejected by a listener's rate limiter before dispatch, by interface.",
		}, []string{"interface"})

		GetRegistry().MustRegister(rpcCalls, rpcDuration, rpcRejected)
	})
}

// RPCMetrics implements rmi.CallMetrics for one interface's listener,
// recording into the shared Prometheus vectors above under that
// interface's label. Safe for concurrent use; every method is a no-op if
// metrics collection was never enabled.
type RPCMetrics struct {
	interfaceName string
}

// NewRPCMetrics builds an RPCMetrics for interfaceName, registering the
// shared RPC metric vectors the first time any interface asks for one.
func NewRPCMetrics(interfaceName string) *RPCMetrics {
	ensureRPCMetrics()
	return &RPCMetrics{interfaceName: interfaceName}
}

func (m *RPCMetrics) RecordCall(method string, duration time.Duration, err error) {
	if rpcCalls == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	rpcCalls.WithLabelValues(m.interfaceName, method, outcome).Inc()
	rpcDuration.WithLabelValues(m.interfaceName, method).Observe(duration.Seconds())
}

// RecordRejected is called by the listener before a method name is known,
// so method here is actually the rejecting listener's interface name.
func (m *RPCMetrics) RecordRejected(method string) {
	if rpcRejected == nil {
		return
	}
	rpcRejected.WithLabelValues(m.interfaceName).Inc()
}
