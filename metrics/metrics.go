// File: metrics/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Registry wraps the scrape-based Prometheus counters and gauges this
// server exposes, additive to (not a replacement for) the structured
// logging on the same paths.

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry holds the counters and gauges a running reactor-chat server
// updates as connections come and go and messages flow.
type Registry struct {
	ConnectionsActive      prometheus.Gauge
	ConnectionsAccepted    prometheus.Counter
	MessagesBroadcast      prometheus.Counter
	MessagesDropped        prometheus.Counter
	BytesReceived          prometheus.Counter
}

// New registers a fresh set of metrics on reg (pass
// prometheus.NewRegistry() for tests, or prometheus.DefaultRegisterer
// in production).
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "reactor_chat",
			Name:      "connections_active",
			Help:      "Currently registered connections, excluding the listening socket.",
		}),
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reactor_chat",
			Name:      "connections_accepted_total",
			Help:      "Total connections accepted since startup.",
		}),
		MessagesBroadcast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reactor_chat",
			Name:      "messages_broadcast_total",
			Help:      "Total per-recipient writes performed by chat-room fan-out.",
		}),
		MessagesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reactor_chat",
			Name:      "messages_dropped_total",
			Help:      "Frames dropped due to parse errors or unknown type/msg_type.",
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reactor_chat",
			Name:      "bytes_received_total",
			Help:      "Total bytes read off client sockets.",
		}),
	}
	reg.MustRegister(
		r.ConnectionsActive,
		r.ConnectionsAccepted,
		r.MessagesBroadcast,
		r.MessagesDropped,
		r.BytesReceived,
	)
	return r
}
