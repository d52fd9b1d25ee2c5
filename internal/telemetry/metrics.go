// Package telemetry provides Prometheus metrics for the bot.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	// Counters
	ConnectsTotal    prometheus.Counter
	DisconnectsTotal prometheus.Counter
	ReconnectsTotal  prometheus.Counter
	ChatLinesTotal   prometheus.Counter
	CommandsTotal    prometheus.Counter
	CommandsDropped  prometheus.Counter
	EventsTotal      *prometheus.CounterVec

	// Gauges
	CommandQueueDepth prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		ConnectsTotal = promauto.NewCounter(prometheus.CounterOpts{Name: "tonkon_connects_total", Help: "Number of completed IRC registrations"})
		DisconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{Name: "tonkon_disconnects_total", Help: "Number of transport disconnections"})
		ReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{Name: "tonkon_reconnect_attempts_total", Help: "Number of reconnect attempts made by the supervisor"})
		ChatLinesTotal = promauto.NewCounter(prometheus.CounterOpts{Name: "tonkon_chat_lines_total", Help: "Number of lines written to the channel log"})
		CommandsTotal = promauto.NewCounter(prometheus.CounterOpts{Name: "tonkon_commands_total", Help: "Number of messages handed to the command dispatcher"})
		CommandsDropped = promauto.NewCounter(prometheus.CounterOpts{Name: "tonkon_commands_dropped_total", Help: "Number of messages dropped because the command queue was full"})
		EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "tonkon_events_total", Help: "Number of routed channel events by kind"}, []string{"kind"})
		CommandQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{Name: "tonkon_command_queue_depth", Help: "Current number of queued command requests"})
	})
}

// IncConnect counts a completed registration.
func IncConnect() {
	if ConnectsTotal != nil {
		ConnectsTotal.Inc()
	}
}

// IncDisconnect counts a transport loss.
func IncDisconnect() {
	if DisconnectsTotal != nil {
		DisconnectsTotal.Inc()
	}
}

// IncReconnect counts a supervisor reconnect attempt.
func IncReconnect() {
	if ReconnectsTotal != nil {
		ReconnectsTotal.Inc()
	}
}

// IncChatLine counts one line appended to the channel log.
func IncChatLine() {
	if ChatLinesTotal != nil {
		ChatLinesTotal.Inc()
	}
}

// IncEvent counts a routed event of the given kind (message, private, action, nick).
func IncEvent(kind string) {
	if EventsTotal != nil {
		EventsTotal.WithLabelValues(kind).Inc()
	}
}

// IncCommand counts a message enqueued for the command dispatcher.
func IncCommand() {
	if CommandsTotal != nil {
		CommandsTotal.Inc()
	}
}

// IncCommandDropped counts a message dropped on queue overflow.
func IncCommandDropped() {
	if CommandsDropped != nil {
		CommandsDropped.Inc()
	}
}

// SetCommandQueueDepth records the current dispatcher queue depth.
func SetCommandQueueDepth(n int) {
	if CommandQueueDepth != nil {
		CommandQueueDepth.Set(float64(n))
	}
}

// Serve exposes /metrics on addr (blocking).
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
