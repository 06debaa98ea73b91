// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	CommandsTotal   *prometheus.CounterVec // labels: command, outcome
	RacesRecorded   prometheus.Counter
	SessionsStarted prometheus.Counter
	ChatMessages    *prometheus.CounterVec // labels: transport, result

	// Histograms (seconds)
	LockWait        prometheus.Observer
	HandlerDuration *prometheus.HistogramVec // labels: command

	// Gauges
	WidgetClients prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "sokuji_commands_total", Help: "Sokuji commands handled, by outcome"}, []string{"command", "outcome"})
		RacesRecorded = promauto.NewCounter(prometheus.CounterOpts{Name: "sokuji_races_recorded_total", Help: "Number of races pushed into sessions"})
		SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{Name: "sokuji_sessions_started_total", Help: "Number of sessions started"})
		ChatMessages = promauto.NewCounterVec(prometheus.CounterOpts{Name: "sokuji_chat_messages_total", Help: "Inbound chat messages seen by transports"}, []string{"transport", "result"})
		LockWait = promauto.NewHistogram(prometheus.HistogramOpts{Name: "sokuji_lock_wait_seconds", Help: "Time spent waiting for a channel lock", Buckets: prometheus.ExponentialBuckets(0.001, 4, 8)})
		HandlerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{Name: "sokuji_handler_duration_seconds", Help: "Handler duration seconds", Buckets: prometheus.DefBuckets}, []string{"command"})
		WidgetClients = promauto.NewGauge(prometheus.GaugeOpts{Name: "sokuji_widget_clients", Help: "Connected stream widget websocket clients"})
	})
}

// ObserveLockWait records how long a handler waited for its channel lock.
func ObserveLockWait(d time.Duration) {
	if LockWait != nil {
		LockWait.Observe(d.Seconds())
	}
}

// RecordCommand counts a handled command and its duration.
func RecordCommand(command, outcome string, d time.Duration) {
	if CommandsTotal != nil {
		CommandsTotal.WithLabelValues(command, outcome).Inc()
	}
	if HandlerDuration != nil {
		HandlerDuration.WithLabelValues(command).Observe(d.Seconds())
	}
}

// IncRacesRecorded counts a race pushed into a session.
func IncRacesRecorded() {
	if RacesRecorded != nil {
		RacesRecorded.Inc()
	}
}

// IncSessionsStarted counts a new session.
func IncSessionsStarted() {
	if SessionsStarted != nil {
		SessionsStarted.Inc()
	}
}

// AddWidgetClients moves the connected widget gauge by delta.
func AddWidgetClients(delta int) {
	if WidgetClients != nil {
		WidgetClients.Add(float64(delta))
	}
}

// RecordChatMessage counts an inbound chat message per transport.
func RecordChatMessage(transport, result string) {
	if ChatMessages != nil {
		ChatMessages.WithLabelValues(transport, result).Inc()
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// EnsureCorrelation attaches a fresh correlation id unless ctx already has one.
func EnsureCorrelation(ctx context.Context) context.Context {
	if GetCorrelation(ctx) != "" {
		return ctx
	}
	return WithCorrelation(ctx, uuid.NewString())
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
