// Package metrics exposes Prometheus counters for the draft client.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Drop reasons for inbound messages.
const (
	DropMalformed = "malformed"
	DropUnknown   = "unknown_type"
	DropStale     = "stale_lobby"
)

// Manager owns the collectors and the registry they are registered on.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	snapshotsApplied prometheus.Counter
	messagesDropped  *prometheus.CounterVec
	intentsSent      *prometheus.CounterVec
	intentFailures   *prometheus.CounterVec
	timeoutsEmitted  prometheus.Counter
	transportCloses  prometheus.Counter
	transportOpen    prometheus.Gauge
}

type Option func(*Manager)

func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithRegistry registers on r instead of a fresh private registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{namespace: "draft_client"}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.snapshotsApplied = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "snapshots_applied_total",
		Help: "Draft snapshots accepted as ground truth.",
	})
	m.messagesDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "messages_dropped_total",
		Help: "Inbound messages dropped, by reason.",
	}, []string{"reason"})
	m.intentsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "intents_sent_total",
		Help: "Outbound intents handed to the transport, by action.",
	}, []string{"action"})
	m.intentFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "intent_failures_total",
		Help: "Outbound intents that could not be sent, by action.",
	}, []string{"action"})
	m.timeoutsEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "turn_timeouts_emitted_total",
		Help: "turnTimeout intents emitted by the local countdown.",
	})
	m.transportCloses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "transport_closes_total",
		Help: "Transport channels that reached the closed state.",
	})
	m.transportOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "transport_open",
		Help: "1 while a transport channel is open.",
	})

	m.registry.MustRegister(
		m.snapshotsApplied, m.messagesDropped, m.intentsSent, m.intentFailures,
		m.timeoutsEmitted, m.transportCloses, m.transportOpen,
	)
	return m
}

func (m *Manager) Registry() *prometheus.Registry { return m.registry }

func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The recorders below accept a nil receiver so components can run without
// metrics in tests.

func (m *Manager) SnapshotApplied() {
	if m != nil {
		m.snapshotsApplied.Inc()
	}
}

func (m *Manager) MessageDropped(reason string) {
	if m != nil {
		m.messagesDropped.WithLabelValues(reason).Inc()
	}
}

func (m *Manager) IntentSent(action string) {
	if m != nil {
		m.intentsSent.WithLabelValues(action).Inc()
	}
}

func (m *Manager) IntentFailed(action string) {
	if m != nil {
		m.intentFailures.WithLabelValues(action).Inc()
	}
}

func (m *Manager) TimeoutEmitted() {
	if m != nil {
		m.timeoutsEmitted.Inc()
	}
}

func (m *Manager) TransportOpened() {
	if m != nil {
		m.transportOpen.Set(1)
	}
}

func (m *Manager) TransportClosed() {
	if m != nil {
		m.transportOpen.Set(0)
		m.transportCloses.Inc()
	}
}
