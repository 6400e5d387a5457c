// Package metrics exposes Prometheus counters for the journal service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what services report to. Handlers and services depend on the
// interface so tests can pass Nop.
type Recorder interface {
	RecordMutation(op, outcome string)
	RecordSecondaryFailure(op string)
	RecordAIFallback(op string)
	RecordFeedComposition(cached bool)
	RecordNotification(outcome string)
}

// Collector is the Prometheus-backed Recorder
type Collector struct {
	mutations      *prometheus.CounterVec
	secondaryFails *prometheus.CounterVec
	aiFallbacks    *prometheus.CounterVec
	compositions   *prometheus.CounterVec
	notifications  *prometheus.CounterVec
}

// NewCollector creates the counters and registers them on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "starlight_social_mutations_total",
			Help: "Social mutations by operation and outcome",
		}, []string{"op", "outcome"}),
		secondaryFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "starlight_secondary_write_failures_total",
			Help: "Best-effort secondary writes that failed and were only logged",
		}, []string{"op"}),
		aiFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "starlight_ai_fallbacks_total",
			Help: "AI calls that degraded to the original input",
		}, []string{"op"}),
		compositions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "starlight_feed_compositions_total",
			Help: "Feed compositions, split by memo hit",
		}, []string{"cached"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "starlight_push_notifications_total",
			Help: "Push notifications by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.mutations,
		c.secondaryFails,
		c.aiFallbacks,
		c.compositions,
		c.notifications,
	)
	return c
}

func (c *Collector) RecordMutation(op, outcome string) {
	c.mutations.WithLabelValues(op, outcome).Inc()
}

func (c *Collector) RecordSecondaryFailure(op string) {
	c.secondaryFails.WithLabelValues(op).Inc()
}

func (c *Collector) RecordAIFallback(op string) {
	c.aiFallbacks.WithLabelValues(op).Inc()
}

func (c *Collector) RecordFeedComposition(cached bool) {
	c.compositions.WithLabelValues(strconv.FormatBool(cached)).Inc()
}

func (c *Collector) RecordNotification(outcome string) {
	c.notifications.WithLabelValues(outcome).Inc()
}

// Nop discards everything
type Nop struct{}

func (Nop) RecordMutation(string, string) {}
func (Nop) RecordSecondaryFailure(string) {}
func (Nop) RecordAIFallback(string)       {}
func (Nop) RecordFeedComposition(bool)    {}
func (Nop) RecordNotification(string)     {}
