// Package metrics holds the Prometheus collectors of the bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SearchesTotal counts answered searches by kind (web/image) and origin (live/fixture/fallback).
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lensbot_searches_total",
			Help: "Searches answered",
		},
		[]string{"kind", "origin"},
	)

	// UpstreamFailuresTotal counts upstream calls that ended in the fallback.
	UpstreamFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lensbot_upstream_failures_total",
			Help: "Upstream search failures",
		},
		[]string{"engine"},
	)

	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lensbot_upstream_latency_seconds",
			Help:    "Upstream search latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
		[]string{"engine"},
	)

	// VoiceSessionsTotal counts voice capture attempts by outcome.
	VoiceSessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lensbot_voice_sessions_total",
			Help: "Voice capture sessions",
		},
		[]string{"outcome"},
	)

	// StaleResponsesTotal counts responses dropped because a newer search was issued.
	StaleResponsesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lensbot_stale_responses_total",
			Help: "Superseded search responses",
		},
	)
)

func init() {
	prometheus.MustRegister(
		SearchesTotal,
		UpstreamFailuresTotal,
		UpstreamLatency,
		VoiceSessionsTotal,
		StaleResponsesTotal,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
