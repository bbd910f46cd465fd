package p2p

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var prometheusMessagesReceived *prometheus.CounterVec

var prometheusMetricsInitialised = false

func initPrometheusMetrics() {
	if prometheusMetricsInitialised {
		return
	}

	prometheusMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "p2p",
			Name:      "messages_received",
			Help:      "Number of inbound messages handled by the worker pool, by kind",
		},
		[]string{"kind"},
	)

	prometheusMetricsInitialised = true
}
