package blockchain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusBlockCount       prometheus.Gauge
	prometheusOrphanBufferSize prometheus.Gauge
)

var prometheusMetricsInitialised = false

func initPrometheusMetrics() {
	if prometheusMetricsInitialised {
		return
	}

	prometheusBlockCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "blockchain",
			Name:      "block_count",
			Help:      "Number of blocks currently held in the block-tree store",
		},
	)

	prometheusOrphanBufferSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "blockchain",
			Name:      "orphan_buffer_size",
			Help:      "Number of blocks currently parked in the orphan buffer",
		},
	)

	prometheusMetricsInitialised = true
}
