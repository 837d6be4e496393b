// Package metrics exposes Prometheus collectors for alignment throughput
// and failed evaluations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PairsAligned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wer_pairs_aligned_total",
		Help: "Reference/hypothesis pairs aligned",
	})

	AlignCells = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wer_alignment_cells_total",
		Help: "Dynamic programming cells filled across all alignments",
	})

	AlignDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wer_alignment_duration_seconds",
		Help:    "Per-pair alignment latency",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 1.0},
	})

	BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wer_batch_pairs",
		Help:    "Pairs per evaluated batch",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	NoResult = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wer_no_result_total",
		Help: "Evaluations that degraded to no result, by operation and error kind",
	}, []string{"operation", "kind"})

	LastRate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wer_last_rate",
		Help: "Most recent corpus-level rate by operation",
	}, []string{"operation"})
)

// WriteTextfile writes every registered metric to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
