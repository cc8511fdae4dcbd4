package extraction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var extractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "finanzas",
	Subsystem: "extraction",
	Name:      "llm_duration_seconds",
	Help:      "Duration of LLM extraction calls.",
	Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 45},
})
