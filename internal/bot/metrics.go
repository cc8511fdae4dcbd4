package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finanzas",
		Subsystem: "bot",
		Name:      "updates_total",
		Help:      "Telegram updates handled, by kind.",
	}, []string{"kind"})

	handlerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finanzas",
		Subsystem: "bot",
		Name:      "handler_errors_total",
		Help:      "Handler failures, by handler.",
	}, []string{"handler"})

	draftsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finanzas",
		Subsystem: "bot",
		Name:      "drafts_total",
		Help:      "Drafts closed, by outcome.",
	}, []string{"outcome"})
)
