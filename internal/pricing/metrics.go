package pricing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_quotes_total",
		Help: "Quotes calculated, by pricing strategy.",
	}, []string{"strategy"})

	quoteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_quote_errors_total",
		Help: "Quote calculations that failed, by reason.",
	}, []string{"reason"})

	quoteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricing_quote_duration_seconds",
		Help:    "Time spent calculating one quote, store lookups included.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})
)
