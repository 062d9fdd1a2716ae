package pvs

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	errTypeLabel = "error_type"
)

var (
	pvsQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pvs_queries",
		Help: "The number of static visibility queries.",
	})

	pvsQueryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pvs_query_errors",
		Help: "The errors that occurred while querying the static visibility tree.",
	}, []string{
		errTypeLabel,
	})

	pvsQueryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pvs_query_latency",
		Help:    "The time to evaluate a static visibility query.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	})

	pvsActiveTargets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pvs_active_targets",
		Help: "The number of targets activated by the last query.",
	})

	pvsVisibleNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pvs_visible_nodes",
		Help: "The number of tree nodes marked visible by the last query.",
	})
)

func instrumentQuery(start time.Time, set *VisibleSet) {
	pvsQueries.Inc()
	pvsQueryLatency.Observe(time.Since(start).Seconds())
	pvsActiveTargets.Set(float64(set.TargetCount()))
	pvsVisibleNodes.Set(float64(set.NodeCount()))
}

func instrumentQueryError(err error) {
	pvsQueryErrors.With(prometheus.Labels{
		errTypeLabel: errors.Type(err),
	}).Inc()
}
