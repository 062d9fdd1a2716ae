package culling

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	strategyLabel   = "strategy"
	errTypeLabel    = "error_type"
	targetLabel     = "target"
	transitionLabel = "transition"
)

var (
	dcSources = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dc_sources",
		Help: "The number of dynamic culling sources registered with a controller.",
	}, []string{
		strategyLabel,
	})

	dcIncompatibleSources = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dc_incompatible_sources",
		Help: "The sources excluded from dynamic culling.",
	}, []string{
		strategyLabel,
		errTypeLabel,
	})

	dcProxyColliders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dc_proxy_colliders",
		Help: "The number of live proxy colliders.",
	})

	cullingTargetTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "culling_target_transitions",
		Help: "The number of culling target show and hide transitions.",
	}, []string{
		targetLabel,
		transitionLabel,
	})
)

func instrumentSourceRegistered(strategy string, delta float64) {
	dcSources.With(prometheus.Labels{
		strategyLabel: strategy,
	}).Add(delta)
}

func instrumentIncompatibleSource(strategy string, err error) {
	dcIncompatibleSources.With(prometheus.Labels{
		strategyLabel: strategy,
		errTypeLabel:  errors.Type(err),
	}).Inc()
}

func instrumentProxies(delta int) {
	dcProxyColliders.Add(float64(delta))
}

func instrumentTransition(target string, visible bool) {
	transition := "hide"
	if visible {
		transition = "show"
	}
	cullingTargetTransitions.With(prometheus.Labels{
		targetLabel:     target,
		transitionLabel: transition,
	}).Inc()
}
