package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	PromRegister = prometheus.NewRegistry()

	CounterEventCorrelated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "multisig_event_correlated",
	}, []string{"chain_id", "kind"})
	CounterEventUnmatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "multisig_event_unmatched",
	}, []string{"chain_id"})
	CounterTerminalConflict = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "multisig_terminal_conflict",
	}, []string{"chain_id"})
	CounterSubscriptionRebuild = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "multisig_subscription_rebuild",
	}, []string{"chain_id"})
)

func init() {
	PromRegister.MustRegister(collectors.NewGoCollector())
	PromRegister.MustRegister(CounterEventCorrelated)
	PromRegister.MustRegister(CounterEventUnmatched)
	PromRegister.MustRegister(CounterTerminalConflict)
	PromRegister.MustRegister(CounterSubscriptionRebuild)
}
