package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// emailEventsTotal counts handled notification events by kind.
	emailEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayer_email_events_total",
			Help: "Total number of handled email events.",
		},
		[]string{"kind"},
	)

	// pipelineFailuresTotal counts short-circuited pipeline runs by the
	// stage that failed.
	pipelineFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayer_pipeline_failures_total",
			Help: "Total number of reply pipelines halted by a stage failure.",
		},
		[]string{"stage"},
	)

	// repliesRejectedTotal counts inbound replies rejected as duplicates
	// or replays. These are silent to the sender.
	repliesRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relayer_replies_rejected_total",
			Help: "Total number of inbound replies rejected by the reply ledger.",
		},
	)
)

func init() {
	prometheus.MustRegister(emailEventsTotal, pipelineFailuresTotal, repliesRejectedTotal)
}
