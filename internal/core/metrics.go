// AngelaMos | 2026
// metrics.go

package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	entriesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodflow_entries_created_total",
			Help: "Journal entries created, by sentiment label",
		},
		[]string{"label"},
	)

	collaboratorFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodflow_collaborator_fallbacks_total",
			Help: "Collaborator calls that degraded to a fallback value",
		},
		[]string{"collaborator"},
	)

	webhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodflow_payment_webhooks_total",
			Help: "Payment webhook deliveries, by outcome",
		},
		[]string{"outcome"},
	)

	insightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodflow_insight_requests_total",
			Help: "Premium insight requests, by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordEntryCreated(label string) {
	entriesCreatedTotal.WithLabelValues(label).Inc()
}

func RecordCollaboratorFallback(collaborator string) {
	collaboratorFallbacksTotal.WithLabelValues(collaborator).Inc()
}

func RecordWebhook(outcome string) {
	webhookEventsTotal.WithLabelValues(outcome).Inc()
}

func RecordInsight(outcome string) {
	insightRequestsTotal.WithLabelValues(outcome).Inc()
}
