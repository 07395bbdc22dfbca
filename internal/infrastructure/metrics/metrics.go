// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "microlend"

// LoanTransitions counts committed loan status changes by target status.
var LoanTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "loan_transitions_total",
	Help:      "Committed loan status transitions.",
}, []string{"to"})

var TrustScoreChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "trust_score_changes_total",
	Help:      "Trust score history rows written, by reason.",
}, []string{"reason"})

var OffersAccepted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "offers_accepted_total",
	Help:      "Loan offers accepted into pending loans.",
})

var NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "notifications_failed_total",
	Help:      "Notifications that could not be stored or emailed.",
})

// SchedulerRuns counts job runs by result (ok, error, skipped).
var SchedulerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "scheduler",
	Name:      "runs_total",
	Help:      "Scheduled job runs by job and result.",
}, []string{"job", "result"})

// SchedulerLoans counts rows touched by a job, by outcome (processed, failed).
var SchedulerLoans = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "scheduler",
	Name:      "loans_total",
	Help:      "Loans and requests handled by scheduled jobs.",
}, []string{"job", "outcome"})
