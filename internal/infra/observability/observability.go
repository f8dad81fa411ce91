// Package observability defines the Prometheus metrics for the ledger
// service and the reminder sweep. Metrics are registered via promauto and
// exposed on the operator API's /metrics endpoint.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// TransactionsRecorded counts recorded transactions.
var TransactionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "taxbox",
	Subsystem: "ledger",
	Name:      "transactions_total",
	Help:      "Total transactions recorded.",
})

// TransactionsRejected counts transactions rejected before mutating state.
var TransactionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "taxbox",
	Subsystem: "ledger",
	Name:      "transactions_rejected_total",
	Help:      "Total transactions rejected by validation.",
}, []string{"reason"})

// TaxAccrued counts tax units added to seller liabilities.
var TaxAccrued = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "taxbox",
	Subsystem: "ledger",
	Name:      "tax_accrued_total",
	Help:      "Total tax units accrued across all sellers.",
})

// Settlements counts full tax settlements.
var Settlements = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "taxbox",
	Subsystem: "ledger",
	Name:      "settlements_total",
	Help:      "Total tax settlements (liability zeroed against payment proof).",
})

// OutstandingSellers tracks sellers currently owing tax.
var OutstandingSellers = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "taxbox",
	Subsystem: "ledger",
	Name:      "outstanding_sellers",
	Help:      "Number of sellers with a non-zero tax liability.",
})

// ─── Role Sync Metrics ──────────────────────────────────────────────────────

// RoleSyncFailures counts role grants/revokes the platform rejected.
// These are swallowed per-item; the ledger stays authoritative.
var RoleSyncFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "taxbox",
	Subsystem: "roles",
	Name:      "sync_failures_total",
	Help:      "Total role directory operations that failed.",
}, []string{"op"})

// TierRolesGranted counts tier role grants requested.
var TierRolesGranted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "taxbox",
	Subsystem: "roles",
	Name:      "tier_grants_total",
	Help:      "Total tier role grants requested.",
})

// ─── Sweep Metrics ──────────────────────────────────────────────────────────

// SweepsRun counts completed reminder sweeps.
var SweepsRun = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "taxbox",
	Subsystem: "sweep",
	Name:      "runs_total",
	Help:      "Total reminder sweeps executed.",
})

// RemindersSent counts tax reminders delivered.
var RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "taxbox",
	Subsystem: "sweep",
	Name:      "reminders_sent_total",
	Help:      "Total tax reminders delivered to sellers.",
})

// ReminderFailures counts reminders that could not be delivered.
var ReminderFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "taxbox",
	Subsystem: "sweep",
	Name:      "reminder_failures_total",
	Help:      "Total reminders that failed to deliver (logged and skipped).",
})
