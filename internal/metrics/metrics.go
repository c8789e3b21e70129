// Package metrics registers the Prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvitationTransitions counts terminal invitation transitions by action
	// (confirm, decline, cancel).
	InvitationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ministryroster_invitation_transitions_total",
		Help: "Invitation state machine transitions by action.",
	}, []string{"action"})

	// PenaltiesApplied counts penalty grants recorded by the reliability
	// ledger.
	PenaltiesApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ministryroster_penalties_applied_total",
		Help: "Penalty grants recorded by the reliability ledger.",
	})

	// BlocksTriggered counts musicians crossing the block threshold.
	BlocksTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ministryroster_blocks_triggered_total",
		Help: "Musicians blocked after crossing the penalty threshold.",
	})

	// PointsGranted sums gamification points granted.
	PointsGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ministryroster_points_granted_total",
		Help: "Gamification points granted, including achievement bonuses.",
	})
)
