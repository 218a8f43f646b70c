package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"teamtask/internal/domain"
)

var policyDecisions = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "teamtask_policy_decisions_total", Help: "Task policy decisions by operation, role and outcome"},
	[]string{"op", "role", "outcome"},
)

func init() { prometheus.MustRegister(policyDecisions) }

func observeDecision(op domain.Operation, role domain.Role, allowed bool) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	policyDecisions.WithLabelValues(string(op), string(role), outcome).Inc()
}
