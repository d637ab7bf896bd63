package account

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var flowOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "devxam",
	Subsystem: "users",
	Name:      "login_flow_outcomes_total",
	Help:      "Login, verification and signup steps by operation and outcome.",
}, []string{"op", "outcome"})

func record(op string, outcome string) {
	flowOutcomes.WithLabelValues(op, outcome).Inc()
}
