package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var gateOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "devxam",
	Subsystem: "users",
	Name:      "auth_gate_outcomes_total",
	Help:      "Authentication gate results by outcome.",
}, []string{"outcome"})
