package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Template lifecycle and executor counters.

var (
	TemplatesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gopayments",
		Subsystem: "templates",
		Name:      "created_total",
		Help:      "Payment templates created, by batch mode",
	}, []string{"mode"})

	TemplatesCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gopayments",
		Subsystem: "templates",
		Name:      "cancelled_total",
		Help:      "Payment templates cancelled",
	})

	ExecutorRuns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gopayments",
		Subsystem: "executor",
		Name:      "runs_total",
		Help:      "Due-template executor poll runs",
	})

	ExecutorErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gopayments",
		Subsystem: "executor",
		Name:      "errors_total",
		Help:      "Template executions that failed",
	})

	TemplatesExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gopayments",
		Subsystem: "executor",
		Name:      "templates_executed_total",
		Help:      "Templates executed on-chain, by kind",
	}, []string{"kind"})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gopayments",
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Login attempts, by outcome",
	}, []string{"outcome"})
)
