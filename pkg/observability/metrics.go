package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus metrics of the command engine. Each
// collector owns its registry so several can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Violations      *prometheus.CounterVec
	RuleReloads     *prometheus.CounterVec
}

// NewCollector creates a collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	commands := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of command calls by operation and outcome",
		},
		[]string{"command", "operation", "result"},
	)

	commandDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command", "operation"},
	)

	violations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_violations_total",
			Help:      "Total number of rule violations reported",
		},
		[]string{"rule", "severity"},
	)

	ruleReloads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_reloads_total",
			Help:      "Total number of rule file reloads",
		},
		[]string{"status"},
	)

	registry.MustRegister(commands, commandDuration, violations, ruleReloads)

	return &Collector{
		registry:        registry,
		Commands:        commands,
		CommandDuration: commandDuration,
		Violations:      violations,
		RuleReloads:     ruleReloads,
	}
}

// Registry returns the registry the metrics are registered with
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordCommand records one command call
func (c *Collector) RecordCommand(command, operation, result string, duration time.Duration) {
	c.Commands.WithLabelValues(command, operation, result).Inc()
	c.CommandDuration.WithLabelValues(command, operation).Observe(duration.Seconds())
}

// RecordViolation records one reported rule violation
func (c *Collector) RecordViolation(rule, severity string) {
	c.Violations.WithLabelValues(rule, severity).Inc()
}

// RecordRuleReload records a rule file reload attempt
func (c *Collector) RecordRuleReload(err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.RuleReloads.WithLabelValues(status).Inc()
}
