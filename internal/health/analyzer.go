package health

import (
	"strings"

	"lazycache/internal/logs"
	"lazycache/internal/metrics"
)

// Analyzer converts metrics + logs into a health report.
type Analyzer struct {
	metrics *metrics.Registry
	logger  *logs.Logger
	rules   []Rule
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(reg *metrics.Registry, logger *logs.Logger) *Analyzer {
	return &Analyzer{
		metrics: reg,
		logger:  logger,
		rules: []Rule{
			MissRatioRule,
			ExpiryChurnRule,
			LoadFailureRule,
			LoadRetryRule,
		},
	}
}

// Analyze evaluates metrics and logs and returns a health report.
func (a *Analyzer) Analyze() Report {
	snapshot := a.metrics.Snapshot()

	var (
		signals         = []string{}
		recommendations = []string{}
		status          = StatusOK
	)

	/* ---------- METRICS-BASED RULES ---------- */

	for _, rule := range a.rules {
		result := rule(snapshot)
		if !result.Triggered {
			continue
		}

		signals = append(signals, result.Signal)
		recommendations = append(recommendations, result.Recommendation)

		// Escalate status
		if result.Severity == StatusCritical {
			status = StatusCritical
		} else if result.Severity == StatusDegraded && status == StatusOK {
			status = StatusDegraded
		}
	}

	/* ---------- LOG-BASED SIGNALS ---------- */

	records := a.logger.GetLast(100)

	loadFailures := 0
	panicCount := 0

	for _, record := range records {
		if record.Level == logs.WARN &&
			strings.Contains(record.Message, "load failed") {
			loadFailures++
		}

		if record.Level == logs.ERROR &&
			strings.Contains(record.Message, "panic") {
			panicCount++
		}
	}

	if loadFailures >= 3 {
		signals = append(signals,
			"Repeated load failures detected in logs",
		)
		recommendations = append(recommendations,
			"Investigate backing source availability",
		)
		if status == StatusOK {
			status = StatusDegraded
		}
	}

	if panicCount > 0 {
		signals = append(signals,
			"Invariant violations detected in logs",
		)
		recommendations = append(recommendations,
			"Inspect stack traces; the store's bookkeeping may be corrupted",
		)
		status = StatusCritical
	}

	/* ---------- SUMMARY ---------- */

	summary := "Store is healthy"
	if status != StatusOK {
		summary = "Store health issues detected"
	}

	return Report{
		OverallStatus:   status,
		Summary:         summary,
		Signals:         signals,
		Recommendations: recommendations,
	}
}
