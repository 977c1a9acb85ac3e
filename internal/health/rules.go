package health

import "lazycache/internal/metrics"

// RuleResult represents the outcome of a single rule.
type RuleResult struct {
	Triggered      bool
	Signal         string
	Recommendation string
	Severity       Status
}

// Rule evaluates a metrics snapshot.
type Rule func(snapshot map[string]int64) RuleResult

// ---------- RULES ----------

// A store that misses most of its reads is not earning its keep.
func MissRatioRule(snapshot map[string]int64) RuleResult {
	gets := snapshot[string(metrics.StoreGetsTotal)]
	misses := snapshot[string(metrics.StoreMissesTotal)]

	if gets >= 10 && misses*10 >= gets*9 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Miss ratio above 90%",
			Recommendation: "Check key construction and whether lifespans are long enough to be useful",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// Values expiring faster than they are written suggests lifespans are
// shorter than intended.
func ExpiryChurnRule(snapshot map[string]int64) RuleResult {
	puts := snapshot[string(metrics.StorePutsTotal)]
	expired := snapshot[string(metrics.StoreExpiredTotal)]

	if puts >= 10 && expired*2 >= puts {
		return RuleResult{
			Triggered:      true,
			Signal:         "More than half of written values expired unread",
			Recommendation: "Raise default or per-key lifespans, or stop caching values nobody reads",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// Exhausted load retries mean the backing source is failing.
func LoadFailureRule(snapshot map[string]int64) RuleResult {
	failures := snapshot[string(metrics.LoaderLoadFailuresTotal)]

	if failures > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Read-through loads failed after exhausting retries",
			Recommendation: "Inspect the backing source and the loader retry policy",
			Severity:       StatusCritical,
		}
	}
	return RuleResult{}
}

// Retried loads indicate a flaky backing source even when they
// eventually succeed.
func LoadRetryRule(snapshot map[string]int64) RuleResult {
	retries := snapshot[string(metrics.LoaderRetriesTotal)]

	if retries > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Read-through loads needed retries",
			Recommendation: "Check backing source latency and error rate",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}
