package osmlinks

import (
	"expvar"
)

// Checker metrics keyed by check name
var (
	metricEvaluated = expvar.NewMap("osmlinks_evaluated_total")
	metricSkipped   = expvar.NewMap("osmlinks_skipped_total")
	metricVerdicts  = expvar.NewMap("osmlinks_verdicts_total")
	metricReported  = expvar.NewMap("osmlinks_reported_total")
)

var (
	metricWorkers = new(expvar.Int)
	metricRuns    = new(expvar.Int)
)

func init() {
	expvar.Publish("osmlinks_checker_workers", metricWorkers)
	expvar.Publish("osmlinks_runs_total", metricRuns)
}

func incEvaluated(check string) { metricEvaluated.Add(check, 1) }
func incSkipped(check string) { metricSkipped.Add(check, 1) }
func incReported(check string) { metricReported.Add(check, 1) }
func setWorkers(n int) { metricWorkers.Set(int64(n)) }
func incRuns() { metricRuns.Add(1) }
func incVerdict(check string, verdict VerdictType) {
	metricVerdicts.Add(check+":"+verdict.String(), 1)
}
