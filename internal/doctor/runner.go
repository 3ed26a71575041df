package doctor

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/kegadopt/kegadopt/pkg/logger"
)

// ErrChecksFailed is returned when at least one check fails with error
// severity.
var ErrChecksFailed = errors.New("health checks failed")

// Runner executes health checks sequentially and reports the results.
type Runner struct {
	checkers []HealthChecker
	reporter Reporter
	log      logger.Logger
}

// NewRunner creates a Runner over the given checkers.
func NewRunner(checkers []HealthChecker, reporter Reporter, log logger.Logger) *Runner {
	return &Runner{
		checkers: checkers,
		reporter: reporter,
		log:      log,
	}
}

// Run executes all checks, reports them, and returns ErrChecksFailed
// if any check failed with error severity.
func (r *Runner) Run(ctx context.Context) error {
	results := make([]CheckResult, 0, len(r.checkers))

	for _, checker := range r.checkers {
		r.log.Debug("running check", "name", checker.Name())

		result := checker.Check(ctx)
		results = append(results, result)

		if result.IsError() {
			r.log.Error("check failed", "name", result.Name, "message", result.Message)
		}
	}

	r.reporter.Report(results)

	for _, result := range results {
		if result.IsError() {
			return ErrChecksFailed
		}
	}

	return nil
}
