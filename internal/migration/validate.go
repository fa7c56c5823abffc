package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/rflorenc/scm-migration-workbench/internal/logging"
	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// Options configures a validation run.
type Options struct {
	DefaultStrategy models.Strategy
	SystemFolders   []string
	Progress        func(message string, percent int)
	Detail          func(line string)
}

// Result is everything one validation run produces.
type Result struct {
	Report   *models.ValidationReport `json:"report"`
	Filtered *models.Selection        `json:"filtered,omitempty"`
	Plan     *FetchPlan               `json:"plan,omitempty"`
	Snapshot *Snapshot                `json:"-"`
}

// Validate resolves sel, reads the destination state it needs through api,
// analyzes it against full and filters it down to the items that need a push.
//
// The only error returned is ErrCancelled. Any other fault is reported as a
// fatal report rather than a half-built result.
func Validate(ctx context.Context, api API, sel *models.Selection, full *models.ConfigSet, opts Options) (result *Result, err error) {
	logger := logging.GetLogger("validate")
	start := time.Now()
	defer logging.LogDuration(logger, start, "validate")

	defer func() {
		if p := recover(); p != nil {
			logger.Error().Interface("panic", p).Msg("Validation aborted by internal fault")
			result = &Result{Report: models.FatalReport(fmt.Sprint(p))}
			err = nil
		}
	}()

	res := ResolveSelection(sel, opts.DefaultStrategy)
	plan := PlanFetch(res)
	logger.Info().
		Int("items", res.Len()).
		Int("scoped_fetches", len(plan.Scoped)).
		Bool("global_rules", plan.GlobalRules).
		Bool("new_snippets_only", plan.NewSnippetsOnly).
		Msg("Fetch plan ready")

	b := NewBuilder(api, opts.SystemFolders)
	b.Progress = opts.Progress
	b.Detail = opts.Detail
	snap, err := b.Build(ctx, plan)
	if err != nil {
		return nil, err
	}

	report := Analyze(sel, snap, res, full)
	outcome, msg := report.Outcome()
	logger.Info().
		Int("total", report.TotalItems).
		Int("new", report.NewItems).
		Int("conflicts", report.Conflicts).
		Int("skipped", report.SkippedItems).
		Int("errors", len(report.Errors)).
		Int("warnings", len(report.Warnings)).
		Str("outcome", string(outcome)).
		Msg(msg)

	return &Result{
		Report:   report,
		Filtered: FilterSelection(sel, report),
		Plan:     plan,
		Snapshot: snap,
	}, nil
}
