package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportOutcome(t *testing.T) {
	tests := []struct {
		name   string
		report func() *ValidationReport
		expect PushOutcome
	}{
		{"fatal", func() *ValidationReport { return FatalReport("panic") }, OutcomeFailed},
		{"reference conflict wins over errors", func() *ValidationReport {
			r := NewValidationReport()
			r.Errors = append(r.Errors, "x")
			r.ReferenceConflicts = append(r.ReferenceConflicts, ReferenceConflict{RuleName: "legacy-rule"})
			r.NewItems = 1
			return r
		}, OutcomeReferenceConflict},
		{"hard error", func() *ValidationReport {
			r := NewValidationReport()
			r.Errors = append(r.Errors, "name too long")
			r.NewItems = 1
			return r
		}, OutcomeBlocked},
		{"all skipped", func() *ValidationReport {
			r := NewValidationReport()
			r.TotalItems, r.SkippedItems = 2, 2
			return r
		}, OutcomeNothingToDo},
		{"warnings do not block", func() *ValidationReport {
			r := NewValidationReport()
			r.Warnings = append(r.Warnings, "heads up")
			r.TotalItems, r.NewItems = 1, 1
			return r
		}, OutcomeReady},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, msg := tc.report().Outcome()
			assert.Equal(t, tc.expect, got)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestReferenceConflictMessageNamesRuleAndObject(t *testing.T) {
	r := NewValidationReport()
	r.ReferenceConflicts = []ReferenceConflict{{
		ReferencedType:   TypeAddress,
		ReferencedObject: "web-server-1",
		RuleName:         "legacy-rule",
		RuleLocation:     "folder 'Shared'",
		ReferenceField:   "source",
	}}
	_, msg := r.Outcome()
	assert.Contains(t, msg, "legacy-rule")
	assert.Contains(t, msg, "web-server-1")
}

func TestItemDetailNeedsPush(t *testing.T) {
	assert.False(t, ItemDetail{Exists: true, Strategy: StrategySkip}.NeedsPush())
	assert.True(t, ItemDetail{Exists: true, Strategy: StrategyOverwrite}.NeedsPush())
	assert.True(t, ItemDetail{Exists: false, Strategy: StrategySkip}.NeedsPush())
}
