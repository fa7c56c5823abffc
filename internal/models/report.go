package models

import (
	"fmt"
	"strings"
)

// ItemDetail is the per-item verdict of a validation run.
type ItemDetail struct {
	Type        ConfigType          `json:"type" yaml:"type"`
	Name        string              `json:"name" yaml:"name"`
	SourceKind  ContainerKind       `json:"source_kind" yaml:"source_kind"`
	Container   string              `json:"container,omitempty" yaml:"container,omitempty"`
	Location    string              `json:"location" yaml:"location"`
	DestType    DestKind            `json:"dest_type" yaml:"dest_type"`
	Destination string              `json:"destination" yaml:"destination"`
	TargetName  string              `json:"target_name" yaml:"target_name"`
	Exists      bool                `json:"exists" yaml:"exists"`
	Strategy    Strategy            `json:"strategy" yaml:"strategy"`
	Action      string              `json:"action" yaml:"action"`
	Error       string              `json:"error,omitempty" yaml:"error,omitempty"`
	Warning     string              `json:"warning,omitempty" yaml:"warning,omitempty"`
	MissingDeps []MissingDependency `json:"missing_deps,omitempty" yaml:"missing_deps,omitempty"`
}

// Key returns the selection key of the item the detail describes.
func (d ItemDetail) Key() ItemKey {
	return ItemKey{SourceKind: d.SourceKind, Container: d.Container, Type: d.Type, Name: d.Name}
}

// NeedsPush reports whether the item requires a destination-side call.
func (d ItemDetail) NeedsPush() bool {
	return !d.Exists || d.Strategy != StrategySkip
}

// MissingDependency is an object referenced by a selected item that is not
// selected itself but was found in the pulled configuration.
type MissingDependency struct {
	ReferencedName    string        `json:"referenced_name" yaml:"referenced_name"`
	ReferencedType    ConfigType    `json:"referenced_type" yaml:"referenced_type"`
	RequiredByName    string        `json:"required_by_name" yaml:"required_by_name"`
	RequiredByType    ConfigType    `json:"required_by_type" yaml:"required_by_type"`
	Field             string        `json:"field" yaml:"field"`
	SourceKind        ContainerKind `json:"source_kind" yaml:"source_kind"`
	SourceContainer   string        `json:"source_container,omitempty" yaml:"source_container,omitempty"`
	Record            Resource      `json:"record" yaml:"record"`
	TargetDestination Destination   `json:"target_destination" yaml:"target_destination"`
}

// ReferenceConflict records a destination rule that still points at an object
// the push wants to overwrite.
type ReferenceConflict struct {
	ReferencedType   ConfigType `json:"referenced_type" yaml:"referenced_type"`
	ReferencedObject string     `json:"referenced_object" yaml:"referenced_object"`
	RuleName         string     `json:"rule_name" yaml:"rule_name"`
	RuleLocation     string     `json:"rule_location" yaml:"rule_location"`
	ReferenceField   string     `json:"reference_field" yaml:"reference_field"`
}

func (c ReferenceConflict) String() string {
	return fmt.Sprintf("rule '%s' in %s references %s '%s' via %s",
		c.RuleName, c.RuleLocation, c.ReferencedType.Label(), c.ReferencedObject, c.ReferenceField)
}

// ValidationReport is the complete result of one validation run.
type ValidationReport struct {
	Errors              []string            `json:"errors" yaml:"errors"`
	Warnings            []string            `json:"warnings" yaml:"warnings"`
	ItemDetails         []ItemDetail        `json:"item_details" yaml:"item_details"`
	NewItems            int                 `json:"new_items" yaml:"new_items"`
	Conflicts           int                 `json:"conflicts" yaml:"conflicts"`
	SkippedItems        int                 `json:"skipped_items" yaml:"skipped_items"`
	TotalItems          int                 `json:"total_items" yaml:"total_items"`
	MissingDependencies []MissingDependency `json:"missing_dependencies" yaml:"missing_dependencies"`
	ReferenceConflicts  []ReferenceConflict `json:"reference_conflicts" yaml:"reference_conflicts"`
	DegradedScopes      []string            `json:"degraded_scopes,omitempty" yaml:"degraded_scopes,omitempty"`
	Fatal               string              `json:"fatal,omitempty" yaml:"fatal,omitempty"`
}

// NewValidationReport returns an empty report with non-nil lists.
func NewValidationReport() *ValidationReport {
	return &ValidationReport{
		Errors:              []string{},
		Warnings:            []string{},
		ItemDetails:         []ItemDetail{},
		MissingDependencies: []MissingDependency{},
		ReferenceConflicts:  []ReferenceConflict{},
	}
}

// FatalReport wraps an unexpected internal fault in a well-formed report.
func FatalReport(msg string) *ValidationReport {
	r := NewValidationReport()
	r.Fatal = msg
	r.Errors = append(r.Errors, "validation failed: "+msg)
	return r
}

// PushOutcome summarises whether a report allows the push to proceed.
type PushOutcome string

const (
	OutcomeReady             PushOutcome = "ready"
	OutcomeBlocked           PushOutcome = "blocked"
	OutcomeReferenceConflict PushOutcome = "reference_conflict"
	OutcomeNothingToDo       PushOutcome = "nothing_to_do"
	OutcomeFailed            PushOutcome = "failed"
)

// Outcome classifies the report and returns a message for the user.
// Warnings never block.
func (r *ValidationReport) Outcome() (PushOutcome, string) {
	switch {
	case r.Fatal != "":
		return OutcomeFailed, "validation failed: " + r.Fatal
	case len(r.ReferenceConflicts) > 0:
		parts := make([]string, 0, len(r.ReferenceConflicts))
		for _, c := range r.ReferenceConflicts {
			parts = append(parts, c.String())
		}
		return OutcomeReferenceConflict, "push blocked by reference conflicts: " + strings.Join(parts, "; ")
	case len(r.Errors) > 0:
		return OutcomeBlocked, fmt.Sprintf("push blocked by %d validation error(s)", len(r.Errors))
	case r.NewItems == 0 && r.Conflicts == 0:
		return OutcomeNothingToDo, "nothing to do: every selected item already exists and will be skipped"
	}
	return OutcomeReady, fmt.Sprintf("ready to push: %d new, %d to update, %d skipped", r.NewItems, r.Conflicts, r.SkippedItems)
}
