package migration

import (
	"sort"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// ScopedFetch is one (type, scope) list call.
type ScopedFetch struct {
	Type  models.ConfigType `json:"type"`
	Scope models.Scope      `json:"scope"`
}

// FetchPlan lists the destination reads a validation run needs. It is derived
// from the resolved selection only, so unused scopes are never fetched.
type FetchPlan struct {
	// NewSnippetsOnly is set when every container item lands in a snippet the
	// push creates. Nothing can collide in an empty namespace, so only the
	// snippet list is read for container items.
	NewSnippetsOnly bool          `json:"new_snippets_only"`
	FetchFolders    bool          `json:"fetch_folders"`
	Scoped          []ScopedFetch `json:"scoped"`
	// GlobalRules asks for every rule in every non-system folder and snippet.
	GlobalRules bool `json:"global_rules"`
	// NewSnippets are the snippet names claimed by containers of this push.
	NewSnippets map[string][]string `json:"new_snippets,omitempty"`
}

// Steps is the number of list calls known before the folder and snippet lists
// are read. Rule scopes are added once those lists are in.
func (p *FetchPlan) Steps() int {
	n := 1 + len(p.Scoped)
	if p.FetchFolders {
		n++
	}
	return n
}

// PlanFetch computes the fetch plan for a resolved selection.
func PlanFetch(res *Resolution) *FetchPlan {
	plan := &FetchPlan{NewSnippets: res.NewSnippets()}

	containerItems, containerNew := 0, 0
	rules := false
	for _, e := range res.entries {
		if e.Source.Kind != models.SourceInfrastructure {
			containerItems++
			if e.Resolved.Kind == models.DestNewSnippet {
				containerNew++
			}
		}
		if e.Key.Type == models.TypeSecurityRule {
			rules = true
		}
	}
	plan.NewSnippetsOnly = containerItems > 0 && containerItems == containerNew

	seen := make(map[ScopedFetch]bool)
	for _, e := range res.entries {
		d := e.Resolved.Destination
		if plan.NewSnippetsOnly && e.Source.Kind != models.SourceInfrastructure {
			continue
		}
		if d.Kind == models.DestFolder {
			plan.FetchFolders = true
		}
		scope, ok := d.Scope()
		if !ok || e.Key.Type == models.TypeSecurityRule || e.Key.Type.Category() == models.CategoryHIP {
			continue
		}
		f := ScopedFetch{Type: e.Key.Type, Scope: scope}
		if !seen[f] {
			seen[f] = true
			plan.Scoped = append(plan.Scoped, f)
		}
	}

	if rules && !plan.NewSnippetsOnly {
		plan.GlobalRules = true
		plan.FetchFolders = true
	}

	sort.Slice(plan.Scoped, func(i, j int) bool {
		a, b := plan.Scoped[i], plan.Scoped[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Scope.Kind != b.Scope.Kind {
			return a.Scope.Kind < b.Scope.Kind
		}
		return a.Scope.Name < b.Scope.Name
	})
	return plan
}
