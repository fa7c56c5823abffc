package migration

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// predefinedProfiles cannot be modified on the destination and are always skipped.
var predefinedProfiles = map[string]bool{
	"best-practice": true,
	"default":       true,
	"strict":        true,
}

func isPredefinedProfile(t models.ConfigType, name string) bool {
	return t.Category() == models.CategoryProfiles && predefinedProfiles[strings.ToLower(name)]
}

func itemLabel(t models.ConfigType, name string) string {
	return fmt.Sprintf("%s '%s'", t.Label(), name)
}

// analysis accumulates one report. It lives for a single Analyze call.
type analysis struct {
	snap   *Snapshot
	res    *Resolution
	deps   *DependencyResolver
	report *models.ValidationReport
}

// Analyze produces the validation report for a resolved selection against a
// destination snapshot. It performs no I/O and is deterministic: the same
// inputs always produce the same report.
func Analyze(sel *models.Selection, snap *Snapshot, res *Resolution, full *models.ConfigSet) *models.ValidationReport {
	a := &analysis{
		snap:   snap,
		res:    res,
		deps:   NewDependencyResolver(full, res),
		report: models.NewValidationReport(),
	}

	a.checkDegraded()
	a.checkContainers(sel)
	a.checkNewSnippets()

	for _, e := range res.entries {
		a.report.ItemDetails = append(a.report.ItemDetails, a.analyzeItem(e))
	}

	a.checkReferenceConflicts()
	return a.report
}

func (a *analysis) errorf(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	a.report.Errors = append(a.report.Errors, msg)
	return msg
}

func (a *analysis) warnf(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	a.report.Warnings = append(a.report.Warnings, msg)
	return msg
}

func (a *analysis) checkDegraded() {
	for _, r := range a.snap.Degraded() {
		a.report.DegradedScopes = append(a.report.DegradedScopes, r.String())
		a.warnf("could not read %s from the destination (%v); it was treated as empty", r, r.Err)
	}
}

func (a *analysis) checkContainers(sel *models.Selection) {
	for _, ref := range sel.Containers() {
		if err := ref.Container.DestinationOverride.Validate(); err != nil {
			a.errorf("%s '%s': invalid destination override: %v", ref.Kind, ref.Container.Name, err)
		}
	}
}

// checkNewSnippets validates every snippet name the push would create.
func (a *analysis) checkNewSnippets() {
	seen := make(map[string]bool)
	var names []string
	for _, e := range a.res.entries {
		if d := e.Resolved.Destination; d.Kind == models.DestNewSnippet && !seen[d.Name] {
			seen[d.Name] = true
			names = append(names, d.Name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if models.NameLength(name) > models.MaxNameLength {
			a.errorf("new snippet name '%s' is %d characters; the limit is %d", name, models.NameLength(name), models.MaxNameLength)
		}
		if a.snap.HasSnippet(name) {
			a.errorf("new snippet '%s' already exists on the destination; choose another name or target the existing snippet", name)
		}
		if claimants := a.snap.PendingSnippets[name]; len(claimants) > 1 {
			a.errorf("new snippet '%s' would be created by more than one container: %s", name, strings.Join(claimants, ", "))
		}
	}
}

func (a *analysis) analyzeItem(e resolvedEntry) models.ItemDetail {
	r := e.Resolved
	key := e.Key
	d := models.ItemDetail{
		Type:        key.Type,
		Name:        key.Name,
		SourceKind:  key.SourceKind,
		Container:   key.Container,
		Location:    e.Source.Name,
		DestType:    r.Kind,
		Destination: r.Name,
		Strategy:    r.Strategy,
	}
	label := itemLabel(key.Type, key.Name)
	var errs, warns []string
	a.report.TotalItems++

	if !key.Type.Valid() {
		errs = append(errs, a.errorf("%s: unknown configuration type", label))
		d.Action = "none (unknown type)"
		d.TargetName = key.Name
		d.Error = strings.Join(errs, "; ")
		return d
	}
	if err := e.Item.DestinationOverride.Validate(); err != nil {
		errs = append(errs, a.errorf("%s: invalid destination override: %v", label, err))
	}

	exists, existsIn := a.exists(key.Type, r)
	forced := false
	if isPredefinedProfile(key.Type, key.Name) {
		forced = true
		exists = true
		if existsIn == "" {
			existsIn = r.Name
		}
		d.Strategy = models.StrategySkip
		warns = append(warns, a.warnf("%s is a predefined profile and cannot be modified on the destination; it will be skipped", label))
	}
	if key.Type == models.TypeSecurityRule && r.Kind == models.DestNewSnippet {
		if scopes := a.snap.RuleScopes(r.LookupName, ""); len(scopes) > 0 {
			warns = append(warns, a.warnf("%s: a rule with this name already exists in %s; it must be renamed or removed there before %s can be attached to a folder",
				label, scopes[0], r.Destination))
		}
	}
	d.Exists = exists

	resolved := r
	resolved.Strategy = d.Strategy
	d.TargetName = resolved.FinalName(exists)

	switch {
	case !exists:
		d.Action = "create in " + r.Destination.String()
		if d.TargetName != key.Name {
			d.Action = fmt.Sprintf("create as '%s' in %s", d.TargetName, r.Destination)
		}
	case forced:
		d.Action = "skip (predefined profile)"
	case d.Strategy == models.StrategySkip:
		d.Action = fmt.Sprintf("skip (exists in %s)", existsIn)
	case d.Strategy == models.StrategyOverwrite:
		d.Action = fmt.Sprintf("overwrite (exists in %s)", existsIn)
	case d.Strategy == models.StrategyRename:
		d.Action = fmt.Sprintf("rename to '%s' (exists in %s)", d.TargetName, existsIn)
	}

	if n := models.NameLength(d.TargetName); n > models.MaxNameLength {
		errs = append(errs, a.errorf("%s: name '%s' is %d characters; the limit is %d", label, d.TargetName, n, models.MaxNameLength))
	} else if exists && d.Strategy == models.StrategyRename && r.RenameName == models.CopyName(r.LookupName) &&
		models.NameLength(r.LookupName)+models.NameLength(models.CopySuffix) > models.MaxNameLength {
		warns = append(warns, a.warnf("%s: adding '%s' would exceed %d characters; the new name is truncated to '%s'",
			label, models.CopySuffix, models.MaxNameLength, d.TargetName))
	}

	if dest, ok := r.Destination.Scope(); ok {
		if dest.Kind == models.ScopeFolder && a.snap.FoldersKnown && !a.snap.Folders[dest.Name] {
			errs = append(errs, a.errorf("%s: destination folder '%s' does not exist", label, dest.Name))
		}
		if dest.Kind == models.ScopeSnippet && a.snap.SnippetsKnown && !a.snap.HasSnippet(dest.Name) {
			errs = append(errs, a.errorf("%s: destination snippet '%s' does not exist", label, dest.Name))
		}
	}

	switch {
	case !exists:
		a.report.NewItems++
	case d.Strategy == models.StrategySkip:
		a.report.SkippedItems++
	default:
		a.report.Conflicts++
	}

	if d.NeedsPush() {
		warns = append(warns, a.followUps(key, e.Item)...)
		deps, depWarns := a.deps.FindMissing(key, e.Item, resolved)
		for _, w := range depWarns {
			warns = append(warns, a.warnf("%s", w))
		}
		for _, dep := range deps {
			where := string(dep.SourceKind)
			if dep.SourceContainer != "" {
				where += " '" + dep.SourceContainer + "'"
			}
			warns = append(warns, a.warnf("%s references %s via %s, which is not selected; found in %s and proposed for %s",
				label, itemLabel(dep.ReferencedType, dep.ReferencedName), dep.Field, where, dep.TargetDestination))
		}
		d.MissingDeps = deps
		a.report.MissingDependencies = append(a.report.MissingDependencies, deps...)
	}

	d.Error = strings.Join(errs, "; ")
	d.Warning = strings.Join(warns, "; ")
	return d
}

// exists probes the snapshot slice that matches the item's destination and
// returns where the existing copy lives.
func (a *analysis) exists(t models.ConfigType, r models.ResolvedItem) (bool, string) {
	if r.Kind == models.DestNewSnippet || t.Category() == models.CategoryHIP {
		return false, ""
	}
	if t == models.TypeSecurityRule {
		switch r.Kind {
		case models.DestFolder:
			if scopes := a.snap.RuleScopes(r.LookupName, models.ScopeFolder); len(scopes) > 0 {
				return true, scopes[0].Name
			}
		case models.DestSnippet:
			for _, sc := range a.snap.RuleScopes(r.LookupName, models.ScopeSnippet) {
				if sc.Name == r.Name {
					return true, sc.Name
				}
			}
		}
		return false, ""
	}
	scope, ok := r.Destination.Scope()
	if !ok {
		return false, ""
	}
	if _, found := a.snap.Lookup(t, scope, r.LookupName); found {
		return true, scope.Name
	}
	return false, ""
}

// followUps returns notices for material the push cannot carry over.
func (a *analysis) followUps(key models.ItemKey, item models.Item) []string {
	if key.Type != models.TypeIKEGateway {
		return nil
	}
	var out []string
	label := itemLabel(key.Type, key.Name)
	if hasField(item.Payload, "authentication.pre_shared_key") {
		out = append(out, a.warnf("%s uses a pre-shared key; the key is not exported and must be re-entered after push", label))
	}
	if hasField(item.Payload, "authentication.certificate") {
		out = append(out, a.warnf("%s uses certificate authentication; certificates must be imported on the destination before push", label))
	}
	return out
}

// checkReferenceConflicts finds destination rules that still name an object
// the push overwrites. Without the rule index the overwrite is only flagged.
func (a *analysis) checkReferenceConflicts() {
	for i := range a.report.ItemDetails {
		d := &a.report.ItemDetails[i]
		if !d.Exists || d.Strategy != models.StrategyOverwrite || d.Type == models.TypeSecurityRule {
			continue
		}
		fields := fieldsReferencing(models.TypeSecurityRule, d.Type)
		if len(fields) == 0 {
			continue
		}
		if !a.snap.RulesIndexed {
			msg := a.warnf("%s will be overwritten but destination rules were not read because no security rule is selected; rules referencing it were not checked",
				itemLabel(d.Type, d.Name))
			if d.Warning != "" {
				d.Warning += "; "
			}
			d.Warning += msg
			continue
		}
		lookup := d.Name
		if r, ok := a.res.Item(d.Key()); ok {
			lookup = r.LookupName
		}
		for _, rule := range a.snap.Rules {
			for _, f := range fields {
				if !containsString(stringValues(rule.Record, f), lookup) {
					continue
				}
				c := models.ReferenceConflict{
					ReferencedType:   d.Type,
					ReferencedObject: lookup,
					RuleName:         rule.Record.Name(),
					RuleLocation:     rule.Scope.Name,
					ReferenceField:   f,
				}
				a.report.ReferenceConflicts = append(a.report.ReferenceConflicts, c)
				msg := a.errorf("cannot overwrite %s: %s", itemLabel(d.Type, lookup), c)
				if d.Error != "" {
					d.Error += "; "
				}
				d.Error += msg
			}
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// PredefinedProfiles returns the force-skipped profile names, sorted.
func PredefinedProfiles() []string {
	names := make([]string, 0, len(predefinedProfiles))
	for n := range predefinedProfiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
