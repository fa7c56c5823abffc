package migration

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rflorenc/scm-migration-workbench/internal/logging"
	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// predefinedSnippet is the snippet type the platform ships and users cannot edit.
const predefinedSnippet = "predefined"

// Builder reads the destination state a fetch plan asks for.
type Builder struct {
	api           API
	systemFolders map[string]bool
	logger        zerolog.Logger

	// Progress receives (message, percent) updates. Optional.
	Progress func(message string, percent int)
	// Detail receives free-text lines. Optional.
	Detail func(line string)

	done, total int
	// settled is false while the step total still depends on lists not yet read.
	settled bool
}

// NewBuilder creates a builder. Rules in systemFolders are left out of the
// global rule index.
func NewBuilder(api API, systemFolders []string) *Builder {
	sf := make(map[string]bool, len(systemFolders))
	for _, f := range systemFolders {
		sf[f] = true
	}
	return &Builder{
		api:           api,
		systemFolders: sf,
		logger:        logging.GetLogger("snapshot"),
	}
}

// Build executes plan and returns the snapshot. Failed reads degrade their
// scope to empty; the only error returned is ErrCancelled. A read already in
// flight when ctx is cancelled is allowed to finish.
func (b *Builder) Build(ctx context.Context, plan *FetchPlan) (*Snapshot, error) {
	start := time.Now()
	defer logging.LogDuration(b.logger, start, "build snapshot")

	snap := NewSnapshot()
	for name, claimants := range plan.NewSnippets {
		snap.PendingSnippets[name] = claimants
	}
	b.done, b.total = 0, plan.Steps()
	b.settled = !plan.GlobalRules
	snap.RulesIndexed = plan.GlobalRules

	// Reads run on a context that ignores cancellation so an in-flight call
	// completes; cancellation is checked between calls.
	callCtx := context.WithoutCancel(ctx)

	if err := b.checkpoint(ctx); err != nil {
		return nil, err
	}
	b.step("Reading destination snippets")
	snippets, err := b.api.ListSnippets(callCtx)
	snap.record(b.result(FetchSnippets, "", models.Scope{}, snippets, err))
	if err == nil {
		snap.SnippetsKnown = true
		for _, s := range snippets {
			if name := s.Name(); name != "" {
				snap.Snippets[name] = s
			}
		}
	}

	if plan.FetchFolders {
		if err := b.checkpoint(ctx); err != nil {
			return nil, err
		}
		b.step("Reading destination folders")
		folders, err := b.api.ListFolders(callCtx)
		snap.record(b.result(FetchFolders, "", models.Scope{}, folders, err))
		if err == nil {
			snap.FoldersKnown = true
			for _, f := range folders {
				if name := f.Name(); name != "" {
					snap.Folders[name] = true
				}
			}
		}
	}

	var ruleScopes []models.Scope
	if plan.GlobalRules {
		ruleScopes = b.ruleScopes(snap)
		b.total += len(ruleScopes)
		b.settled = true
	}

	for _, f := range plan.Scoped {
		if err := b.checkpoint(ctx); err != nil {
			return nil, err
		}
		b.step(fmt.Sprintf("Reading %s in %s", f.Type.Label(), f.Scope))
		records, err := b.api.List(callCtx, f.Type, f.Scope)
		snap.record(b.result(FetchScoped, f.Type, f.Scope, records, err))
		if err == nil {
			snap.AddRecords(f.Type, f.Scope, records)
		}
	}

	for _, scope := range ruleScopes {
		if err := b.checkpoint(ctx); err != nil {
			return nil, err
		}
		b.step(fmt.Sprintf("Indexing security rules in %s", scope))
		records, err := b.api.List(callCtx, models.TypeSecurityRule, scope)
		snap.record(b.result(FetchRules, models.TypeSecurityRule, scope, records, err))
		if err == nil {
			snap.AddRules(scope, records)
		}
	}

	b.progress("Destination snapshot complete", 100)
	return snap, nil
}

// ruleScopes lists every user folder and every non-predefined snippet, sorted.
func (b *Builder) ruleScopes(snap *Snapshot) []models.Scope {
	var folders, snippets []string
	for name := range snap.Folders {
		if !b.systemFolders[name] {
			folders = append(folders, name)
		}
	}
	for name, rec := range snap.Snippets {
		if stringField(rec, "type") != predefinedSnippet {
			snippets = append(snippets, name)
		}
	}
	sort.Strings(folders)
	sort.Strings(snippets)

	scopes := make([]models.Scope, 0, len(folders)+len(snippets))
	for _, f := range folders {
		scopes = append(scopes, models.Scope{Kind: models.ScopeFolder, Name: f})
	}
	for _, s := range snippets {
		scopes = append(scopes, models.Scope{Kind: models.ScopeSnippet, Name: s})
	}
	return scopes
}

func (b *Builder) checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		b.logger.Info().Int("completed", b.done).Int("total", b.total).Msg("Snapshot build cancelled")
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return nil
}

func (b *Builder) step(message string) {
	pct := 0
	if b.settled && b.total > 0 {
		pct = b.done * 100 / b.total
	}
	b.done++
	b.progress(message, pct)
}

func (b *Builder) result(kind FetchKind, t models.ConfigType, scope models.Scope, records []models.Resource, err error) ScopeFetchResult {
	r := ScopeFetchResult{Kind: kind, Type: t, Scope: scope, Records: len(records)}
	if err != nil {
		r.Err = &FetchError{Kind: kind, Type: t, Scope: scope, Err: err}
		r.Records = 0
		b.logger.Warn().
			Str("kind", string(kind)).
			Str("type", string(t)).
			Str("scope", scope.String()).
			Err(err).
			Msg("Destination read failed, treating scope as empty")
		b.detail(fmt.Sprintf("  %s: failed (%v), treated as empty", r, err))
		return r
	}
	b.logger.Debug().Str("fetch", r.String()).Int("records", r.Records).Msg("Destination read")
	b.detail(fmt.Sprintf("  %s: %d record(s)", r, r.Records))
	return r
}

func (b *Builder) progress(message string, percent int) {
	if b.Progress != nil {
		b.Progress(message, percent)
	}
}

func (b *Builder) detail(line string) {
	if b.Detail != nil {
		b.Detail(line)
	}
}

func (s *Snapshot) record(r ScopeFetchResult) {
	s.Results = append(s.Results, r)
}
