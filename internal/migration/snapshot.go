package migration

import (
	"context"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// API is the read side of the management-plane client the builder needs.
// *platform.SCM implements it.
type API interface {
	ListFolders(ctx context.Context) ([]models.Resource, error)
	ListSnippets(ctx context.Context) ([]models.Resource, error)
	List(ctx context.Context, t models.ConfigType, scope models.Scope) ([]models.Resource, error)
}

// ScopeFetchResult is the outcome of one destination read: either records or
// the reason the scope was degraded to empty.
type ScopeFetchResult struct {
	Kind    FetchKind         `json:"kind"`
	Type    models.ConfigType `json:"type,omitempty"`
	Scope   models.Scope      `json:"scope"`
	Records int               `json:"records"`
	Err     error             `json:"-"`
}

// Failed reports whether the read was degraded.
func (r ScopeFetchResult) Failed() bool {
	return r.Err != nil
}

func (r ScopeFetchResult) String() string {
	return describeFetch(r.Kind, r.Type, r.Scope)
}

// RuleRecord is an existing destination rule and where it lives.
type RuleRecord struct {
	Scope  models.Scope
	Record models.Resource
}

type scopedKey struct {
	Type  models.ConfigType
	Scope models.Scope
}

// Snapshot is the slice of destination state one validation run reads.
type Snapshot struct {
	Folders      map[string]bool
	FoldersKnown bool
	Snippets     map[string]models.Resource
	// SnippetsKnown is false when the snippet list could not be read.
	SnippetsKnown bool
	// PendingSnippets are snippet names this push creates, with their claimants.
	PendingSnippets map[string][]string

	// RuleIndex maps each existing rule name to every scope that holds it.
	RuleIndex map[string][]models.Scope
	Rules     []RuleRecord
	// RulesIndexed is set when the plan asked for the global rule index.
	RulesIndexed bool
	Results      []ScopeFetchResult

	records map[scopedKey]map[string]models.Resource
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Folders:         make(map[string]bool),
		Snippets:        make(map[string]models.Resource),
		PendingSnippets: make(map[string][]string),
		RuleIndex:       make(map[string][]models.Scope),
		records:         make(map[scopedKey]map[string]models.Resource),
	}
}

// AddRecords stores records of type t held by scope.
func (s *Snapshot) AddRecords(t models.ConfigType, scope models.Scope, records []models.Resource) {
	k := scopedKey{Type: t, Scope: scope}
	m := s.records[k]
	if m == nil {
		m = make(map[string]models.Resource, len(records))
		s.records[k] = m
	}
	for _, r := range records {
		if name := r.Name(); name != "" {
			m[name] = r
		}
	}
}

// AddRules indexes the security rules held by scope.
func (s *Snapshot) AddRules(scope models.Scope, records []models.Resource) {
	for _, r := range records {
		name := r.Name()
		if name == "" {
			continue
		}
		s.RuleIndex[name] = append(s.RuleIndex[name], scope)
		s.Rules = append(s.Rules, RuleRecord{Scope: scope, Record: r})
	}
}

// Lookup returns the record of type t named name in scope.
func (s *Snapshot) Lookup(t models.ConfigType, scope models.Scope, name string) (models.Resource, bool) {
	r, ok := s.records[scopedKey{Type: t, Scope: scope}][name]
	return r, ok
}

// RuleScopes returns where a rule named name lives, filtered by kind. An empty
// kind returns every scope.
func (s *Snapshot) RuleScopes(name string, kind models.ScopeKind) []models.Scope {
	var out []models.Scope
	for _, sc := range s.RuleIndex[name] {
		if kind == "" || sc.Kind == kind {
			out = append(out, sc)
		}
	}
	return out
}

// HasSnippet reports whether a snippet named name exists on the destination.
func (s *Snapshot) HasSnippet(name string) bool {
	_, ok := s.Snippets[name]
	return ok
}

// Degraded returns the reads that failed, in fetch order.
func (s *Snapshot) Degraded() []ScopeFetchResult {
	var out []ScopeFetchResult
	for _, r := range s.Results {
		if r.Failed() {
			out = append(out, r)
		}
	}
	return out
}
