package migration

import (
	"context"
	"fmt"
	"sync"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// fakeAPI is an in-memory destination tenant.
type fakeAPI struct {
	mu       sync.Mutex
	folders  []models.Resource
	snippets []models.Resource
	records  map[scopedKey][]models.Resource
	fail     map[string]error
	calls    []string
	// onCall runs after a call is recorded, before it returns.
	onCall func(call string)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		records: make(map[scopedKey][]models.Resource),
		fail:    make(map[string]error),
	}
}

func listCall(t models.ConfigType, scope models.Scope) string {
	return fmt.Sprintf("%s@%s", t, scope)
}

func (f *fakeAPI) withFolders(names ...string) *fakeAPI {
	for _, n := range names {
		f.folders = append(f.folders, models.Resource{"name": n})
	}
	return f
}

func (f *fakeAPI) withSnippet(name, typ string) *fakeAPI {
	r := models.Resource{"name": name}
	if typ != "" {
		r["type"] = typ
	}
	f.snippets = append(f.snippets, r)
	return f
}

func (f *fakeAPI) with(t models.ConfigType, scope models.Scope, records ...models.Resource) *fakeAPI {
	k := scopedKey{Type: t, Scope: scope}
	f.records[k] = append(f.records[k], records...)
	return f
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	err := f.fail[call]
	hook := f.onCall
	f.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	return err
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) ListFolders(ctx context.Context) ([]models.Resource, error) {
	if err := f.record("folders"); err != nil {
		return nil, err
	}
	return f.folders, nil
}

func (f *fakeAPI) ListSnippets(ctx context.Context) ([]models.Resource, error) {
	if err := f.record("snippets"); err != nil {
		return nil, err
	}
	return f.snippets, nil
}

func (f *fakeAPI) List(ctx context.Context, t models.ConfigType, scope models.Scope) ([]models.Resource, error) {
	if err := f.record(listCall(t, scope)); err != nil {
		return nil, err
	}
	return f.records[scopedKey{Type: t, Scope: scope}], nil
}

func folderScope(name string) models.Scope {
	return models.Scope{Kind: models.ScopeFolder, Name: name}
}

func snippetScope(name string) models.Scope {
	return models.Scope{Kind: models.ScopeSnippet, Name: name}
}

func item(name string, payload models.Resource) models.Item {
	if payload == nil {
		payload = models.Resource{}
	}
	payload["name"] = name
	return models.Item{Name: name, Payload: payload}
}

func itemWith(name string, payload models.Resource, override *models.DestinationSettings) models.Item {
	it := item(name, payload)
	it.DestinationOverride = override
	return it
}

func folder(name string, items map[models.ConfigType][]models.Item) models.Container {
	c := models.Container{Name: name}
	for _, t := range sortedTypes(items) {
		for _, it := range items[t] {
			c.AddItem(t, it)
		}
	}
	return c
}

func sortedTypes(m map[models.ConfigType][]models.Item) []models.ConfigType {
	types := make([]models.ConfigType, 0, len(m))
	for t := range m {
		types = append(types, t)
	}
	models.SortTypes(types)
	return types
}

// run resolves, builds and analyzes in one go.
func run(api API, sel *models.Selection, full *models.ConfigSet) (*models.ValidationReport, *Snapshot, *FetchPlan) {
	res := ResolveSelection(sel, models.StrategySkip)
	plan := PlanFetch(res)
	snap, err := NewBuilder(api, []string{"All"}).Build(context.Background(), plan)
	if err != nil {
		panic(err)
	}
	return Analyze(sel, snap, res, full), snap, plan
}

func detailFor(r *models.ValidationReport, t models.ConfigType, name string) *models.ItemDetail {
	for i := range r.ItemDetails {
		if r.ItemDetails[i].Type == t && r.ItemDetails[i].Name == name {
			return &r.ItemDetails[i]
		}
	}
	return nil
}
