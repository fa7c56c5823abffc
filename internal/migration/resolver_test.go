package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

func TestResolve_Chain(t *testing.T) {
	src := Source{Kind: models.SourceFolder, Name: "Shared"}

	tests := []struct {
		name     string
		chain    []*models.DestinationSettings
		wantKind models.DestKind
		wantName string
		wantStrt models.Strategy
	}{
		{
			name:     "no overrides falls back to source and default",
			chain:    []*models.DestinationSettings{nil, nil},
			wantKind: models.DestFolder, wantName: "Shared", wantStrt: models.StrategySkip,
		},
		{
			name: "container override propagates",
			chain: []*models.DestinationSettings{nil, {
				LocationKind: models.LocationFolder, LocationName: "Mobile Users", Strategy: models.StrategyOverwrite,
			}},
			wantKind: models.DestFolder, wantName: "Mobile Users", wantStrt: models.StrategyOverwrite,
		},
		{
			name: "item override wins",
			chain: []*models.DestinationSettings{
				{LocationKind: models.LocationExistingSnippet, LocationName: "web", Strategy: models.StrategyRename},
				{LocationKind: models.LocationFolder, LocationName: "Mobile Users", Strategy: models.StrategyOverwrite},
			},
			wantKind: models.DestSnippet, wantName: "web", wantStrt: models.StrategyRename,
		},
		{
			name: "location and strategy inherit independently",
			chain: []*models.DestinationSettings{
				{Strategy: models.StrategyOverwrite},
				{LocationKind: models.LocationFolder, LocationName: "Mobile Users", Strategy: models.StrategyRename},
			},
			wantKind: models.DestFolder, wantName: "Mobile Users", wantStrt: models.StrategyOverwrite,
		},
		{
			name: "inherit kind does not pin a location",
			chain: []*models.DestinationSettings{
				{LocationKind: models.LocationInherit},
				{LocationKind: models.LocationExistingSnippet, LocationName: "web"},
			},
			wantKind: models.DestSnippet, wantName: "web", wantStrt: models.StrategySkip,
		},
		{
			name:     "new snippet without a name derives it from the source",
			chain:    []*models.DestinationSettings{nil, {LocationKind: models.LocationNewSnippet}},
			wantKind: models.DestNewSnippet, wantName: "Shared-copy", wantStrt: models.StrategySkip,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := Resolve("web-server-1", tc.chain, src, models.StrategySkip)
			assert.Equal(t, tc.wantKind, r.Kind)
			assert.Equal(t, tc.wantName, r.Name)
			assert.Equal(t, tc.wantStrt, r.Strategy)
			assert.Equal(t, tc.wantKind == models.DestNewSnippet, r.IsNewSnippet)
		})
	}
}

func TestResolve_Names(t *testing.T) {
	src := Source{Kind: models.SourceFolder, Name: "Shared"}

	r := Resolve("addr", nil, src, models.StrategyRename)
	assert.Equal(t, "addr", r.LookupName)
	assert.Equal(t, "addr", r.TargetName)
	assert.Equal(t, "addr-copy", r.RenameName)
	assert.Equal(t, "addr", r.FinalName(false))
	assert.Equal(t, "addr-copy", r.FinalName(true))

	r = Resolve("addr", []*models.DestinationSettings{{TargetName: "addr-v2"}}, src, models.StrategySkip)
	assert.Equal(t, "addr-v2", r.LookupName, "custom names are probed when not renaming")
	assert.Equal(t, "addr-v2", r.FinalName(true))

	r = Resolve("addr", []*models.DestinationSettings{{TargetName: "addr-v2", Strategy: models.StrategyRename}}, src, models.StrategySkip)
	assert.Equal(t, "addr", r.LookupName, "rename probes the original name")
	assert.Equal(t, "addr-v2", r.FinalName(true))

	r = Resolve("addr", []*models.DestinationSettings{nil, {TargetName: "ignored"}}, src, models.StrategySkip)
	assert.Equal(t, "addr", r.TargetName, "containers cannot rename their children")
}

func TestResolve_DependencyMode(t *testing.T) {
	src := Source{Kind: models.SourceFolder, Name: "Shared"}
	assert.Equal(t, models.DependencyInclude, Resolve("a", nil, src, models.StrategySkip).DependencyMode)

	r := Resolve("a", []*models.DestinationSettings{nil, {DependencyMode: models.DependencyDuplicates}}, src, models.StrategySkip)
	assert.Equal(t, models.DependencyDuplicates, r.DependencyMode)
}

func TestResolveSelection_DefaultStrategy(t *testing.T) {
	sel := &models.Selection{ConfigSet: models.ConfigSet{
		Folders: []models.Container{folder("Shared", map[models.ConfigType][]models.Item{
			models.TypeAddress: {item("a", nil)},
		})},
	}}
	key := models.ItemKey{SourceKind: models.SourceFolder, Container: "Shared", Type: models.TypeAddress, Name: "a"}

	r, ok := ResolveSelection(sel, models.StrategyOverwrite).Item(key)
	require.True(t, ok)
	assert.Equal(t, models.StrategyOverwrite, r.Strategy)

	sel.DefaultStrategy = models.StrategyRename
	r, _ = ResolveSelection(sel, models.StrategyOverwrite).Item(key)
	assert.Equal(t, models.StrategyRename, r.Strategy)

	sel.DefaultStrategy = ""
	r, _ = ResolveSelection(sel, "").Item(key)
	assert.Equal(t, models.StrategySkip, r.Strategy)
}

// Renaming a snippet sends every inheriting child to the new name.
func TestResolveSelection_ContainerRename(t *testing.T) {
	snip := folder("old-snip", map[models.ConfigType][]models.Item{
		models.TypeAddress: {
			item("a", nil),
			itemWith("b", nil, &models.DestinationSettings{LocationKind: models.LocationFolder, LocationName: "Shared"}),
		},
	})
	snip.Rename("old-snip-v2")
	require.NotNil(t, snip.DestinationOverride)
	assert.Equal(t, models.LocationRenameSnippet, snip.DestinationOverride.LocationKind)

	sel := &models.Selection{ConfigSet: models.ConfigSet{Snippets: []models.Container{snip}}}
	res := ResolveSelection(sel, models.StrategySkip)

	a, ok := res.Item(models.ItemKey{SourceKind: models.SourceSnippet, Container: "old-snip-v2", Type: models.TypeAddress, Name: "a"})
	require.True(t, ok)
	assert.Equal(t, models.DestNewSnippet, a.Kind)
	assert.Equal(t, "old-snip-v2", a.Name)
	assert.True(t, a.IsNewSnippet)

	b, ok := res.Item(models.ItemKey{SourceKind: models.SourceSnippet, Container: "old-snip-v2", Type: models.TypeAddress, Name: "b"})
	require.True(t, ok)
	assert.Equal(t, models.DestFolder, b.Kind)
	assert.Equal(t, "Shared", b.Name)

	assert.Equal(t, map[string][]string{"old-snip-v2": {"snippet 'old-snip-v2'"}}, res.NewSnippets())
}

func TestResolveSelection_DoesNotMutate(t *testing.T) {
	c := folder("Shared", map[models.ConfigType][]models.Item{models.TypeAddress: {item("a", nil)}})
	c.OriginalName = "Old"
	sel := &models.Selection{ConfigSet: models.ConfigSet{Snippets: []models.Container{c}}}

	ResolveSelection(sel, models.StrategySkip)
	assert.Nil(t, sel.Snippets[0].DestinationOverride)
}

func TestResolveSelection_Infrastructure(t *testing.T) {
	sel := &models.Selection{ConfigSet: models.ConfigSet{
		Infrastructure: map[models.ConfigType][]models.Item{
			models.TypeServiceConnection: {item("sc-1", nil)},
			models.TypeIKEGateway:        {item("gw-1", models.Resource{"folder": "Mobile Users"})},
		},
	}}
	res := ResolveSelection(sel, models.StrategySkip)

	sc, ok := res.Item(models.ItemKey{SourceKind: models.SourceInfrastructure, Type: models.TypeServiceConnection, Name: "sc-1"})
	require.True(t, ok)
	assert.Equal(t, models.FolderServiceConnections, sc.Name)

	gw, ok := res.Item(models.ItemKey{SourceKind: models.SourceInfrastructure, Type: models.TypeIKEGateway, Name: "gw-1"})
	require.True(t, ok)
	assert.Equal(t, "Mobile Users", gw.Name)

	_, hasParent := res.Parent(models.ItemKey{SourceKind: models.SourceInfrastructure, Type: models.TypeIKEGateway, Name: "gw-1"})
	assert.False(t, hasParent)
}
