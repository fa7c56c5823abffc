package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

func TestIncludeDependencies(t *testing.T) {
	sel := &models.Selection{ConfigSet: models.ConfigSet{
		Folders: []models.Container{folder("Shared", map[models.ConfigType][]models.Item{
			models.TypeAddressGroup: {item("grp-a", models.Resource{"static": []interface{}{"addr-x"}})},
		})},
	}}
	target := models.Destination{Kind: models.DestNewSnippet, Name: "fresh", IsNewSnippet: true, Strategy: models.StrategySkip}
	deps := []models.MissingDependency{
		{ReferencedName: "addr-x", ReferencedType: models.TypeAddress, SourceKind: models.SourceFolder,
			SourceContainer: "Shared", Record: models.Resource{"name": "addr-x"}, TargetDestination: target},
		{ReferencedName: "addr-x", ReferencedType: models.TypeAddress, SourceKind: models.SourceFolder,
			SourceContainer: "Shared", Record: models.Resource{"name": "addr-x"}, TargetDestination: target},
		{ReferencedName: "svc", ReferencedType: models.TypeService, SourceKind: models.SourceSnippet,
			SourceContainer: "common", Record: models.Resource{"name": "svc"}, TargetDestination: target},
		{ReferencedName: "suite-b", ReferencedType: models.TypeIKECryptoProfile, SourceKind: models.SourceInfrastructure,
			Record: models.Resource{"name": "suite-b"}, TargetDestination: target},
	}

	out := IncludeDependencies(sel, deps)

	addrs := out.Folders[0].Items(models.TypeAddress)
	require.Len(t, addrs, 1, "duplicates are added once")
	require.NotNil(t, addrs[0].DestinationOverride)
	assert.Equal(t, models.LocationNewSnippet, addrs[0].DestinationOverride.LocationKind)
	assert.Equal(t, "fresh", addrs[0].DestinationOverride.LocationName)

	require.Len(t, out.Snippets, 1)
	assert.Equal(t, "common", out.Snippets[0].Name)
	assert.Len(t, out.Snippets[0].Items(models.TypeService), 1)
	assert.Len(t, out.Infrastructure[models.TypeIKECryptoProfile], 1)

	assert.Empty(t, sel.Folders[0].Items(models.TypeAddress), "the input selection is untouched")
	assert.Empty(t, sel.Snippets)
}

// Including what the analyzer proposes makes the dependency disappear on the
// next run.
func TestIncludeDependencies_ResolvesMissing(t *testing.T) {
	sel := groupSelection("addr-x")
	full := &models.ConfigSet{Folders: []models.Container{folder("Shared", map[models.ConfigType][]models.Item{
		models.TypeAddress: {item("addr-x", nil)},
	})}}
	api := newFakeAPI().withFolders("Shared")

	report, _, _ := run(api, sel, full)
	require.Len(t, report.MissingDependencies, 1)

	report, _, _ = run(api, IncludeDependencies(sel, report.MissingDependencies), full)
	assert.Empty(t, report.MissingDependencies)
	assert.Equal(t, 2, report.NewItems)
}
