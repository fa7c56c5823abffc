package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

func rulePlan() *FetchPlan {
	return &FetchPlan{
		FetchFolders: true,
		GlobalRules:  true,
		Scoped:       []ScopedFetch{{Type: models.TypeAddress, Scope: folderScope("Shared")}},
	}
}

func TestBuilder_GlobalRuleIndex(t *testing.T) {
	api := newFakeAPI().
		withFolders("All", "Shared", "Remote Networks").
		withSnippet("web", "").
		withSnippet("predef", predefinedSnippet).
		with(models.TypeSecurityRule, folderScope("Shared"), models.Resource{"name": "allow-web"}).
		with(models.TypeSecurityRule, snippetScope("web"), models.Resource{"name": "allow-web"}, models.Resource{"name": "deny-all"}).
		with(models.TypeSecurityRule, folderScope("All"), models.Resource{"name": "system-rule"}).
		with(models.TypeAddress, folderScope("Shared"), models.Resource{"name": "web-server-1"})

	snap, err := NewBuilder(api, []string{"All"}).Build(context.Background(), rulePlan())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"snippets",
		"folders",
		listCall(models.TypeAddress, folderScope("Shared")),
		listCall(models.TypeSecurityRule, folderScope("Remote Networks")),
		listCall(models.TypeSecurityRule, folderScope("Shared")),
		listCall(models.TypeSecurityRule, snippetScope("web")),
	}, api.Calls(), "system folders and predefined snippets are not indexed")

	assert.Equal(t, []models.Scope{folderScope("Shared"), snippetScope("web")}, snap.RuleIndex["allow-web"])
	assert.NotContains(t, snap.RuleIndex, "system-rule")
	assert.Len(t, snap.Rules, 3)

	_, ok := snap.Lookup(models.TypeAddress, folderScope("Shared"), "web-server-1")
	assert.True(t, ok)
	assert.True(t, snap.FoldersKnown)
	assert.True(t, snap.SnippetsKnown)
	assert.Empty(t, snap.Degraded())
}

func TestBuilder_DegradedScope(t *testing.T) {
	api := newFakeAPI().withFolders("Shared")
	boom := errors.New("HTTP 502")
	api.fail[listCall(models.TypeAddress, folderScope("Shared"))] = boom
	api.fail["snippets"] = boom

	snap, err := NewBuilder(api, nil).Build(context.Background(), rulePlan())
	require.NoError(t, err, "read failures never abort the build")

	degraded := snap.Degraded()
	require.Len(t, degraded, 2)
	assert.Equal(t, FetchSnippets, degraded[0].Kind)
	assert.Equal(t, FetchScoped, degraded[1].Kind)
	assert.Equal(t, folderScope("Shared"), degraded[1].Scope)

	var fe *FetchError
	require.True(t, errors.As(degraded[1].Err, &fe))
	assert.Equal(t, models.TypeAddress, fe.Type)
	assert.ErrorIs(t, degraded[1].Err, boom)

	assert.False(t, snap.SnippetsKnown)
	_, ok := snap.Lookup(models.TypeAddress, folderScope("Shared"), "anything")
	assert.False(t, ok)
	assert.Contains(t, api.Calls(), listCall(models.TypeSecurityRule, folderScope("Shared")), "the build continues past a failed read")
}

func TestBuilder_Progress(t *testing.T) {
	api := newFakeAPI().withFolders("Shared", "Remote Networks")

	var percents []int
	var details []string
	b := NewBuilder(api, nil)
	b.Progress = func(_ string, pct int) { percents = append(percents, pct) }
	b.Detail = func(line string) { details = append(details, line) }

	_, err := b.Build(context.Background(), rulePlan())
	require.NoError(t, err)

	assertMonotonic(t, percents)
	// One detail line per read: snippets, folders, one scoped, two rule scopes.
	assert.Len(t, details, 5)
}

func TestBuilder_ProgressNeverGoesBackwards(t *testing.T) {
	api := newFakeAPI().withFolders("All", "Shared", "Mobile Users", "Remote Networks", "Branch A", "Branch B")

	var percents []int
	b := NewBuilder(api, []string{"All"})
	b.Progress = func(_ string, pct int) { percents = append(percents, pct) }

	_, err := b.Build(context.Background(), rulePlan())
	require.NoError(t, err)

	// snippets, folders, one scoped read, five rule scopes, completion.
	require.Len(t, percents, 9)
	assert.Equal(t, []int{0, 0}, percents[:2], "the step total is unknown until the folder list is in")
	assertMonotonic(t, percents)
}

func assertMonotonic(t *testing.T, percents []int) {
	t.Helper()
	require.NotEmpty(t, percents)
	assert.Equal(t, 100, percents[len(percents)-1])
	for i, p := range percents {
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 100)
		if i > 0 {
			assert.GreaterOrEqual(t, p, percents[i-1], "progress dropped at step %d: %v", i, percents)
		}
	}
}

func TestBuilder_CancelBetweenCalls(t *testing.T) {
	api := newFakeAPI().withFolders("Shared")
	ctx, cancel := context.WithCancel(context.Background())
	api.onCall = func(call string) {
		if call == "folders" {
			cancel()
		}
	}

	snap, err := NewBuilder(api, nil).Build(ctx, rulePlan())
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, []string{"snippets", "folders"}, api.Calls(), "the in-flight call finishes, nothing after it starts")
}
