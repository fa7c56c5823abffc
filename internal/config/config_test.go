package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Listen)
	assert.Equal(t, models.StrategySkip, c.Strategy())
	assert.Equal(t, 10*time.Second, c.CancelGrace)
	assert.Equal(t, []string{"All"}, c.SystemFolders)
	assert.Empty(t, c.Tenants)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
default_strategy: overwrite
cancel_grace: 3s
tenants:
  - name: prod
    role: source
    client_id: svc@123.iam.panserviceaccount.com
    client_secret: s3cret
    tsg_id: "123"
  - name: lab
    tsg_id: "456"
    api_url: https://api.lab.example
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.Listen)
	assert.Equal(t, models.StrategyOverwrite, c.Strategy())
	assert.Equal(t, 3*time.Second, c.CancelGrace)
	require.Len(t, c.Tenants, 2)

	tenants := c.TenantModels()
	assert.Equal(t, "source", tenants[0].Role)
	assert.Equal(t, DefaultAuthURL, tenants[0].AuthURL)
	assert.Equal(t, DefaultAPIURL, tenants[0].APIURL)
	assert.Equal(t, "destination", tenants[1].Role)
	assert.Equal(t, "https://api.lab.example", tenants[1].APIURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad strategy", "default_strategy: merge\n"},
		{"tenant without tsg", "tenants:\n  - name: x\n"},
		{"tenant without name", "tenants:\n  - tsg_id: \"1\"\n"},
		{"not yaml", "listen: [unclosed\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
