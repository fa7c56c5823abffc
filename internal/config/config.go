package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// TenantConfig represents a pre-configured tenant in the config file.
type TenantConfig struct {
	Name         string `koanf:"name"`
	Role         string `koanf:"role"` // "source" or "destination"
	AuthURL      string `koanf:"auth_url"`
	APIURL       string `koanf:"api_url"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	TSGID        string `koanf:"tsg_id"`
	Insecure     bool   `koanf:"insecure"`
}

// Config holds all configuration (config file + CLI overrides).
type Config struct {
	Listen          string         `koanf:"listen"`
	DefaultStrategy string         `koanf:"default_strategy"`
	CancelGrace     time.Duration  `koanf:"cancel_grace"`
	SystemFolders   []string       `koanf:"system_folders"`
	Tenants         []TenantConfig `koanf:"tenants"`
}

// Default auth and API endpoints of the management plane.
const (
	DefaultAuthURL = "https://auth.apps.paloaltonetworks.com/oauth2/access_token"
	DefaultAPIURL  = "https://api.strata.paloaltonetworks.com"
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"listen":           ":8080",
		"default_strategy": string(models.StrategySkip),
		"cancel_grace":     "10s",
		"system_folders":   []interface{}{"All"},
	}
}

// Load reads defaults, then overlays the YAML file at path if one is given.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if !models.Strategy(c.DefaultStrategy).Valid() {
		return fmt.Errorf("default_strategy %q must be one of skip, overwrite, rename", c.DefaultStrategy)
	}
	if c.CancelGrace <= 0 {
		return fmt.Errorf("cancel_grace must be positive, got %s", c.CancelGrace)
	}
	for i, t := range c.Tenants {
		if t.Name == "" {
			return fmt.Errorf("tenants[%d]: name is required", i)
		}
		if t.TSGID == "" {
			return fmt.Errorf("tenant %s: tsg_id is required", t.Name)
		}
	}
	return nil
}

// Strategy returns the process-wide default strategy.
func (c *Config) Strategy() models.Strategy {
	return models.Strategy(c.DefaultStrategy)
}

// TenantModels converts the configured tenants, applying endpoint and role defaults.
func (c *Config) TenantModels() []*models.Tenant {
	out := make([]*models.Tenant, 0, len(c.Tenants))
	for _, tc := range c.Tenants {
		t := &models.Tenant{
			Name:         tc.Name,
			Role:         tc.Role,
			AuthURL:      tc.AuthURL,
			APIURL:       tc.APIURL,
			ClientID:     tc.ClientID,
			ClientSecret: tc.ClientSecret,
			TSGID:        tc.TSGID,
			Insecure:     tc.Insecure,
		}
		ApplyTenantDefaults(t)
		out = append(out, t)
	}
	return out
}

// ApplyTenantDefaults fills in endpoints and role when left empty.
func ApplyTenantDefaults(t *models.Tenant) {
	if t.AuthURL == "" {
		t.AuthURL = DefaultAuthURL
	}
	if t.APIURL == "" {
		t.APIURL = DefaultAPIURL
	}
	if t.Role == "" {
		t.Role = "destination"
	}
}
