package models

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Tenant represents a user-configured management-plane tenant reachable
// with OAuth2 client credentials.
type Tenant struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Role         string     `json:"role"` // "source" or "destination"
	AuthURL      string     `json:"auth_url"`
	APIURL       string     `json:"api_url"`
	ClientID     string     `json:"client_id"`
	ClientSecret string     `json:"client_secret,omitempty"`
	TSGID        string     `json:"tsg_id"`
	Insecure     bool       `json:"insecure"` // skip TLS verification
	AuthStatus   string     `json:"auth_status"`
	AuthError    string     `json:"auth_error,omitempty"`
	LastChecked  *time.Time `json:"last_checked,omitempty"`
}

// Scope returns the OAuth2 scope that selects this tenant's service group.
func (t *Tenant) Scope() string {
	return "tsg_id:" + t.TSGID
}

// APIBase returns the API base URL without a trailing slash.
func (t *Tenant) APIBase() string {
	return strings.TrimRight(t.APIURL, "/")
}

// MaskedSecret returns a fixed mask for non-empty secrets.
func (t *Tenant) MaskedSecret() string {
	if t.ClientSecret == "" {
		return ""
	}
	return "••••••••"
}

// Redacted returns a copy safe to hand back to API callers.
func (t *Tenant) Redacted() Tenant {
	c := *t
	c.ClientSecret = t.MaskedSecret()
	return c
}

// TenantStore is an in-memory thread-safe store for tenants.
type TenantStore struct {
	mu      sync.RWMutex
	tenants map[string]*Tenant
}

// NewTenantStore creates an empty tenant store.
func NewTenantStore() *TenantStore {
	return &TenantStore{tenants: make(map[string]*Tenant)}
}

// Create adds a new tenant, assigning it a UUID.
func (s *TenantStore) Create(t *Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.New().String()
	if t.AuthStatus == "" {
		t.AuthStatus = "unknown"
	}
	s.tenants[t.ID] = t
}

// Get returns a tenant by ID, or nil if not found.
func (s *TenantStore) Get(id string) *Tenant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tenants[id]
}

// FindByName returns the first tenant with the given name, or nil.
func (s *TenantStore) FindByName(name string) *Tenant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tenants {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// List returns all tenants sorted by name.
func (s *TenantStore) List() []*Tenant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Update replaces an existing tenant's settings. An empty secret keeps the stored one.
func (s *TenantStore) Update(t *Tenant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.tenants[t.ID]
	if !ok {
		return false
	}
	if t.ClientSecret == "" {
		t.ClientSecret = old.ClientSecret
	}
	s.tenants[t.ID] = t
	return true
}

// Delete removes a tenant by ID.
func (s *TenantStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[id]; !ok {
		return false
	}
	delete(s.tenants, id)
	return true
}

// SetAuth records the outcome of the latest credential check.
func (s *TenantStore) SetAuth(id, status, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok {
		return
	}
	now := time.Now()
	t.AuthStatus = status
	t.AuthError = errMsg
	t.LastChecked = &now
}
