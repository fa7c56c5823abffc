package platform

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// SCM lists destination state for the validation engine.
type SCM struct {
	client *Client
}

// NewSCM wraps a client. It fails when the endpoint registry does not cover
// every configuration type, so a missing mapping never degrades into a silent no-op.
func NewSCM(client *Client) (*SCM, error) {
	if err := checkRegistry(); err != nil {
		return nil, err
	}
	return &SCM{client: client}, nil
}

// ListFolders returns every folder on the tenant.
func (s *SCM) ListFolders(ctx context.Context) ([]models.Resource, error) {
	return s.client.GetAll(ctx, foldersPath, nil)
}

// ListSnippets returns every snippet on the tenant.
func (s *SCM) ListSnippets(ctx context.Context) ([]models.Resource, error) {
	return s.client.GetAll(ctx, snippetsPath, nil)
}

// List returns records of type t scoped to a folder or a snippet. Security
// rules are listed for every rulebase position and concatenated.
func (s *SCM) List(ctx context.Context, t models.ConfigType, scope models.Scope) ([]models.Resource, error) {
	ep, err := EndpointFor(t)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	switch scope.Kind {
	case models.ScopeFolder:
		params.Set("folder", scope.Name)
	case models.ScopeSnippet:
		params.Set("snippet", scope.Name)
	default:
		return nil, fmt.Errorf("invalid scope kind %q", scope.Kind)
	}

	if len(ep.Positions) == 0 {
		return s.client.GetAll(ctx, ep.Path, params)
	}

	var all []models.Resource
	for _, pos := range ep.Positions {
		params.Set("position", pos)
		records, err := s.client.GetAll(ctx, ep.Path, params)
		if err != nil {
			return nil, fmt.Errorf("%s position: %w", pos, err)
		}
		all = append(all, records...)
	}
	return all, nil
}
