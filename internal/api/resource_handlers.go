package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

type typeInfo struct {
	Type     models.ConfigType `json:"type"`
	Label    string            `json:"label"`
	Category models.Category   `json:"category"`
}

// ListConfigTypes returns every configuration type the engine understands.
func (s *Server) ListConfigTypes(w http.ResponseWriter, r *http.Request) {
	types := models.AllTypes()
	out := make([]typeInfo, 0, len(types))
	for _, t := range types {
		out = append(out, typeInfo{Type: t, Label: t.Label(), Category: t.Category()})
	}
	writeJSON(w, http.StatusOK, out)
}

// ListResourcesOfType lists records of one type on a tenant, scoped by the
// folder or snippet query parameter.
func (s *Server) ListResourcesOfType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t := models.ConfigType(chi.URLParam(r, "type"))
	tenant := s.Tenants.Get(id)
	if tenant == nil {
		writeError(w, http.StatusNotFound, "tenant not found")
		return
	}
	if !t.Valid() {
		writeError(w, http.StatusBadRequest, "unknown configuration type: "+string(t))
		return
	}

	var scope models.Scope
	switch {
	case r.URL.Query().Get("folder") != "":
		scope = models.Scope{Kind: models.ScopeFolder, Name: r.URL.Query().Get("folder")}
	case r.URL.Query().Get("snippet") != "":
		scope = models.Scope{Kind: models.ScopeSnippet, Name: r.URL.Query().Get("snippet")}
	default:
		writeError(w, http.StatusBadRequest, "folder or snippet is required")
		return
	}

	api, err := s.NewAPI(tenant)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resources, err := api.List(r.Context(), t, scope)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	// Ensure we return [] not null for empty results
	if resources == nil {
		resources = []models.Resource{}
	}
	writeJSON(w, http.StatusOK, resources)
}
