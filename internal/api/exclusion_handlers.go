package api

import (
	"net/http"

	"github.com/rflorenc/scm-migration-workbench/internal/migration"
)

// GetExclusions returns the names the engine always leaves alone: predefined
// profiles that are force-skipped and folders kept out of the rule index.
func (s *Server) GetExclusions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"predefined_profiles": migration.PredefinedProfiles(),
		"system_folders":      s.Config.SystemFolders,
	})
}
