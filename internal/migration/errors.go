package migration

import (
	"errors"
	"fmt"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

var (
	// ErrCancelled is returned when a run stops because its context was cancelled.
	ErrCancelled = errors.New("operation cancelled")
	// ErrWorkflowBusy is returned when another validation or push holds the workflow lock.
	ErrWorkflowBusy = errors.New("another validation or push is already running")
)

// FetchKind says which destination read a fetch result belongs to.
type FetchKind string

const (
	FetchFolders  FetchKind = "folders"
	FetchSnippets FetchKind = "snippets"
	FetchScoped   FetchKind = "scoped"
	FetchRules    FetchKind = "rules"
)

// FetchError is a failed destination read. It never aborts a build: the scope
// it names is treated as empty.
type FetchError struct {
	Kind  FetchKind
	Type  models.ConfigType
	Scope models.Scope
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", describeFetch(e.Kind, e.Type, e.Scope), e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func describeFetch(kind FetchKind, t models.ConfigType, scope models.Scope) string {
	switch kind {
	case FetchFolders:
		return "folder list"
	case FetchSnippets:
		return "snippet list"
	case FetchRules:
		return "security rules in " + scope.String()
	}
	return t.Label() + " in " + scope.String()
}
