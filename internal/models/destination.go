package models

import (
	"fmt"
	"unicode/utf8"
)

// LocationKind says where an item or container should land in the destination.
type LocationKind string

const (
	LocationInherit         LocationKind = "inherit"
	LocationFolder          LocationKind = "explicit_folder"
	LocationExistingSnippet LocationKind = "explicit_existing_snippet"
	LocationNewSnippet      LocationKind = "new_snippet"
	LocationRenameSnippet   LocationKind = "rename_snippet"
)

// Strategy is the conflict-handling choice for an item that already exists.
type Strategy string

const (
	StrategySkip      Strategy = "skip"
	StrategyOverwrite Strategy = "overwrite"
	StrategyRename    Strategy = "rename"
)

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategySkip, StrategyOverwrite, StrategyRename:
		return true
	}
	return false
}

// DependencyMode controls how references of items entering a new snippet are satisfied.
type DependencyMode string

const (
	DependencyInclude    DependencyMode = "include_dependencies"
	DependencyDuplicates DependencyMode = "create_duplicates"
)

// DestinationSettings is a user override attached to an item or a container.
// Zero values mean "inherit": an empty LocationKind inherits the location and
// an empty Strategy inherits the strategy, independently of each other.
type DestinationSettings struct {
	LocationKind   LocationKind   `json:"location_kind,omitempty" yaml:"location_kind,omitempty"`
	LocationName   string         `json:"location_name,omitempty" yaml:"location_name,omitempty"`
	TargetName     string         `json:"target_name,omitempty" yaml:"target_name,omitempty"`
	Strategy       Strategy       `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	DependencyMode DependencyMode `json:"dependency_mode,omitempty" yaml:"dependency_mode,omitempty"`
}

// SetsLocation reports whether the settings pin a location.
func (d *DestinationSettings) SetsLocation() bool {
	return d != nil && d.LocationKind != "" && d.LocationKind != LocationInherit
}

// SetsStrategy reports whether the settings pin a strategy.
func (d *DestinationSettings) SetsStrategy() bool {
	return d != nil && d.Strategy != ""
}

const (
	// MaxNameLength is the longest name the destination accepts.
	MaxNameLength = 55
	// CopySuffix is appended to names when renaming.
	CopySuffix = "-copy"
)

// NameLength counts characters, not bytes.
func NameLength(name string) int {
	return utf8.RuneCountInString(name)
}

// CopyName returns name with CopySuffix appended, truncating name so the
// result never exceeds MaxNameLength.
func CopyName(name string) string {
	limit := MaxNameLength - NameLength(CopySuffix)
	if NameLength(name) > limit {
		name = string([]rune(name)[:limit])
	}
	return name + CopySuffix
}

// DestKind is the kind of a resolved destination.
type DestKind string

const (
	DestFolder     DestKind = "folder"
	DestSnippet    DestKind = "snippet"
	DestNewSnippet DestKind = "new_snippet"
)

// Destination is a resolved location plus the strategy that applies there.
type Destination struct {
	Kind         DestKind `json:"dest_type" yaml:"dest_type"`
	Name         string   `json:"name" yaml:"name"`
	IsNewSnippet bool     `json:"is_new_snippet" yaml:"is_new_snippet"`
	Strategy     Strategy `json:"strategy" yaml:"strategy"`
}

// Scope returns the snapshot scope the destination reads from. New snippets have no scope.
func (d Destination) Scope() (Scope, bool) {
	switch d.Kind {
	case DestFolder:
		return Scope{Kind: ScopeFolder, Name: d.Name}, true
	case DestSnippet:
		return Scope{Kind: ScopeSnippet, Name: d.Name}, true
	}
	return Scope{}, false
}

// String renders the destination for action descriptions.
func (d Destination) String() string {
	switch d.Kind {
	case DestSnippet:
		return "snippet '" + d.Name + "'"
	case DestNewSnippet:
		return "new snippet '" + d.Name + "'"
	}
	return "folder '" + d.Name + "'"
}

// Settings converts a resolved destination back into an explicit override.
func (d Destination) Settings() *DestinationSettings {
	s := &DestinationSettings{LocationName: d.Name, Strategy: d.Strategy}
	switch d.Kind {
	case DestFolder:
		s.LocationKind = LocationFolder
	case DestSnippet:
		s.LocationKind = LocationExistingSnippet
	default:
		s.LocationKind = LocationNewSnippet
	}
	return s
}

// ResolvedItem is the outcome of walking an item's override chain.
type ResolvedItem struct {
	Destination
	// LookupName is the name probed in the destination snapshot.
	LookupName string `json:"lookup_name"`
	// TargetName is the name the item will carry after push when nothing collides.
	TargetName string `json:"target_name"`
	// RenameName is used instead of TargetName when the item exists and the
	// strategy is rename.
	RenameName     string         `json:"rename_name"`
	DependencyMode DependencyMode `json:"dependency_mode,omitempty"`
}

// FinalName returns the name the item is pushed under, given whether it
// already exists at its destination.
func (r ResolvedItem) FinalName(exists bool) string {
	if exists && r.Strategy == StrategyRename {
		return r.RenameName
	}
	return r.TargetName
}

// ScopeKind distinguishes folder and snippet namespaces.
type ScopeKind string

const (
	ScopeFolder  ScopeKind = "folder"
	ScopeSnippet ScopeKind = "snippet"
)

// Scope names a folder or snippet on the tenant.
type Scope struct {
	Kind ScopeKind `json:"kind" yaml:"kind"`
	Name string    `json:"name" yaml:"name"`
}

func (s Scope) String() string {
	return string(s.Kind) + " '" + s.Name + "'"
}

// Validate checks the settings for values the resolver cannot honour.
func (d *DestinationSettings) Validate() error {
	if d == nil {
		return nil
	}
	switch d.LocationKind {
	case "", LocationInherit, LocationNewSnippet, LocationRenameSnippet:
	case LocationFolder, LocationExistingSnippet:
		if d.LocationName == "" {
			return fmt.Errorf("%s requires a location name", d.LocationKind)
		}
	default:
		return fmt.Errorf("unknown location kind %q", d.LocationKind)
	}
	if d.Strategy != "" && !d.Strategy.Valid() {
		return fmt.Errorf("unknown strategy %q", d.Strategy)
	}
	switch d.DependencyMode {
	case "", DependencyInclude, DependencyDuplicates:
	default:
		return fmt.Errorf("unknown dependency mode %q", d.DependencyMode)
	}
	return nil
}
