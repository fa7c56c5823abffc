package models

// Item is a single configuration item in a selection or a pulled configuration.
type Item struct {
	Name                string               `json:"name" yaml:"name"`
	DestinationOverride *DestinationSettings `json:"destination_override,omitempty" yaml:"destination_override,omitempty"`
	Payload             Resource             `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// ItemName returns the item's name, falling back to the payload's name or id.
func (i Item) ItemName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Payload.Name()
}

// ContainerKind says whether a container is a folder or a snippet. Infrastructure
// items are not held by a container and use SourceInfrastructure.
type ContainerKind string

const (
	SourceFolder         ContainerKind = "folder"
	SourceSnippet        ContainerKind = "snippet"
	SourceInfrastructure ContainerKind = "infrastructure"
)

// Container is a folder or snippet with its items grouped by category.
type Container struct {
	Name string `json:"name" yaml:"name"`
	// OriginalName is set once the user edits Name; the pulled configuration
	// still knows the container by this name.
	OriginalName        string                `json:"original_name,omitempty" yaml:"original_name,omitempty"`
	Objects             map[ConfigType][]Item `json:"objects,omitempty" yaml:"objects,omitempty"`
	Profiles            map[ConfigType][]Item `json:"profiles,omitempty" yaml:"profiles,omitempty"`
	HIP                 map[ConfigType][]Item `json:"hip,omitempty" yaml:"hip,omitempty"`
	SecurityRules       []Item                `json:"security_rules,omitempty" yaml:"security_rules,omitempty"`
	DestinationOverride *DestinationSettings  `json:"destination_override,omitempty" yaml:"destination_override,omitempty"`
}

// SourceName is the name the container had when it was pulled.
func (c *Container) SourceName() string {
	if c.OriginalName != "" {
		return c.OriginalName
	}
	return c.Name
}

// Renamed reports whether the user edited the container's name.
func (c *Container) Renamed() bool {
	return c.OriginalName != "" && c.OriginalName != c.Name
}

// Rename applies a user edit of the container name. Moving away from the
// original name switches the container to rename_snippet; moving back to it
// drops the inferred override again.
func (c *Container) Rename(newName string) {
	if c.OriginalName == "" {
		c.OriginalName = c.Name
	}
	c.Name = newName

	if c.Renamed() {
		if c.DestinationOverride == nil {
			c.DestinationOverride = &DestinationSettings{}
		}
		c.DestinationOverride.LocationKind = LocationRenameSnippet
		c.DestinationOverride.LocationName = newName
		return
	}
	if c.DestinationOverride != nil && c.DestinationOverride.LocationKind == LocationRenameSnippet {
		c.DestinationOverride.LocationKind = LocationInherit
		c.DestinationOverride.LocationName = ""
	}
}

// EffectiveOverride returns the container override with the rename inference
// applied, without modifying the container.
func (c *Container) EffectiveOverride() *DestinationSettings {
	if !c.Renamed() {
		return c.DestinationOverride
	}
	s := DestinationSettings{}
	if c.DestinationOverride != nil {
		s = *c.DestinationOverride
	}
	s.LocationKind = LocationRenameSnippet
	s.LocationName = c.Name
	return &s
}

// group returns the category map that holds items of type t.
func (c *Container) group(t ConfigType) map[ConfigType][]Item {
	switch t.Category() {
	case CategoryObjects:
		return c.Objects
	case CategoryProfiles:
		return c.Profiles
	case CategoryHIP:
		return c.HIP
	}
	return nil
}

// Items returns the items of type t.
func (c *Container) Items(t ConfigType) []Item {
	if t == TypeSecurityRule {
		return c.SecurityRules
	}
	return c.group(t)[t]
}

// AddItem appends an item of type t to the matching category.
func (c *Container) AddItem(t ConfigType, item Item) {
	if t == TypeSecurityRule {
		c.SecurityRules = append(c.SecurityRules, item)
		return
	}
	var m *map[ConfigType][]Item
	switch t.Category() {
	case CategoryObjects:
		m = &c.Objects
	case CategoryProfiles:
		m = &c.Profiles
	case CategoryHIP:
		m = &c.HIP
	default:
		return
	}
	if *m == nil {
		*m = make(map[ConfigType][]Item)
	}
	(*m)[t] = append((*m)[t], item)
}

// Walk visits every non-empty item list in walk order: objects, profiles, HIP,
// then security rules. Within a category types are sorted.
func (c *Container) Walk(fn func(t ConfigType, items []Item)) {
	for _, m := range []map[ConfigType][]Item{c.Objects, c.Profiles, c.HIP} {
		types := make([]ConfigType, 0, len(m))
		for t, items := range m {
			if len(items) > 0 {
				types = append(types, t)
			}
		}
		SortTypes(types)
		for _, t := range types {
			fn(t, m[t])
		}
	}
	if len(c.SecurityRules) > 0 {
		fn(TypeSecurityRule, c.SecurityRules)
	}
}

// Types returns every type present in the container in walk order.
func (c *Container) Types() []ConfigType {
	var out []ConfigType
	c.Walk(func(t ConfigType, _ []Item) { out = append(out, t) })
	return out
}

// Empty reports whether the container holds no items at all.
func (c *Container) Empty() bool {
	return len(c.Types()) == 0
}

// ConfigSet is the per-type shape shared by the selected-items artifact and
// the originally-pulled configuration.
type ConfigSet struct {
	Folders        []Container           `json:"folders,omitempty" yaml:"folders,omitempty"`
	Snippets       []Container           `json:"snippets,omitempty" yaml:"snippets,omitempty"`
	Infrastructure map[ConfigType][]Item `json:"infrastructure,omitempty" yaml:"infrastructure,omitempty"`
}

// InfrastructureTypes returns the infrastructure types present, sorted.
func (s *ConfigSet) InfrastructureTypes() []ConfigType {
	types := make([]ConfigType, 0, len(s.Infrastructure))
	for t, items := range s.Infrastructure {
		if len(items) > 0 {
			types = append(types, t)
		}
	}
	SortTypes(types)
	return types
}

// ContainerRef points at a container inside a ConfigSet.
type ContainerRef struct {
	Kind      ContainerKind
	Container *Container
}

// Containers returns folders then snippets, in artifact order.
func (s *ConfigSet) Containers() []ContainerRef {
	refs := make([]ContainerRef, 0, len(s.Folders)+len(s.Snippets))
	for i := range s.Folders {
		refs = append(refs, ContainerRef{Kind: SourceFolder, Container: &s.Folders[i]})
	}
	for i := range s.Snippets {
		refs = append(refs, ContainerRef{Kind: SourceSnippet, Container: &s.Snippets[i]})
	}
	return refs
}

// Find returns the container of the given kind whose source name is name.
func (s *ConfigSet) Find(kind ContainerKind, name string) *Container {
	for _, ref := range s.Containers() {
		if ref.Kind == kind && ref.Container.SourceName() == name {
			return ref.Container
		}
	}
	return nil
}

// Selection is the user-selected subset of a pulled configuration plus the
// process-wide default strategy.
type Selection struct {
	ConfigSet       `yaml:",inline"`
	DefaultStrategy Strategy `json:"default_strategy,omitempty" yaml:"default_strategy,omitempty"`
}

// ItemKey identifies a leaf item by where it was selected from.
type ItemKey struct {
	SourceKind ContainerKind `json:"source_kind"`
	Container  string        `json:"container"`
	Type       ConfigType    `json:"type"`
	Name       string        `json:"name"`
}

// ContainerKey identifies a container by kind and current name.
type ContainerKey struct {
	Kind ContainerKind
	Name string
}

// KeyFor builds the key of an item held by container c (nil for infrastructure).
func KeyFor(kind ContainerKind, c *Container, t ConfigType, item Item) ItemKey {
	k := ItemKey{SourceKind: kind, Type: t, Name: item.ItemName()}
	if c != nil {
		k.Container = c.Name
	}
	return k
}
