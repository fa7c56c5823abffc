package migration

import (
	"sort"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// Source is where an item was pulled from.
type Source struct {
	Kind models.ContainerKind
	// Name is the container's name at pull time. For infrastructure it is the
	// fixed folder the record lives in.
	Name string
}

func (s Source) home() models.Destination {
	if s.Kind == models.SourceSnippet {
		return models.Destination{Kind: models.DestSnippet, Name: s.Name}
	}
	return models.Destination{Kind: models.DestFolder, Name: s.Name}
}

// Resolve walks an override chain, nearest first, and returns the item's
// effective destination and strategy. Location and strategy are inherited
// independently: the first entry that sets each one wins, falling back to the
// item's source location and to def.
func Resolve(name string, chain []*models.DestinationSettings, src Source, def models.Strategy) models.ResolvedItem {
	r := models.ResolvedItem{
		Destination:    src.home(),
		LookupName:     name,
		TargetName:     name,
		RenameName:     models.CopyName(name),
		DependencyMode: models.DependencyInclude,
	}
	strategy := def

	locationSet, strategySet, modeSet := false, false, false
	for _, s := range chain {
		if s == nil {
			continue
		}
		if !locationSet && s.SetsLocation() {
			r.Destination = locationFor(s, src)
			locationSet = true
		}
		if !strategySet && s.SetsStrategy() {
			strategy = s.Strategy
			strategySet = true
		}
		if !modeSet && s.DependencyMode != "" {
			r.DependencyMode = s.DependencyMode
			modeSet = true
		}
	}
	r.Strategy = strategy

	// Only the item itself can pick its own name.
	if len(chain) > 0 && chain[0] != nil && chain[0].TargetName != "" {
		custom := chain[0].TargetName
		r.TargetName = custom
		r.RenameName = custom
		if r.Strategy != models.StrategyRename {
			r.LookupName = custom
		}
	}
	return r
}

func locationFor(s *models.DestinationSettings, src Source) models.Destination {
	switch s.LocationKind {
	case models.LocationFolder:
		return models.Destination{Kind: models.DestFolder, Name: s.LocationName}
	case models.LocationExistingSnippet:
		return models.Destination{Kind: models.DestSnippet, Name: s.LocationName}
	case models.LocationNewSnippet, models.LocationRenameSnippet:
		name := s.LocationName
		if name == "" {
			name = models.CopyName(src.Name)
		}
		return models.Destination{Kind: models.DestNewSnippet, Name: name, IsNewSnippet: true}
	}
	return src.home()
}

// resolvedEntry is one leaf of the resolved selection.
type resolvedEntry struct {
	Key      models.ItemKey
	Item     models.Item
	Source   Source
	Resolved models.ResolvedItem
}

type containerEntry struct {
	Ref      models.ContainerRef
	Override *models.DestinationSettings
	Dest     models.Destination
}

// Resolution is the resolved view of a selection. It is built once per run
// and never mutates the selection it was built from.
type Resolution struct {
	DefaultStrategy models.Strategy

	entries    []resolvedEntry
	index      map[models.ItemKey]int
	parents    map[models.ItemKey]models.ContainerKey
	containers map[models.ContainerKey]*containerEntry
	order      []models.ContainerKey
}

// ResolveSelection resolves every item in sel. The strategy default is taken
// from the selection, then from processDefault, then skip.
func ResolveSelection(sel *models.Selection, processDefault models.Strategy) *Resolution {
	def := sel.DefaultStrategy
	if !def.Valid() {
		def = processDefault
	}
	if !def.Valid() {
		def = models.StrategySkip
	}

	res := &Resolution{
		DefaultStrategy: def,
		index:           make(map[models.ItemKey]int),
		parents:         make(map[models.ItemKey]models.ContainerKey),
		containers:      make(map[models.ContainerKey]*containerEntry),
	}

	for _, ref := range sel.Containers() {
		c := ref.Container
		ck := models.ContainerKey{Kind: ref.Kind, Name: c.Name}
		src := Source{Kind: ref.Kind, Name: c.SourceName()}
		override := c.EffectiveOverride()

		ce := &containerEntry{Ref: ref, Override: override, Dest: src.home()}
		if override.SetsLocation() {
			ce.Dest = locationFor(override, src)
		}
		if _, dup := res.containers[ck]; !dup {
			res.order = append(res.order, ck)
		}
		res.containers[ck] = ce

		c.Walk(func(t models.ConfigType, items []models.Item) {
			for _, item := range items {
				key := models.KeyFor(ref.Kind, c, t, item)
				res.parents[key] = ck
				res.add(key, item, src)
			}
		})
	}

	for _, t := range sel.InfrastructureTypes() {
		for _, item := range sel.Infrastructure[t] {
			key := models.KeyFor(models.SourceInfrastructure, nil, t, item)
			res.add(key, item, Source{Kind: models.SourceInfrastructure, Name: infrastructureFolder(t, item)})
		}
	}
	return res
}

func infrastructureFolder(t models.ConfigType, item models.Item) string {
	if f, ok := item.Payload["folder"].(string); ok && f != "" {
		return f
	}
	return models.InfrastructureFolder(t)
}

func (r *Resolution) add(key models.ItemKey, item models.Item, src Source) {
	e := resolvedEntry{Key: key, Item: item, Source: src}
	e.Resolved = Resolve(item.ItemName(), r.chain(key, item), src, r.DefaultStrategy)
	if i, ok := r.index[key]; ok {
		r.entries[i] = e
		return
	}
	r.index[key] = len(r.entries)
	r.entries = append(r.entries, e)
}

// chain returns the overrides that apply to an item, nearest first.
func (r *Resolution) chain(key models.ItemKey, item models.Item) []*models.DestinationSettings {
	chain := []*models.DestinationSettings{item.DestinationOverride}
	if ck, ok := r.parents[key]; ok {
		if ce := r.containers[ck]; ce != nil {
			chain = append(chain, ce.Override)
		}
	}
	return chain
}

// Item returns the resolution of the item with the given key.
func (r *Resolution) Item(key models.ItemKey) (models.ResolvedItem, bool) {
	i, ok := r.index[key]
	if !ok {
		return models.ResolvedItem{}, false
	}
	return r.entries[i].Resolved, true
}

// Parent returns the container that holds key. Infrastructure items have none.
func (r *Resolution) Parent(key models.ItemKey) (models.ContainerRef, bool) {
	ck, ok := r.parents[key]
	if !ok {
		return models.ContainerRef{}, false
	}
	return r.containers[ck].Ref, true
}

// ContainerDestination returns where a container's inheriting children land.
func (r *Resolution) ContainerDestination(ck models.ContainerKey) (models.Destination, bool) {
	ce, ok := r.containers[ck]
	if !ok {
		return models.Destination{}, false
	}
	return ce.Dest, true
}

// Len returns the number of resolved items.
func (r *Resolution) Len() int {
	return len(r.entries)
}

// NewSnippets maps each snippet name that the push would create at container
// level to the containers claiming it.
func (r *Resolution) NewSnippets() map[string][]string {
	out := make(map[string][]string)
	for _, ck := range r.order {
		ce := r.containers[ck]
		if ce.Dest.Kind != models.DestNewSnippet {
			continue
		}
		out[ce.Dest.Name] = append(out[ce.Dest.Name], string(ck.Kind)+" '"+ck.Name+"'")
	}
	for _, claimants := range out {
		sort.Strings(claimants)
	}
	return out
}
