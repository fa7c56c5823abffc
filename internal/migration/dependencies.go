package migration

import (
	"fmt"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// refField is a field of a record that names other records.
type refField struct {
	Path  string
	Types []models.ConfigType
}

var (
	addressTypes     = []models.ConfigType{models.TypeAddress, models.TypeAddressGroup}
	serviceTypes     = []models.ConfigType{models.TypeService, models.TypeServiceGroup}
	applicationTypes = []models.ConfigType{models.TypeApplicationGroup, models.TypeApplicationFilter}
)

// references maps each type to its reference fields. Acceptable types are
// tried in order.
var references = map[models.ConfigType][]refField{
	models.TypeAddressGroup: {
		{Path: "static", Types: addressTypes},
	},
	models.TypeServiceGroup: {
		{Path: "members", Types: serviceTypes},
	},
	models.TypeApplicationGroup: {
		{Path: "members", Types: []models.ConfigType{models.TypeApplicationFilter, models.TypeApplicationGroup}},
	},
	models.TypeSecurityRule: {
		{Path: "source", Types: addressTypes},
		{Path: "destination", Types: addressTypes},
		{Path: "service", Types: serviceTypes},
		{Path: "application", Types: applicationTypes},
		{Path: "tag", Types: []models.ConfigType{models.TypeTag}},
		{Path: "source_hip", Types: []models.ConfigType{models.TypeHIPObject, models.TypeHIPProfile}},
		{Path: "destination_hip", Types: []models.ConfigType{models.TypeHIPObject, models.TypeHIPProfile}},
		{Path: "profile_setting.group", Types: []models.ConfigType{models.TypeProfileGroup}},
	},
	models.TypeProfileGroup: {
		{Path: "spyware", Types: []models.ConfigType{models.TypeAntiSpywareProfile}},
		{Path: "vulnerability", Types: []models.ConfigType{models.TypeVulnerabilityProfile}},
		{Path: "url_filtering", Types: []models.ConfigType{models.TypeURLAccessProfile}},
		{Path: "file_blocking", Types: []models.ConfigType{models.TypeFileBlockingProfile}},
		{Path: "virus_and_wildfire_analysis", Types: []models.ConfigType{models.TypeWildfireProfile}},
		{Path: "dns_security", Types: []models.ConfigType{models.TypeDNSSecurityProfile}},
	},
	models.TypeIKEGateway: {
		{Path: "protocol.ikev1.ike_crypto_profile", Types: []models.ConfigType{models.TypeIKECryptoProfile}},
		{Path: "protocol.ikev2.ike_crypto_profile", Types: []models.ConfigType{models.TypeIKECryptoProfile}},
	},
	models.TypeIPsecTunnel: {
		{Path: "auto_key.ike_gateway", Types: []models.ConfigType{models.TypeIKEGateway}},
		{Path: "auto_key.ipsec_crypto_profile", Types: []models.ConfigType{models.TypeIPsecCryptoProfile}},
	},
	models.TypeRemoteNetwork: {
		{Path: "ipsec_tunnel", Types: []models.ConfigType{models.TypeIPsecTunnel}},
	},
	models.TypeServiceConnection: {
		{Path: "ipsec_tunnel", Types: []models.ConfigType{models.TypeIPsecTunnel}},
	},
}

// sentinels are reference values that never name a record.
var sentinels = map[string]bool{
	"any":                 true,
	"application-default": true,
}

// fieldsReferencing returns the rule fields that can name a record of type t.
func fieldsReferencing(owner, t models.ConfigType) []string {
	var out []string
	for _, f := range references[owner] {
		for _, ft := range f.Types {
			if ft == t {
				out = append(out, f.Path)
				break
			}
		}
	}
	return out
}

type typedName struct {
	Type models.ConfigType
	Name string
}

// DependencyResolver finds references of selected items that the selection
// does not satisfy but the pulled configuration does.
type DependencyResolver struct {
	full     *models.ConfigSet
	res      *Resolution
	selected map[typedName][]models.Destination
}

// NewDependencyResolver indexes the selected items of res. full is the
// originally pulled configuration; it may be nil.
func NewDependencyResolver(full *models.ConfigSet, res *Resolution) *DependencyResolver {
	if full == nil {
		full = &models.ConfigSet{}
	}
	d := &DependencyResolver{full: full, res: res, selected: make(map[typedName][]models.Destination)}
	for _, e := range res.entries {
		k := typedName{Type: e.Key.Type, Name: e.Item.ItemName()}
		d.selected[k] = append(d.selected[k], e.Resolved.Destination)
	}
	return d
}

// FindMissing returns the unselected records item references, plus warnings
// for references found nowhere. Only one level of references is followed.
func (d *DependencyResolver) FindMissing(key models.ItemKey, item models.Item, resolved models.ResolvedItem) ([]models.MissingDependency, []string) {
	fields := references[key.Type]
	if len(fields) == 0 {
		return nil, nil
	}
	payload := d.payload(key, item)
	if payload == nil {
		return nil, nil
	}

	var deps []models.MissingDependency
	var warnings []string
	for _, f := range fields {
		for _, name := range stringValues(payload, f.Path) {
			if sentinels[name] || d.satisfied(name, f.Types, resolved) {
				continue
			}
			dep, ok := d.locate(key, name, f.Types)
			if !ok {
				warnings = append(warnings, fmt.Sprintf(
					"%s '%s' references '%s' via %s, which is neither selected nor in the pulled configuration; it must already exist at the destination",
					key.Type.Label(), key.Name, name, f.Path))
				continue
			}
			dep.RequiredByName = key.Name
			dep.RequiredByType = key.Type
			dep.Field = f.Path
			dep.TargetDestination = resolved.Destination
			deps = append(deps, dep)
		}
	}
	return deps, warnings
}

// satisfied reports whether a selected item of an acceptable type carries
// name. In create_duplicates mode it must also land at the same destination.
func (d *DependencyResolver) satisfied(name string, types []models.ConfigType, resolved models.ResolvedItem) bool {
	for _, t := range types {
		for _, dest := range d.selected[typedName{Type: t, Name: name}] {
			if resolved.DependencyMode != models.DependencyDuplicates {
				return true
			}
			if dest.Kind == resolved.Kind && dest.Name == resolved.Name {
				return true
			}
		}
	}
	return false
}

// locate searches the pulled configuration, same container first.
func (d *DependencyResolver) locate(key models.ItemKey, name string, types []models.ConfigType) (models.MissingDependency, bool) {
	var home *models.Container
	if ref, ok := d.res.Parent(key); ok {
		home = d.full.Find(ref.Kind, ref.Container.SourceName())
		if dep, ok := findIn(ref.Kind, home, name, types); ok {
			return dep, true
		}
	} else if dep, ok := d.findInfrastructure(name, types); ok {
		return dep, true
	}

	for _, ref := range d.full.Containers() {
		if ref.Container == home {
			continue
		}
		if dep, ok := findIn(ref.Kind, ref.Container, name, types); ok {
			return dep, true
		}
	}
	return d.findInfrastructure(name, types)
}

func findIn(kind models.ContainerKind, c *models.Container, name string, types []models.ConfigType) (models.MissingDependency, bool) {
	if c == nil {
		return models.MissingDependency{}, false
	}
	for _, t := range types {
		for _, it := range c.Items(t) {
			if it.ItemName() == name {
				return models.MissingDependency{
					ReferencedName:  name,
					ReferencedType:  t,
					SourceKind:      kind,
					SourceContainer: c.Name,
					Record:          it.Payload,
				}, true
			}
		}
	}
	return models.MissingDependency{}, false
}

func (d *DependencyResolver) findInfrastructure(name string, types []models.ConfigType) (models.MissingDependency, bool) {
	for _, t := range types {
		for _, it := range d.full.Infrastructure[t] {
			if it.ItemName() == name {
				return models.MissingDependency{
					ReferencedName: name,
					ReferencedType: t,
					SourceKind:     models.SourceInfrastructure,
					Record:         it.Payload,
				}, true
			}
		}
	}
	return models.MissingDependency{}, false
}

// payload returns the record to scan. Selections may omit payloads, in which
// case the pulled copy of the item is used.
func (d *DependencyResolver) payload(key models.ItemKey, item models.Item) models.Resource {
	if len(item.Payload) > 0 {
		return item.Payload
	}
	if ref, ok := d.res.Parent(key); ok {
		c := d.full.Find(ref.Kind, ref.Container.SourceName())
		if c != nil {
			for _, it := range c.Items(key.Type) {
				if it.ItemName() == key.Name {
					return it.Payload
				}
			}
		}
		return nil
	}
	for _, it := range d.full.Infrastructure[key.Type] {
		if it.ItemName() == key.Name {
			return it.Payload
		}
	}
	return nil
}
