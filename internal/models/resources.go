package models

import (
	"sort"
	"strings"
)

// Resource is an opaque configuration record as returned by the management plane.
// It is forwarded verbatim to the execution stage.
type Resource map[string]interface{}

// Name returns the record's name, falling back to its id (infrastructure records
// are sometimes only identified by id).
func (r Resource) Name() string {
	if n, ok := r["name"].(string); ok && n != "" {
		return n
	}
	if id, ok := r["id"].(string); ok {
		return id
	}
	return ""
}

// ConfigType is the closed set of configuration types the engine understands.
type ConfigType string

const (
	TypeAddress           ConfigType = "address"
	TypeAddressGroup      ConfigType = "address_group"
	TypeService           ConfigType = "service"
	TypeServiceGroup      ConfigType = "service_group"
	TypeApplicationGroup  ConfigType = "application_group"
	TypeApplicationFilter ConfigType = "application_filter"
	TypeTag               ConfigType = "tag"
	TypeSecurityRule      ConfigType = "security_rule"

	TypeAntiSpywareProfile   ConfigType = "anti_spyware_profile"
	TypeVulnerabilityProfile ConfigType = "vulnerability_protection_profile"
	TypeURLAccessProfile     ConfigType = "url_access_profile"
	TypeFileBlockingProfile  ConfigType = "file_blocking_profile"
	TypeWildfireProfile      ConfigType = "wildfire_antivirus_profile"
	TypeDNSSecurityProfile   ConfigType = "dns_security_profile"
	TypeDecryptionProfile    ConfigType = "decryption_profile"
	TypeProfileGroup         ConfigType = "profile_group"

	TypeHIPObject  ConfigType = "hip_object"
	TypeHIPProfile ConfigType = "hip_profile"

	TypeRemoteNetwork      ConfigType = "remote_network"
	TypeServiceConnection  ConfigType = "service_connection"
	TypeIKEGateway         ConfigType = "ike_gateway"
	TypeIPsecTunnel        ConfigType = "ipsec_tunnel"
	TypeIKECryptoProfile   ConfigType = "ike_crypto_profile"
	TypeIPsecCryptoProfile ConfigType = "ipsec_crypto_profile"
)

// Category groups configuration types the way the selection tree does.
type Category string

const (
	CategoryObjects        Category = "objects"
	CategoryProfiles       Category = "profiles"
	CategoryHIP            Category = "hip"
	CategorySecurityRules  Category = "security_rules"
	CategoryInfrastructure Category = "infrastructure"
)

var typeCategories = map[ConfigType]Category{
	TypeAddress:           CategoryObjects,
	TypeAddressGroup:      CategoryObjects,
	TypeService:           CategoryObjects,
	TypeServiceGroup:      CategoryObjects,
	TypeApplicationGroup:  CategoryObjects,
	TypeApplicationFilter: CategoryObjects,
	TypeTag:               CategoryObjects,
	TypeSecurityRule:      CategorySecurityRules,

	TypeAntiSpywareProfile:   CategoryProfiles,
	TypeVulnerabilityProfile: CategoryProfiles,
	TypeURLAccessProfile:     CategoryProfiles,
	TypeFileBlockingProfile:  CategoryProfiles,
	TypeWildfireProfile:      CategoryProfiles,
	TypeDNSSecurityProfile:   CategoryProfiles,
	TypeDecryptionProfile:    CategoryProfiles,
	TypeProfileGroup:         CategoryProfiles,

	TypeHIPObject:  CategoryHIP,
	TypeHIPProfile: CategoryHIP,

	TypeRemoteNetwork:      CategoryInfrastructure,
	TypeServiceConnection:  CategoryInfrastructure,
	TypeIKEGateway:         CategoryInfrastructure,
	TypeIPsecTunnel:        CategoryInfrastructure,
	TypeIKECryptoProfile:   CategoryInfrastructure,
	TypeIPsecCryptoProfile: CategoryInfrastructure,
}

// AllTypes returns every known configuration type in a stable order.
func AllTypes() []ConfigType {
	types := make([]ConfigType, 0, len(typeCategories))
	for t := range typeCategories {
		types = append(types, t)
	}
	SortTypes(types)
	return types
}

// SortTypes sorts types in place by name.
func SortTypes(types []ConfigType) {
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
}

// Valid reports whether t is a known configuration type.
func (t ConfigType) Valid() bool {
	_, ok := typeCategories[t]
	return ok
}

// Category returns the tree category t belongs to, or "" for unknown types.
func (t ConfigType) Category() Category {
	return typeCategories[t]
}

// Label returns a human-readable form of the type ("address_group" → "address group").
func (t ConfigType) Label() string {
	return strings.ReplaceAll(string(t), "_", " ")
}

// Infrastructure lives in fixed folders on the tenant.
const (
	FolderRemoteNetworks     = "Remote Networks"
	FolderServiceConnections = "Service Connections"
)

// InfrastructureFolder returns the folder an infrastructure record of type t
// lives in when the pulled record does not say otherwise.
func InfrastructureFolder(t ConfigType) string {
	if t == TypeServiceConnection {
		return FolderServiceConnections
	}
	return FolderRemoteNetworks
}
