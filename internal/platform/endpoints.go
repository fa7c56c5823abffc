package platform

import (
	"errors"
	"fmt"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// ErrUnsupportedType is returned when a configuration type has no endpoint.
var ErrUnsupportedType = errors.New("unsupported configuration type")

// Endpoint describes how records of one configuration type are listed.
type Endpoint struct {
	Path string
	// Positions lists rulebase positions to query; empty for non-rule types.
	Positions []string
}

const (
	setupPrefix      = "/config/setup/v1/"
	objectsPrefix    = "/config/objects/v1/"
	securityPrefix   = "/config/security/v1/"
	networkPrefix    = "/config/network/v1/"
	deploymentPrefix = "/config/deployment/v1/"

	foldersPath  = setupPrefix + "folders"
	snippetsPath = setupPrefix + "snippets"
)

// endpoints is the registry of list endpoints, one per configuration type.
var endpoints = map[models.ConfigType]Endpoint{
	models.TypeAddress:           {Path: objectsPrefix + "addresses"},
	models.TypeAddressGroup:      {Path: objectsPrefix + "address-groups"},
	models.TypeService:           {Path: objectsPrefix + "services"},
	models.TypeServiceGroup:      {Path: objectsPrefix + "service-groups"},
	models.TypeApplicationGroup:  {Path: objectsPrefix + "application-groups"},
	models.TypeApplicationFilter: {Path: objectsPrefix + "application-filters"},
	models.TypeTag:               {Path: objectsPrefix + "tags"},
	models.TypeSecurityRule:      {Path: securityPrefix + "security-rules", Positions: []string{"pre", "post"}},

	models.TypeAntiSpywareProfile:   {Path: securityPrefix + "anti-spyware-profiles"},
	models.TypeVulnerabilityProfile: {Path: securityPrefix + "vulnerability-protection-profiles"},
	models.TypeURLAccessProfile:     {Path: securityPrefix + "url-access-profiles"},
	models.TypeFileBlockingProfile:  {Path: securityPrefix + "file-blocking-profiles"},
	models.TypeWildfireProfile:      {Path: securityPrefix + "wildfire-anti-virus-profiles"},
	models.TypeDNSSecurityProfile:   {Path: securityPrefix + "dns-security-profiles"},
	models.TypeDecryptionProfile:    {Path: securityPrefix + "decryption-profiles"},
	models.TypeProfileGroup:         {Path: securityPrefix + "profile-groups"},

	models.TypeHIPObject:  {Path: objectsPrefix + "hip-objects"},
	models.TypeHIPProfile: {Path: objectsPrefix + "hip-profiles"},

	models.TypeRemoteNetwork:      {Path: deploymentPrefix + "remote-networks"},
	models.TypeServiceConnection:  {Path: deploymentPrefix + "service-connections"},
	models.TypeIKEGateway:         {Path: networkPrefix + "ike-gateways"},
	models.TypeIPsecTunnel:        {Path: networkPrefix + "ipsec-tunnels"},
	models.TypeIKECryptoProfile:   {Path: networkPrefix + "ike-crypto-profiles"},
	models.TypeIPsecCryptoProfile: {Path: networkPrefix + "ipsec-crypto-profiles"},
}

// EndpointFor returns the list endpoint of t.
func EndpointFor(t models.ConfigType) (Endpoint, error) {
	ep, ok := endpoints[t]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return ep, nil
}

// checkRegistry verifies every known type has an endpoint.
func checkRegistry() error {
	for _, t := range models.AllTypes() {
		if _, err := EndpointFor(t); err != nil {
			return err
		}
	}
	return nil
}
