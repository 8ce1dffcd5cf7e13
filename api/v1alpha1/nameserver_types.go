package v1alpha1

import (
	"errors"
	"strings"
)

// HostedZonePropertyName is the key of the hosted zone id in the nameserver resource properties
const HostedZonePropertyName = "HostedZone"

// NameserverProperties describes the registered domain whose nameservers
// should follow a hosted zone's delegation set
type NameserverProperties struct {
	// HostedZone is the Route53 hosted zone id; its name is the registered domain
	HostedZone string `mapstructure:"HostedZone"`
}

// Validate checks that the hosted zone id is set
func (n *NameserverProperties) Validate() error {
	if strings.TrimSpace(n.HostedZone) == "" {
		return errors.New(HostedZonePropertyName + " is required")
	}
	return nil
}
