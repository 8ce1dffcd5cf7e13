package v1alpha1

import (
	"fmt"
	"strings"
)

// CertificatePropertyName is the key of the certificate descriptor in the resource properties
const CertificatePropertyName = "Certificate"

// CertificateProperties describes the DNS-validated certificate to reconcile
type CertificateProperties struct {
	// DomainName is the primary domain of the certificate
	DomainName string `mapstructure:"DomainName"`

	// AlternativeNames are added as subject alternative names
	// +optional
	AlternativeNames []string `mapstructure:"AlternativeNames"`

	// HostedZone is the Route53 hosted zone that receives the validation records
	HostedZone string `mapstructure:"HostedZone"`

	// UpdateNameservers copies the hosted zone's delegation set to the registrar
	// after the validation records are written
	// +optional
	UpdateNameservers bool `mapstructure:"UpdateNameservers"`
}

// Validate checks that the fields required for reconciliation are set
func (c *CertificateProperties) Validate() error {
	var missing []string
	if strings.TrimSpace(c.DomainName) == "" {
		missing = append(missing, "DomainName")
	}
	if strings.TrimSpace(c.HostedZone) == "" {
		missing = append(missing, "HostedZone")
	}
	for i, name := range c.AlternativeNames {
		if strings.TrimSpace(name) == "" {
			missing = append(missing, fmt.Sprintf("AlternativeNames[%d]", i))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s.%s is required", CertificatePropertyName, strings.Join(missing, ", "+CertificatePropertyName+"."))
	}
	return nil
}

// DomainNames returns the primary domain followed by the alternative names
func (c *CertificateProperties) DomainNames() []string {
	return append([]string{c.DomainName}, c.AlternativeNames...)
}
