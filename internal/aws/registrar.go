package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53domains"
	"github.com/aws/aws-sdk-go-v2/service/route53domains/types"
)

// RegistrarClient defines the interface for domain registrar operations
type RegistrarClient interface {
	// UpdateDomainNameservers replaces the authoritative nameservers of a registered domain
	UpdateDomainNameservers(ctx context.Context, domainName string, nameservers []string) (operationId string, err error)
}

// SDKRegistrarClient implements RegistrarClient using the Route53 Domains API
type SDKRegistrarClient struct {
	client *route53domains.Client
}

// NewSDKRegistrarClient creates a new registrar client using the provided AWS config.
// Route53 Domains is only served from us-east-1, so the region is pinned.
func NewSDKRegistrarClient(cfg aws.Config) *SDKRegistrarClient {
	return &SDKRegistrarClient{
		client: route53domains.NewFromConfig(cfg, func(o *route53domains.Options) {
			o.Region = "us-east-1"
		}),
	}
}

func (c *SDKRegistrarClient) UpdateDomainNameservers(ctx context.Context, domainName string, nameservers []string) (string, error) {
	input := &route53domains.UpdateDomainNameserversInput{
		DomainName: aws.String(domainName),
	}
	for _, ns := range nameservers {
		input.Nameservers = append(input.Nameservers, types.Nameserver{Name: aws.String(ns)})
	}

	result, err := c.client.UpdateDomainNameservers(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to update domain nameservers: %w", err)
	}

	return aws.ToString(result.OperationId), nil
}
