package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/smithy-go"
)

// SDKRoute53Client implements Route53Client using AWS SDK v2
type SDKRoute53Client struct {
	client *route53.Client
}

// NewSDKRoute53Client creates a new Route53 client using the provided AWS config
func NewSDKRoute53Client(cfg aws.Config) *SDKRoute53Client {
	return &SDKRoute53Client{
		client: route53.NewFromConfig(cfg),
	}
}

func (c *SDKRoute53Client) ChangeRecordSets(ctx context.Context, zoneId string, changes []RecordChange) error {
	if len(changes) == 0 {
		return nil
	}

	batch := &types.ChangeBatch{}
	for _, change := range changes {
		batch.Changes = append(batch.Changes, types.Change{
			Action: types.ChangeAction(change.Action),
			ResourceRecordSet: &types.ResourceRecordSet{
				Name: aws.String(change.Record.Name),
				Type: types.RRType(change.Record.Type),
				TTL:  aws.Int64(change.Record.TTL),
				ResourceRecords: []types.ResourceRecord{
					{Value: aws.String(change.Record.Value)},
				},
			},
		})
	}

	input := &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(normalizeZoneId(zoneId)),
		ChangeBatch:  batch,
	}

	_, err := c.client.ChangeResourceRecordSets(ctx, input)
	if err != nil {
		if allDeletes(changes) && isRecordSetNotFound(err) {
			return fmt.Errorf("failed to change record sets: %w: %v", ErrRecordSetNotFound, err)
		}
		return fmt.Errorf("failed to change record sets: %w", err)
	}

	return nil
}

func (c *SDKRoute53Client) GetHostedZone(ctx context.Context, zoneId string) (*HostedZone, error) {
	input := &route53.GetHostedZoneInput{
		Id: aws.String(normalizeZoneId(zoneId)),
	}

	result, err := c.client.GetHostedZone(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get hosted zone: %w", err)
	}
	if result.HostedZone == nil {
		return nil, fmt.Errorf("get hosted zone %s returned no zone", zoneId)
	}

	zone := &HostedZone{
		Id:   normalizeZoneId(aws.ToString(result.HostedZone.Id)),
		Name: aws.ToString(result.HostedZone.Name),
	}
	if result.DelegationSet != nil {
		zone.NameServers = append(zone.NameServers, result.DelegationSet.NameServers...)
	}

	return zone, nil
}

func allDeletes(changes []RecordChange) bool {
	for _, change := range changes {
		if change.Action != ChangeActionDelete {
			return false
		}
	}
	return true
}

// isRecordSetNotFound reports whether Route53 rejected the batch because a
// record set to delete does not exist
func isRecordSetNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "InvalidChangeBatch" &&
		strings.Contains(apiErr.ErrorMessage(), "not found")
}
