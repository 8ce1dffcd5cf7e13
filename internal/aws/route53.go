package aws

import (
	"context"
	"errors"
	"strings"
)

// ErrRecordSetNotFound is returned when a DELETE change names a record set
// that does not exist in the hosted zone
var ErrRecordSetNotFound = errors.New("record set not found")

// Route53Client defines the interface for Route53 operations
type Route53Client interface {
	// ChangeRecordSets submits all changes to the hosted zone as one atomic batch
	ChangeRecordSets(ctx context.Context, zoneId string, changes []RecordChange) error

	// GetHostedZone returns the hosted zone name and its delegation set
	GetHostedZone(ctx context.Context, zoneId string) (*HostedZone, error)
}

// ChangeAction is the directive applied to a record set in a change batch
type ChangeAction string

const (
	ChangeActionCreate ChangeAction = "CREATE"
	ChangeActionUpsert ChangeAction = "UPSERT"
	ChangeActionDelete ChangeAction = "DELETE"
)

// RecordChange is a single entry of a change batch
type RecordChange struct {
	Action ChangeAction
	Record DNSRecord
}

// DNSRecord represents a Route53 DNS record with a single value
type DNSRecord struct {
	Name  string
	Type  string // CNAME for ACM validation
	Value string
	TTL   int64
}

// HostedZone represents a Route53 hosted zone
type HostedZone struct {
	Id          string
	Name        string
	NameServers []string
}

// normalizeZoneId ensures the zone ID has the correct format
func normalizeZoneId(zoneId string) string {
	// Remove /hostedzone/ prefix if present
	return strings.TrimPrefix(zoneId, "/hostedzone/")
}
