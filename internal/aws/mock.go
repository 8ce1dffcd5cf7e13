package aws

import (
	"context"
	"fmt"
	"strings"
)

// MockACMClient is a mock implementation for testing
type MockACMClient struct {
	Certificates map[string]*CertificateDetails

	// PendingDescribes is the number of DescribeCertificate calls per ARN that
	// still report validation options without resource records
	PendingDescribes map[string]int

	Requests      []CertificateRequest
	ListCalls     int
	DescribeCalls int

	ListErr     error
	RequestErr  error
	DescribeErr error

	tokens map[string]string // idempotency token -> ARN
}

func NewMockACMClient() *MockACMClient {
	return &MockACMClient{
		Certificates:     make(map[string]*CertificateDetails),
		PendingDescribes: make(map[string]int),
		tokens:           make(map[string]string),
	}
}

// AddCertificate registers an existing certificate with resolved validation records
func (m *MockACMClient) AddCertificate(domain string, alternativeNames ...string) string {
	arn := fmt.Sprintf("arn:aws:acm:us-east-1:123456789012:certificate/%s", strings.ReplaceAll(domain, "*", "wildcard"))
	cert := &CertificateDetails{
		Arn:    arn,
		Domain: domain,
		Status: "PENDING_VALIDATION",
	}
	for _, name := range append([]string{domain}, alternativeNames...) {
		cert.DomainValidationOptions = append(cert.DomainValidationOptions, DomainValidation{
			DomainName: name,
			ResourceRecord: &ValidationRecord{
				Name:  fmt.Sprintf("_acm-validation.%s.", strings.TrimPrefix(name, "*.")),
				Type:  "CNAME",
				Value: "_validation-value.acm-validations.aws.",
			},
		})
	}
	m.Certificates[arn] = cert
	return arn
}

func (m *MockACMClient) ListCertificates(ctx context.Context) ([]CertificateSummary, error) {
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var summaries []CertificateSummary
	for arn, cert := range m.Certificates {
		summaries = append(summaries, CertificateSummary{Arn: arn, Domain: cert.Domain})
	}
	return summaries, nil
}

func (m *MockACMClient) RequestCertificate(ctx context.Context, req CertificateRequest) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.RequestErr != nil {
		return "", m.RequestErr
	}
	if arn, ok := m.tokens[req.IdempotencyToken]; ok && req.IdempotencyToken != "" {
		return arn, nil
	}
	arn := m.AddCertificate(req.DomainName, req.SubjectAlternativeNames...)
	m.tokens[req.IdempotencyToken] = arn
	return arn, nil
}

func (m *MockACMClient) DescribeCertificate(ctx context.Context, certArn string) (*CertificateDetails, error) {
	m.DescribeCalls++
	if m.DescribeErr != nil {
		return nil, m.DescribeErr
	}
	cert, ok := m.Certificates[certArn]
	if !ok {
		return nil, fmt.Errorf("certificate not found: %s", certArn)
	}

	if m.PendingDescribes[certArn] > 0 {
		m.PendingDescribes[certArn]--
		pending := *cert
		pending.DomainValidationOptions = nil
		for _, dvo := range cert.DomainValidationOptions {
			pending.DomainValidationOptions = append(pending.DomainValidationOptions, DomainValidation{DomainName: dvo.DomainName})
		}
		return &pending, nil
	}

	copied := *cert
	return &copied, nil
}

// MockRoute53Client is a mock implementation for testing
type MockRoute53Client struct {
	Records map[string]DNSRecord // key: zoneId:name:type
	Zones   map[string]*HostedZone
	Batches [][]RecordChange

	ChangeErr error
}

func NewMockRoute53Client() *MockRoute53Client {
	return &MockRoute53Client{
		Records: make(map[string]DNSRecord),
		Zones:   make(map[string]*HostedZone),
	}
}

func (m *MockRoute53Client) ChangeRecordSets(ctx context.Context, zoneId string, changes []RecordChange) error {
	m.Batches = append(m.Batches, changes)
	if m.ChangeErr != nil {
		return m.ChangeErr
	}
	zoneId = normalizeZoneId(zoneId)

	// Validate the whole batch first so a rejected batch changes nothing
	for _, change := range changes {
		key := recordKey(zoneId, change.Record)
		_, exists := m.Records[key]
		switch change.Action {
		case ChangeActionCreate:
			if exists {
				return fmt.Errorf("InvalidChangeBatch: record %s already exists", change.Record.Name)
			}
		case ChangeActionDelete:
			if !exists {
				return fmt.Errorf("%w: %s", ErrRecordSetNotFound, change.Record.Name)
			}
		case ChangeActionUpsert:
		default:
			return fmt.Errorf("InvalidChangeBatch: unknown action %q", change.Action)
		}
	}

	for _, change := range changes {
		key := recordKey(zoneId, change.Record)
		if change.Action == ChangeActionDelete {
			delete(m.Records, key)
			continue
		}
		m.Records[key] = change.Record
	}
	return nil
}

func (m *MockRoute53Client) GetHostedZone(ctx context.Context, zoneId string) (*HostedZone, error) {
	zone, ok := m.Zones[normalizeZoneId(zoneId)]
	if !ok {
		return nil, fmt.Errorf("hosted zone not found: %s", zoneId)
	}
	return zone, nil
}

// GetRecord looks up a record previously written with ChangeRecordSets
func (m *MockRoute53Client) GetRecord(zoneId, name, recordType string) (*DNSRecord, bool) {
	record, ok := m.Records[recordKey(normalizeZoneId(zoneId), DNSRecord{Name: name, Type: recordType})]
	if !ok {
		return nil, false
	}
	return &record, true
}

func recordKey(zoneId string, record DNSRecord) string {
	return fmt.Sprintf("%s:%s:%s", zoneId, record.Name, record.Type)
}

// MockRegistrarClient is a mock implementation for testing
type MockRegistrarClient struct {
	Nameservers map[string][]string // domain -> nameservers
	Calls       int

	Err error
}

func NewMockRegistrarClient() *MockRegistrarClient {
	return &MockRegistrarClient{
		Nameservers: make(map[string][]string),
	}
}

func (m *MockRegistrarClient) UpdateDomainNameservers(ctx context.Context, domainName string, nameservers []string) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	m.Nameservers[domainName] = append([]string(nil), nameservers...)
	return fmt.Sprintf("operation-%d", m.Calls), nil
}

// MockBucketClient is a mock implementation for testing
type MockBucketClient struct {
	Buckets map[string]bool
	Created []string

	HeadErr   error
	CreateErr error
}

func NewMockBucketClient() *MockBucketClient {
	return &MockBucketClient{
		Buckets: make(map[string]bool),
	}
}

func (m *MockBucketClient) HeadBucket(ctx context.Context, bucket string) error {
	if m.HeadErr != nil {
		return m.HeadErr
	}
	if !m.Buckets[bucket] {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	return nil
}

func (m *MockBucketClient) CreateBucket(ctx context.Context, bucket string) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Buckets[bucket] = true
	m.Created = append(m.Created, bucket)
	return nil
}
