package aws

import (
	"context"
)

// ACMClient defines the interface for ACM operations
type ACMClient interface {
	// ListCertificates returns a summary of every certificate known to ACM
	ListCertificates(ctx context.Context) ([]CertificateSummary, error)

	// RequestCertificate requests a new DNS-validated ACM certificate
	RequestCertificate(ctx context.Context, req CertificateRequest) (certArn string, err error)

	// DescribeCertificate gets the current status and validation options of a certificate
	DescribeCertificate(ctx context.Context, certArn string) (*CertificateDetails, error)
}

// CertificateSummary is a list entry returned by ListCertificates
type CertificateSummary struct {
	Arn    string
	Domain string
}

// CertificateRequest holds the parameters for RequestCertificate
type CertificateRequest struct {
	DomainName              string
	SubjectAlternativeNames []string
	IdempotencyToken        string
	TransparencyLogging     bool
}

// CertificateDetails represents ACM certificate information
type CertificateDetails struct {
	Arn    string
	Domain string
	Status string // PENDING_VALIDATION, ISSUED, FAILED, etc.

	// DomainValidationOptions has one entry per requested domain name.
	// ResourceRecord stays nil until ACM has computed the validation token.
	DomainValidationOptions []DomainValidation
}

// DomainValidation is the validation state of a single domain name on a certificate
type DomainValidation struct {
	DomainName     string
	ResourceRecord *ValidationRecord
}

// ValidationRecord represents a DNS validation record for ACM
type ValidationRecord struct {
	Name  string
	Type  string // CNAME
	Value string
}

// ValidationRecords returns the resolved records, skipping domains ACM has not processed yet
func (d *CertificateDetails) ValidationRecords() []ValidationRecord {
	var records []ValidationRecord
	for _, dvo := range d.DomainValidationOptions {
		if dvo.ResourceRecord != nil {
			records = append(records, *dvo.ResourceRecord)
		}
	}
	return records
}
