package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/acm/types"
)

// SDKACMClient implements ACMClient using AWS SDK v2
type SDKACMClient struct {
	client *acm.Client
}

// NewSDKACMClient creates a new ACM client using the provided AWS config
func NewSDKACMClient(cfg aws.Config) *SDKACMClient {
	return &SDKACMClient{
		client: acm.NewFromConfig(cfg),
	}
}

func (c *SDKACMClient) ListCertificates(ctx context.Context) ([]CertificateSummary, error) {
	var summaries []CertificateSummary

	paginator := acm.NewListCertificatesPaginator(c.client, listCertificatesInput())
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list certificates: %w", err)
		}
		for _, s := range page.CertificateSummaryList {
			summaries = append(summaries, CertificateSummary{
				Arn:    aws.ToString(s.CertificateArn),
				Domain: aws.ToString(s.DomainName),
			})
		}
	}

	return summaries, nil
}

// listCertificatesInput asks for every key type; ACM lists only RSA_2048
// certificates when no filter is given
func listCertificatesInput() *acm.ListCertificatesInput {
	return &acm.ListCertificatesInput{
		Includes: &types.Filters{
			KeyTypes: types.KeyAlgorithm("").Values(),
		},
	}
}

func (c *SDKACMClient) RequestCertificate(ctx context.Context, req CertificateRequest) (string, error) {
	logging := types.CertificateTransparencyLoggingPreferenceDisabled
	if req.TransparencyLogging {
		logging = types.CertificateTransparencyLoggingPreferenceEnabled
	}

	input := &acm.RequestCertificateInput{
		DomainName:       aws.String(req.DomainName),
		ValidationMethod: types.ValidationMethodDns,
		Options: &types.CertificateOptions{
			CertificateTransparencyLoggingPreference: logging,
		},
	}
	if len(req.SubjectAlternativeNames) > 0 {
		input.SubjectAlternativeNames = req.SubjectAlternativeNames
	}
	if req.IdempotencyToken != "" {
		input.IdempotencyToken = aws.String(req.IdempotencyToken)
	}

	result, err := c.client.RequestCertificate(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to request certificate: %w", err)
	}

	return aws.ToString(result.CertificateArn), nil
}

func (c *SDKACMClient) DescribeCertificate(ctx context.Context, arn string) (*CertificateDetails, error) {
	input := &acm.DescribeCertificateInput{
		CertificateArn: aws.String(arn),
	}

	result, err := c.client.DescribeCertificate(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to describe certificate: %w", err)
	}
	if result.Certificate == nil {
		return nil, fmt.Errorf("describe certificate %s returned no certificate", arn)
	}

	details := &CertificateDetails{
		Arn:    arn,
		Domain: aws.ToString(result.Certificate.DomainName),
		Status: string(result.Certificate.Status),
	}
	for _, dvo := range result.Certificate.DomainValidationOptions {
		validation := DomainValidation{DomainName: aws.ToString(dvo.DomainName)}
		if dvo.ResourceRecord != nil {
			validation.ResourceRecord = &ValidationRecord{
				Name:  aws.ToString(dvo.ResourceRecord.Name),
				Type:  string(dvo.ResourceRecord.Type),
				Value: aws.ToString(dvo.ResourceRecord.Value),
			}
		}
		details.DomainValidationOptions = append(details.DomainValidationOptions, validation)
	}

	return details, nil
}
