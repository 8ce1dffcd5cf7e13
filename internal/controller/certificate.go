package controller

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/michelfeldheim/acm-dns-validation/internal/aws"
)

const (
	// AWSCallTimeout is the default timeout for AWS API calls
	AWSCallTimeout = 30 * time.Second

	// maxIdempotencyTokenLength is the longest token ACM accepts
	maxIdempotencyTokenLength = 32
)

// CertificateResolver maps a domain name to an ACM certificate, requesting
// one only when none exists
type CertificateResolver struct {
	ACMClient   aws.ACMClient
	CallTimeout time.Duration
}

// Resolve returns the ARN of the certificate for domainName, requesting a new
// DNS-validated certificate when ACM has none
func (r *CertificateResolver) Resolve(ctx context.Context, domainName string, alternativeNames []string) (string, error) {
	logger := logr.FromContextOrDiscard(ctx)

	certArn, found, err := r.Find(ctx, domainName)
	if err != nil {
		return "", err
	}
	if found {
		logger.Info("Found existing certificate", "domainName", domainName, "certificateArn", certArn)
		return certArn, nil
	}

	logger.Info("No certificate found, requesting one", "domainName", domainName)
	return r.requestCertificate(ctx, domainName, alternativeNames)
}

// Find looks up the certificate whose domain name matches exactly
func (r *CertificateResolver) Find(ctx context.Context, domainName string) (string, bool, error) {
	awsCtx, cancel := context.WithTimeout(ctx, callTimeout(r.CallTimeout))
	defer cancel()

	summaries, err := r.ACMClient.ListCertificates(awsCtx)
	if err != nil {
		return "", false, fmt.Errorf("failed to list certificates: %w", err)
	}

	for _, s := range summaries {
		if s.Domain == domainName && s.Arn != "" {
			return s.Arn, true, nil
		}
	}
	return "", false, nil
}

// requestCertificate requests a new ACM certificate for the domain
func (r *CertificateResolver) requestCertificate(ctx context.Context, domainName string, alternativeNames []string) (string, error) {
	logger := logr.FromContextOrDiscard(ctx)

	req := aws.CertificateRequest{
		DomainName:              domainName,
		SubjectAlternativeNames: alternativeNames,
		IdempotencyToken:        idempotencyToken(domainName),
		TransparencyLogging:     true,
	}

	awsCtx, cancel := context.WithTimeout(ctx, callTimeout(r.CallTimeout))
	defer cancel()

	logger.Info("Will request certificate", "domainName", domainName,
		"alternativeNames", alternativeNames, "idempotencyToken", req.IdempotencyToken)
	certArn, err := r.ACMClient.RequestCertificate(awsCtx, req)
	if err != nil {
		return "", fmt.Errorf("failed to request certificate: %w", err)
	}
	if certArn == "" {
		return "", &ResolutionError{DomainName: domainName}
	}
	logger.Info("Did request certificate", "domainName", domainName, "certificateArn", certArn)

	return certArn, nil
}

// idempotencyToken derives the ACM idempotency token from the domain name, so
// repeated requests for the same domain collapse into one certificate.
// Names too long for ACM are hashed instead of truncated to avoid collisions.
func idempotencyToken(domainName string) string {
	var b strings.Builder
	for _, c := range domainName {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	token := b.String()
	if len(token) > 0 && len(token) <= maxIdempotencyTokenLength {
		return token
	}

	sum := sha256.Sum256([]byte(domainName))
	return hex.EncodeToString(sum[:])[:maxIdempotencyTokenLength]
}

func callTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return AWSCallTimeout
	}
	return d
}
