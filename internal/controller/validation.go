package controller

import (
	"context"
	"fmt"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/go-logr/logr"

	"github.com/michelfeldheim/acm-dns-validation/internal/aws"
)

const (
	// DefaultPollAttempts bounds how often ACM is asked for validation records
	DefaultPollAttempts = 5

	// DefaultPollInterval is the fixed pause between attempts
	DefaultPollInterval = 1000 * time.Millisecond
)

// ValidationPoller waits for ACM to publish the DNS validation records of a
// certificate. Attempts and interval stay small: the whole wait has to fit in
// one Lambda invocation.
type ValidationPoller struct {
	ACMClient   aws.ACMClient
	MaxAttempts int
	Interval    time.Duration
	CallTimeout time.Duration
	Clock       clock.Clock
}

// AwaitValidationRecords returns the validation records as soon as at least
// one is present, or a ValidationTimeoutError after MaxAttempts describes
func (p *ValidationPoller) AwaitValidationRecords(ctx context.Context, certArn string) ([]aws.ValidationRecord, error) {
	logger := logr.FromContextOrDiscard(ctx).WithValues("certificateArn", certArn)

	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultPollAttempts
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.NewClock()
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		records, err := p.getValidationRecords(ctx, certArn)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			logger.Info("Retrieved validation records from ACM", "count", len(records), "attempt", attempt)
			return records, nil
		}
		logger.Info("Validation records not ready", "attempt", attempt, "maxAttempts", attempts)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("stopped waiting for validation records: %w", ctx.Err())
		case <-clk.After(interval):
		}
	}

	return nil, &ValidationTimeoutError{CertificateArn: certArn, Attempts: attempts}
}

// getValidationRecords describes the certificate once and keeps the records ACM has resolved
func (p *ValidationPoller) getValidationRecords(ctx context.Context, certArn string) ([]aws.ValidationRecord, error) {
	awsCtx, cancel := context.WithTimeout(ctx, callTimeout(p.CallTimeout))
	defer cancel()

	details, err := p.ACMClient.DescribeCertificate(awsCtx, certArn)
	if err != nil {
		return nil, fmt.Errorf("failed to describe certificate: %w", err)
	}
	return details.ValidationRecords(), nil
}
