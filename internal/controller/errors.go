package controller

import (
	"errors"
	"fmt"
)

// ErrValidationRecordsNotReady indicates ACM has not yet published the DNS
// validation records for a certificate
var ErrValidationRecordsNotReady = errors.New("validation records not ready")

// MissingPropertyError is returned when the event lacks a required resource property
type MissingPropertyError struct {
	Property string
	Err      error
}

func (e *MissingPropertyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("MissingPropertyError: resource property %s: %v", e.Property, e.Err)
	}
	return fmt.Sprintf("MissingPropertyError: resource property %s is missing", e.Property)
}

func (e *MissingPropertyError) Unwrap() error {
	return e.Err
}

// ResolutionError is returned when ACM yields no certificate ARN for a domain
type ResolutionError struct {
	DomainName string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("ResolutionError: no certificate ARN returned for %s", e.DomainName)
}

// ValidationTimeoutError is returned when the validation records did not
// appear within the polling bound
type ValidationTimeoutError struct {
	CertificateArn string
	Attempts       int
}

func (e *ValidationTimeoutError) Error() string {
	return fmt.Sprintf("ValidationTimeoutError: no validation records for %s after %d attempts", e.CertificateArn, e.Attempts)
}

func (e *ValidationTimeoutError) Unwrap() error {
	return ErrValidationRecordsNotReady
}
