package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/michelfeldheim/acm-dns-validation/api/v1alpha1"
	"github.com/michelfeldheim/acm-dns-validation/internal/aws"
	"github.com/michelfeldheim/acm-dns-validation/internal/cfn"
)

const (
	// DefaultRecordTTL is the TTL of the validation CNAME records, in seconds
	DefaultRecordTTL = 900

	// ResourceTypeCertificateWithNameservers also updates the registrar after validation
	ResourceTypeCertificateWithNameservers = "Custom::DnsValidatedCertificateWithNameservers"
)

// CertificateReconciler provisions a DNS-validated certificate: it resolves
// the certificate, waits for its validation records and writes them to the
// hosted zone in one change batch
type CertificateReconciler struct {
	Resolver    *CertificateResolver
	Poller      *ValidationPoller
	Nameservers *NameserverReconciler

	Route53Client aws.Route53Client
	RecordTTL     int64
	CallTimeout   time.Duration
}

// Result is the outcome of a successful reconciliation
type Result struct {
	CertificateArn string
	Records        []aws.ValidationRecord
	Nameservers    []string
}

// Handle implements cfn.Handler
func (r *CertificateReconciler) Handle(ctx context.Context, event *cfn.Event) (map[string]string, error) {
	result, err := r.Reconcile(ctx, event)
	if err != nil {
		return nil, err
	}
	if result.CertificateArn == "" {
		return nil, nil
	}
	data := map[string]string{"CertificateArn": result.CertificateArn}
	if len(result.Nameservers) > 0 {
		data["Nameservers"] = strings.Join(result.Nameservers, ",")
	}
	return data, nil
}

// Reconcile runs the steps for the event's phase in order; the first failing step aborts the rest.
// Create and Update upsert the validation records. Delete removes them, and
// never requests a certificate. A Delete whose properties are unusable or
// whose records never appeared has nothing to clean up and succeeds, so a
// rolled back Create cannot leave the stack stuck.
func (r *CertificateReconciler) Reconcile(ctx context.Context, event *cfn.Event) (*Result, error) {
	action := changeAction(event.RequestType)

	props, err := certificateProperties(event)
	if err != nil {
		if action == aws.ChangeActionDelete {
			logr.FromContextOrDiscard(ctx).Info("Nothing to clean up, certificate properties are unusable", "reason", err.Error())
			return &Result{}, nil
		}
		return nil, err
	}

	logger := logr.FromContextOrDiscard(ctx).WithValues("domainName", props.DomainName, "zoneId", props.HostedZone)
	ctx = logr.NewContext(ctx, logger)
	logger.Info("Reconciling certificate", "domainNames", props.DomainNames())

	var certArn string
	if action == aws.ChangeActionDelete {
		var found bool
		certArn, found, err = r.Resolver.Find(ctx, props.DomainName)
		if err != nil {
			return nil, err
		}
		if !found {
			logger.Info("No certificate to clean up")
			return &Result{}, nil
		}
	} else {
		certArn, err = r.Resolver.Resolve(ctx, props.DomainName, props.AlternativeNames)
		if err != nil {
			return nil, err
		}
	}

	records, err := r.Poller.AwaitValidationRecords(ctx, certArn)
	var timeout *ValidationTimeoutError
	if action == aws.ChangeActionDelete && errors.As(err, &timeout) {
		logger.Info("No validation records were ever published, nothing to clean up", "certificateArn", certArn)
		return &Result{CertificateArn: certArn}, nil
	}
	if err != nil {
		return nil, err
	}

	changes := r.buildChanges(action, records)
	if err := r.applyChanges(ctx, props.HostedZone, changes); err != nil {
		return nil, err
	}

	result := &Result{CertificateArn: certArn, Records: records}

	if action != aws.ChangeActionDelete && r.updatesNameservers(event, props) {
		if r.Nameservers == nil {
			return nil, errors.New("nameserver update requested but no registrar is configured")
		}
		result.Nameservers, err = r.Nameservers.Apply(ctx, props.HostedZone)
		if err != nil {
			return nil, err
		}
	}

	logger.Info("Certificate reconciled", "certificateArn", certArn, "records", len(records))
	return result, nil
}

// buildChanges maps validation records to change batch entries. A wildcard and
// its apex share one validation record, so duplicates are dropped.
func (r *CertificateReconciler) buildChanges(action aws.ChangeAction, records []aws.ValidationRecord) []aws.RecordChange {
	ttl := r.RecordTTL
	if ttl <= 0 {
		ttl = DefaultRecordTTL
	}

	seen := make(map[string]bool)
	var changes []aws.RecordChange
	for _, valRec := range records {
		recordType := valRec.Type
		if recordType == "" {
			recordType = "CNAME"
		}
		key := valRec.Name + "/" + recordType
		if seen[key] {
			continue
		}
		seen[key] = true

		changes = append(changes, aws.RecordChange{
			Action: action,
			Record: aws.DNSRecord{
				Name:  valRec.Name,
				Type:  recordType,
				Value: valRec.Value,
				TTL:   ttl,
			},
		})
	}
	return changes
}

// applyChanges submits the changes as one batch. Deleting records that are
// already gone is not an error; the rest of the batch is retried one by one.
func (r *CertificateReconciler) applyChanges(ctx context.Context, zoneId string, changes []aws.RecordChange) error {
	logger := logr.FromContextOrDiscard(ctx)

	awsCtx, cancel := context.WithTimeout(ctx, callTimeout(r.CallTimeout))
	defer cancel()

	logger.Info("Will change resource record sets", "changes", len(changes))
	err := r.Route53Client.ChangeRecordSets(awsCtx, zoneId, changes)
	if err == nil {
		logger.Info("Did change resource record sets", "changes", len(changes))
		return nil
	}
	if !errors.Is(err, aws.ErrRecordSetNotFound) {
		logger.Error(err, "Failed to change resource record sets")
		return fmt.Errorf("failed to change validation records: %w", err)
	}

	for _, change := range changes {
		changeCtx, changeCancel := context.WithTimeout(ctx, callTimeout(r.CallTimeout))
		err := r.Route53Client.ChangeRecordSets(changeCtx, zoneId, []aws.RecordChange{change})
		changeCancel()
		if err != nil && !errors.Is(err, aws.ErrRecordSetNotFound) {
			return fmt.Errorf("failed to delete validation record %s: %w", change.Record.Name, err)
		}
		if err != nil {
			logger.Info("Validation record already deleted", "name", change.Record.Name)
		}
	}
	return nil
}

func (r *CertificateReconciler) updatesNameservers(event *cfn.Event, props *v1alpha1.CertificateProperties) bool {
	return props.UpdateNameservers || event.ResourceType == ResourceTypeCertificateWithNameservers
}

// certificateProperties extracts and validates the Certificate property
func certificateProperties(event *cfn.Event) (*v1alpha1.CertificateProperties, error) {
	raw, ok := event.ResourceProperties[v1alpha1.CertificatePropertyName]
	if !ok || raw == nil {
		return nil, &MissingPropertyError{Property: v1alpha1.CertificatePropertyName}
	}

	props := &v1alpha1.CertificateProperties{}
	if err := v1alpha1.Decode(raw, props); err != nil {
		return nil, &MissingPropertyError{Property: v1alpha1.CertificatePropertyName, Err: err}
	}
	if err := props.Validate(); err != nil {
		return nil, &MissingPropertyError{Property: v1alpha1.CertificatePropertyName, Err: err}
	}
	return props, nil
}

// changeAction maps the lifecycle phase to a Route53 change directive
func changeAction(requestType cfn.RequestType) aws.ChangeAction {
	if requestType == cfn.RequestDelete {
		return aws.ChangeActionDelete
	}
	return aws.ChangeActionUpsert
}
