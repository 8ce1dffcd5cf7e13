package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/michelfeldheim/acm-dns-validation/api/v1alpha1"
	"github.com/michelfeldheim/acm-dns-validation/internal/aws"
	"github.com/michelfeldheim/acm-dns-validation/internal/cfn"
)

// NameserverReconciler points a registered domain at the nameservers of the
// hosted zone with the same name
type NameserverReconciler struct {
	Route53Client   aws.Route53Client
	RegistrarClient aws.RegistrarClient
	CallTimeout     time.Duration
}

// Handle implements cfn.Handler for the nameserver custom resource
func (r *NameserverReconciler) Handle(ctx context.Context, event *cfn.Event) (map[string]string, error) {
	if _, ok := event.ResourceProperties[v1alpha1.HostedZonePropertyName]; !ok {
		return nil, &MissingPropertyError{Property: v1alpha1.HostedZonePropertyName}
	}
	props := v1alpha1.NameserverProperties{}
	if err := v1alpha1.Decode(event.ResourceProperties, &props); err != nil {
		return nil, &MissingPropertyError{Property: v1alpha1.HostedZonePropertyName, Err: err}
	}
	if err := props.Validate(); err != nil {
		return nil, &MissingPropertyError{Property: v1alpha1.HostedZonePropertyName, Err: err}
	}

	nameservers, err := r.Apply(ctx, props.HostedZone)
	if err != nil {
		return nil, err
	}
	return map[string]string{"Nameservers": strings.Join(nameservers, ",")}, nil
}

// Apply copies the delegation set of the hosted zone to the registrar
func (r *NameserverReconciler) Apply(ctx context.Context, zoneId string) ([]string, error) {
	logger := logr.FromContextOrDiscard(ctx).WithValues("zoneId", zoneId)

	zoneCtx, cancel := context.WithTimeout(ctx, callTimeout(r.CallTimeout))
	defer cancel()

	logger.Info("Will get hosted zone")
	zone, err := r.Route53Client.GetHostedZone(zoneCtx, zoneId)
	if err != nil {
		return nil, fmt.Errorf("failed to get hosted zone: %w", err)
	}
	if len(zone.NameServers) == 0 {
		return nil, fmt.Errorf("hosted zone %s has no delegation set nameservers", zoneId)
	}
	domainName := strings.TrimSuffix(zone.Name, ".")
	logger.Info("Did get hosted zone", "domainName", domainName, "nameservers", zone.NameServers)

	regCtx, regCancel := context.WithTimeout(ctx, callTimeout(r.CallTimeout))
	defer regCancel()

	logger.Info("Will update domain nameservers", "domainName", domainName)
	operationId, err := r.RegistrarClient.UpdateDomainNameservers(regCtx, domainName, zone.NameServers)
	if err != nil {
		return nil, fmt.Errorf("failed to update domain nameservers: %w", err)
	}
	logger.Info("Did update domain nameservers", "domainName", domainName, "operationId", operationId)

	return zone.NameServers, nil
}
