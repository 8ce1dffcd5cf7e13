package main

import (
	"context"
	"os"

	"code.cloudfoundry.org/clock"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/michelfeldheim/acm-dns-validation/internal/aws"
	"github.com/michelfeldheim/acm-dns-validation/internal/cfn"
	"github.com/michelfeldheim/acm-dns-validation/internal/config"
	"github.com/michelfeldheim/acm-dns-validation/internal/controller"
	"github.com/michelfeldheim/acm-dns-validation/internal/logging"
)

func main() {
	boot := logging.Bootstrap()

	cfg, err := config.Load(boot, os.Args[1:])
	if err != nil {
		boot.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, err := logging.BuildLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		boot.Fatal("Failed to build logger", zap.Error(err))
	}
	defer logger.Sync()
	logger.Debug("Loaded configuration", zap.String("config", cfg.Dump()))

	awsCfg, err := aws.LoadConfig(context.Background(), aws.ConfigOptions{
		Region:          cfg.AWS.Region,
		Profile:         cfg.AWS.Profile,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		SessionToken:    cfg.AWS.SessionToken,
	})
	if err != nil {
		logger.Fatal("Unable to load AWS config", zap.Error(err))
	}

	acmClient := aws.NewSDKACMClient(awsCfg)
	route53Client := aws.NewSDKRoute53Client(awsCfg)
	registrarClient := aws.NewSDKRegistrarClient(awsCfg)

	logger.Info("AWS clients initialized", zap.String("region", awsCfg.Region))

	reconciler := &controller.CertificateReconciler{
		Resolver: &controller.CertificateResolver{
			ACMClient:   acmClient,
			CallTimeout: cfg.AWSCallTimeout,
		},
		Poller: &controller.ValidationPoller{
			ACMClient:   acmClient,
			MaxAttempts: cfg.Poll.Attempts,
			Interval:    cfg.Poll.Interval,
			CallTimeout: cfg.AWSCallTimeout,
			Clock:       clock.NewClock(),
		},
		Nameservers: &controller.NameserverReconciler{
			Route53Client:   route53Client,
			RegistrarClient: registrarClient,
			CallTimeout:     cfg.AWSCallTimeout,
		},
		Route53Client: route53Client,
		RecordTTL:     cfg.RecordTTL,
		CallTimeout:   cfg.AWSCallTimeout,
	}

	var onDelete cfn.Handler = cfn.NoOp
	if cfg.DeletePolicy == config.DeletePolicyRemove {
		onDelete = reconciler
	}

	dispatcher := cfn.NewDispatcher(reconciler, reconciler, onDelete, cfn.NewHTTPSender(cfg.ResponseTimeout))
	dispatcher.ResponseMargin = cfg.ResponseMargin

	logger.Info("Starting certificate custom resource handler", zap.String("deletePolicy", cfg.DeletePolicy))
	lambda.Start(cfn.LambdaHandler(dispatcher, logging.NewLogr(logger)))
}
