package main

import (
	"context"
	"os"

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

	reconciler := &controller.NameserverReconciler{
		Route53Client:   aws.NewSDKRoute53Client(awsCfg),
		RegistrarClient: aws.NewSDKRegistrarClient(awsCfg),
		CallTimeout:     cfg.AWSCallTimeout,
	}

	// nameservers stay at the registrar when the resource is deleted
	dispatcher := cfn.NewDispatcher(reconciler, reconciler, cfn.NoOp, cfn.NewHTTPSender(cfg.ResponseTimeout))
	dispatcher.ResponseMargin = cfg.ResponseMargin

	logger.Info("Starting nameserver custom resource handler")
	lambda.Start(cfn.LambdaHandler(dispatcher, logging.NewLogr(logger)))
}
