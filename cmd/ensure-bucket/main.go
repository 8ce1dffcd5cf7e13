// ensure-bucket creates the S3 bucket the handler artifacts are uploaded to
// when it does not exist yet.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/michelfeldheim/acm-dns-validation/internal/aws"
	"github.com/michelfeldheim/acm-dns-validation/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("ensure-bucket", pflag.ContinueOnError)
	region := flags.String("region", os.Getenv("AWS_REGION"), "Region to create the bucket in")
	profile := flags.String("profile", "", "Shared config profile")
	logLevel := flags.String("log-level", "info", "Log level")
	timeout := flags.Duration("timeout", time.Minute, "Overall timeout")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: ensure-bucket [flags] <bucket>")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 2
	}
	bucket := flags.Arg(0)

	logger, err := logging.BuildLogger(*logLevel, "dev")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	awsCfg, err := aws.LoadConfig(ctx, aws.ConfigOptions{Region: *region, Profile: *profile})
	if err != nil {
		logger.Error("Unable to load AWS config", zap.Error(err))
		return 1
	}

	created, err := aws.EnsureBucket(ctx, aws.NewSDKBucketClient(awsCfg), bucket)
	if err != nil {
		logger.Error("Failed to ensure bucket", zap.String("bucket", bucket), zap.Error(err))
		return 1
	}
	if created {
		logger.Info("Created bucket", zap.String("bucket", bucket), zap.String("region", awsCfg.Region))
	} else {
		logger.Info("Bucket already exists", zap.String("bucket", bucket))
	}
	return 0
}
