package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ErrBucketNotFound is returned by HeadBucket when the bucket does not exist
var ErrBucketNotFound = errors.New("bucket not found")

// BucketClient defines the interface for the object store operations used by ensure-bucket
type BucketClient interface {
	// HeadBucket returns ErrBucketNotFound (wrapped) when the bucket does not exist
	HeadBucket(ctx context.Context, bucket string) error

	// CreateBucket creates the bucket in the client's region
	CreateBucket(ctx context.Context, bucket string) error
}

// SDKBucketClient implements BucketClient using AWS SDK v2
type SDKBucketClient struct {
	client *s3.Client
	region string
}

// NewSDKBucketClient creates a new S3 client using the provided AWS config
func NewSDKBucketClient(cfg aws.Config) *SDKBucketClient {
	return &SDKBucketClient{
		client: s3.NewFromConfig(cfg),
		region: cfg.Region,
	}
}

func (c *SDKBucketClient) HeadBucket(ctx context.Context, bucket string) error {
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchBucket") {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	return fmt.Errorf("failed to head bucket: %w", err)
}

func (c *SDKBucketClient) CreateBucket(ctx context.Context, bucket string) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}

	// us-east-1 rejects an explicit location constraint
	if c.region != "" && c.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(c.region),
		}
	}

	if _, err := c.client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// EnsureBucket creates the bucket unless it already exists.
// It reports whether the bucket was created.
func EnsureBucket(ctx context.Context, client BucketClient, bucket string) (bool, error) {
	if bucket == "" {
		return false, errors.New("bucket name is required")
	}

	err := client.HeadBucket(ctx, bucket)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrBucketNotFound) {
		return false, err
	}

	if err := client.CreateBucket(ctx, bucket); err != nil {
		return false, err
	}
	return true, nil
}
