package cfn

import (
	"context"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/go-logr/logr"
)

// LambdaHandler returns the function passed to lambda.Start. It attaches
// logger, tagged with the invocation's request id, to the context.
func LambdaHandler(d *Dispatcher, logger logr.Logger) func(ctx context.Context, event Event) error {
	return func(ctx context.Context, event Event) error {
		l := logger
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			l = l.WithValues("awsRequestId", lc.AwsRequestID)
		}
		return d.Handle(logr.NewContext(ctx, l), event)
	}
}
