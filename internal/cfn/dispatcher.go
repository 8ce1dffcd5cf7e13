package cfn

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

// Handler runs one lifecycle phase of a custom resource.
// The returned data is exposed to the template through Fn::GetAtt.
type Handler interface {
	Handle(ctx context.Context, event *Event) (map[string]string, error)
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(ctx context.Context, event *Event) (map[string]string, error)

func (f HandlerFunc) Handle(ctx context.Context, event *Event) (map[string]string, error) {
	return f(ctx, event)
}

// NoOp is the handler for phases that need no external changes
var NoOp Handler = HandlerFunc(func(ctx context.Context, event *Event) (map[string]string, error) {
	logr.FromContextOrDiscard(ctx).Info("No-op custom resource handler", "requestType", event.RequestType)
	return nil, nil
})

// Dispatcher routes an event to the handler of its phase and always sends
// exactly one response, whatever the handler does
type Dispatcher struct {
	Create Handler
	Update Handler
	Delete Handler

	Sender Sender

	// ResponseMargin is reserved from the invocation deadline so a failure
	// response can still be sent when a handler runs out of time
	ResponseMargin time.Duration
}

// NewDispatcher creates a dispatcher from the three phase handlers
func NewDispatcher(create, update, del Handler, sender Sender) *Dispatcher {
	return &Dispatcher{
		Create: create,
		Update: update,
		Delete: del,
		Sender: sender,
	}
}

// Handle is the Lambda entrypoint. It returns an error only when the
// response itself could not be delivered.
func (d *Dispatcher) Handle(ctx context.Context, event Event) error {
	logger := logr.FromContextOrDiscard(ctx).WithValues(
		"requestType", event.RequestType,
		"requestId", event.RequestID,
		"logicalResourceId", event.LogicalResourceID,
		"resourceType", event.ResourceType,
	)
	ctx = logr.NewContext(ctx, logger)

	data, err := d.dispatch(ctx, &event)
	if err != nil {
		logger.Error(err, "Custom resource handler failed")
	}

	resp := NewResponse(&event, data, err)
	if sendErr := d.Sender.Send(ctx, event.ResponseURL, resp); sendErr != nil {
		logger.Error(sendErr, "Failed to deliver custom resource response", "status", resp.Status)
		return sendErr
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, event *Event) (data map[string]string, err error) {
	logger := logr.FromContextOrDiscard(ctx)

	handler, err := d.handlerFor(event.RequestType)
	if err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok && d.ResponseMargin > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline.Add(-d.ResponseMargin))
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("panic in %s handler: %v", event.RequestType, r)
		}
	}()

	logger.Info("Will handle custom resource event", "physicalResourceId", event.PhysicalResourceID)
	data, err = handler.Handle(ctx, event)
	if err != nil {
		return nil, err
	}
	logger.Info("Did handle custom resource event")
	return data, nil
}

func (d *Dispatcher) handlerFor(requestType RequestType) (Handler, error) {
	var handler Handler
	switch requestType {
	case RequestCreate:
		handler = d.Create
	case RequestUpdate:
		handler = d.Update
	case RequestDelete:
		handler = d.Delete
	default:
		return nil, fmt.Errorf("unsupported request type %q", requestType)
	}
	if handler == nil {
		return nil, fmt.Errorf("no handler registered for request type %q", requestType)
	}
	return handler, nil
}
