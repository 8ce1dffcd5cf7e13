package cfn

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// recordingSender captures every response instead of sending it
type recordingSender struct {
	responses []*Response
	urls      []string
	err       error
}

func (s *recordingSender) Send(ctx context.Context, responseURL string, resp *Response) error {
	s.urls = append(s.urls, responseURL)
	s.responses = append(s.responses, resp)
	return s.err
}

func testEvent(requestType RequestType) Event {
	return Event{
		RequestType:       requestType,
		RequestID:         "req-1",
		ResponseURL:       "https://cloudformation-custom-resource-response.example.com/resp?sig=abc",
		ResourceType:      "Custom::DnsValidatedCertificate",
		LogicalResourceID: "Certificate",
		StackID:           "arn:aws:cloudformation:us-east-2:123456789012:stack/test/1",
		ResourceProperties: map[string]interface{}{
			"Key": "cert-key",
		},
	}
}

func TestDispatcher_ExactlyOneResponse(t *testing.T) {
	succeed := HandlerFunc(func(ctx context.Context, event *Event) (map[string]string, error) {
		return map[string]string{"Phase": string(event.RequestType)}, nil
	})
	fail := HandlerFunc(func(ctx context.Context, event *Event) (map[string]string, error) {
		return nil, errors.New("boom")
	})
	panics := HandlerFunc(func(ctx context.Context, event *Event) (map[string]string, error) {
		panic("unexpected nil")
	})

	outcomes := []struct {
		name       string
		handler    Handler
		wantStatus Status
	}{
		{name: "handler succeeds", handler: succeed, wantStatus: StatusSuccess},
		{name: "handler fails", handler: fail, wantStatus: StatusFailed},
		{name: "handler panics", handler: panics, wantStatus: StatusFailed},
	}

	for _, phase := range []RequestType{RequestCreate, RequestUpdate, RequestDelete} {
		for _, outcome := range outcomes {
			t.Run(string(phase)+"/"+outcome.name, func(t *testing.T) {
				sender := &recordingSender{}
				called := map[RequestType]int{}
				track := func(rt RequestType) Handler {
					return HandlerFunc(func(ctx context.Context, event *Event) (map[string]string, error) {
						called[rt]++
						return outcome.handler.Handle(ctx, event)
					})
				}
				d := NewDispatcher(track(RequestCreate), track(RequestUpdate), track(RequestDelete), sender)

				event := testEvent(phase)
				if err := d.Handle(context.Background(), event); err != nil {
					t.Fatalf("Handle() error = %v", err)
				}

				if len(sender.responses) != 1 {
					t.Fatalf("responses sent = %d, want 1", len(sender.responses))
				}
				if called[phase] != 1 || len(called) != 1 {
					t.Errorf("handlers called = %v, want only %s once", called, phase)
				}
				resp := sender.responses[0]
				if resp.Status != outcome.wantStatus {
					t.Errorf("status = %v, want %v", resp.Status, outcome.wantStatus)
				}
				if outcome.wantStatus == StatusFailed && resp.Reason == "" {
					t.Error("failed response has empty reason")
				}
				if sender.urls[0] != event.ResponseURL {
					t.Errorf("url = %v, want %v", sender.urls[0], event.ResponseURL)
				}
			})
		}
	}
}

func TestDispatcher_ResponseFields(t *testing.T) {
	sender := &recordingSender{}
	handler := HandlerFunc(func(ctx context.Context, event *Event) (map[string]string, error) {
		return map[string]string{"CertificateArn": "arn:cert"}, nil
	})
	d := NewDispatcher(handler, handler, NoOp, sender)

	event := testEvent(RequestCreate)
	if err := d.Handle(context.Background(), event); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	resp := sender.responses[0]
	if resp.PhysicalResourceID != "cert-key" {
		t.Errorf("physical id = %v, want cert-key", resp.PhysicalResourceID)
	}
	if resp.StackID != event.StackID || resp.RequestID != event.RequestID || resp.LogicalResourceID != event.LogicalResourceID {
		t.Errorf("response ids do not match event: %+v", resp)
	}
	if resp.Data["CertificateArn"] != "arn:cert" {
		t.Errorf("data = %v, want CertificateArn", resp.Data)
	}
}

func TestDispatcher_FailureReason(t *testing.T) {
	sender := &recordingSender{}
	handler := HandlerFunc(func(ctx context.Context, event *Event) (map[string]string, error) {
		return map[string]string{"ignored": "x"}, errors.New("MissingPropertyError: Certificate")
	})
	d := NewDispatcher(handler, handler, handler, sender)

	_ = d.Handle(context.Background(), testEvent(RequestCreate))

	resp := sender.responses[0]
	if !strings.HasPrefix(resp.Reason, "MissingPropertyError") {
		t.Errorf("reason = %q, want MissingPropertyError prefix", resp.Reason)
	}
	if resp.Data != nil {
		t.Errorf("failed response carries data %v", resp.Data)
	}
}

func TestDispatcher_UnsupportedRequestType(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(NoOp, NoOp, NoOp, sender)

	_ = d.Handle(context.Background(), testEvent("Rollback"))

	if len(sender.responses) != 1 {
		t.Fatalf("responses sent = %d, want 1", len(sender.responses))
	}
	if sender.responses[0].Status != StatusFailed {
		t.Errorf("status = %v, want FAILED", sender.responses[0].Status)
	}
}

func TestDispatcher_MissingHandler(t *testing.T) {
	sender := &recordingSender{}
	d := &Dispatcher{Create: NoOp, Sender: sender}

	_ = d.Handle(context.Background(), testEvent(RequestDelete))

	if got := sender.responses[0].Status; got != StatusFailed {
		t.Errorf("status = %v, want FAILED", got)
	}
}

func TestDispatcher_DeliveryFailurePropagates(t *testing.T) {
	deliveryErr := &DeliveryError{URL: "https://example.com/resp", StatusCode: 403}
	sender := &recordingSender{err: deliveryErr}
	d := NewDispatcher(NoOp, NoOp, NoOp, sender)

	err := d.Handle(context.Background(), testEvent(RequestDelete))

	var got *DeliveryError
	if !errors.As(err, &got) {
		t.Fatalf("Handle() error = %v, want DeliveryError", err)
	}
	if len(sender.responses) != 1 {
		t.Errorf("responses sent = %d, want 1 (no retry)", len(sender.responses))
	}
}

func TestDispatcher_ResponseMargin(t *testing.T) {
	sender := &recordingSender{}
	var handlerDeadline time.Time
	handler := HandlerFunc(func(ctx context.Context, event *Event) (map[string]string, error) {
		handlerDeadline, _ = ctx.Deadline()
		return nil, nil
	})
	d := NewDispatcher(handler, handler, handler, sender)
	d.ResponseMargin = 2 * time.Second

	deadline := time.Now().Add(time.Minute)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	if err := d.Handle(ctx, testEvent(RequestCreate)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if want := deadline.Add(-2 * time.Second); !handlerDeadline.Equal(want) {
		t.Errorf("handler deadline = %v, want %v", handlerDeadline, want)
	}
}

func TestEvent_PhysicalResourceID(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "existing physical id wins",
			event: Event{PhysicalResourceID: "phys", LogicalResourceID: "Logical", ResourceProperties: map[string]interface{}{"Key": "key"}},
			want:  "phys",
		},
		{
			name:  "key property",
			event: Event{LogicalResourceID: "Logical", ResourceProperties: map[string]interface{}{"Key": "key"}},
			want:  "key",
		},
		{
			name:  "logical id fallback",
			event: Event{LogicalResourceID: "Logical"},
			want:  "Logical",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.physicalResourceID(); got != tt.want {
				t.Errorf("physicalResourceID() = %v, want %v", got, tt.want)
			}
		})
	}
}
