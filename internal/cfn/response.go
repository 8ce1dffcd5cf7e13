package cfn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-logr/logr"
)

// Status is the outcome reported to CloudFormation
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Response is the payload PUT to the presigned ResponseURL
type Response struct {
	Status             Status            `json:"Status"`
	Reason             string            `json:"Reason,omitempty"`
	PhysicalResourceID string            `json:"PhysicalResourceId"`
	StackID            string            `json:"StackId"`
	RequestID          string            `json:"RequestId"`
	LogicalResourceID  string            `json:"LogicalResourceId"`
	Data               map[string]string `json:"Data,omitempty"`
}

// NewResponse builds the success or failure payload for event
func NewResponse(event *Event, data map[string]string, err error) *Response {
	resp := &Response{
		Status:             StatusSuccess,
		PhysicalResourceID: event.physicalResourceID(),
		StackID:            event.StackID,
		RequestID:          event.RequestID,
		LogicalResourceID:  event.LogicalResourceID,
		Data:               data,
	}
	if err != nil {
		resp.Status = StatusFailed
		resp.Reason = err.Error()
		resp.Data = nil
	}
	return resp
}

// DeliveryError is returned when the response could not be delivered to CloudFormation
type DeliveryError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("DeliveryError: failed to send response to %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("DeliveryError: response to %s rejected with status %d", e.URL, e.StatusCode)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Sender delivers a response to the caller-supplied callback URL
type Sender interface {
	Send(ctx context.Context, responseURL string, resp *Response) error
}

// HTTPSender sends responses with a single HTTPS PUT
type HTTPSender struct {
	Client *http.Client
}

// NewHTTPSender creates a sender whose requests are bounded by timeout
func NewHTTPSender(timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		Client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSender) Send(ctx context.Context, responseURL string, resp *Response) error {
	logger := logr.FromContextOrDiscard(ctx)
	target := redactURL(responseURL)

	body, err := json.Marshal(resp)
	if err != nil {
		return &DeliveryError{URL: target, Err: fmt.Errorf("failed to marshal response: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, responseURL, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{URL: target, Err: err}
	}
	// The presigned URL is signed without a content type
	req.Header.Set("Content-Type", "")
	req.ContentLength = int64(len(body))

	logger.Info("Sending response", "url", target, "status", resp.Status, "contentLength", len(body))

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return &DeliveryError{URL: target, Err: err}
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &DeliveryError{URL: target, StatusCode: res.StatusCode}
	}

	logger.Info("Sent response", "url", target, "httpStatus", res.StatusCode)
	return nil
}

// redactURL drops the query string, which carries the presigned signature
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
