// Package cfn implements the CloudFormation custom resource protocol: the
// lifecycle event, the response callback, and the dispatcher that guarantees
// exactly one callback per event.
package cfn

// RequestType is the lifecycle phase of a custom resource event
type RequestType string

const (
	RequestCreate RequestType = "Create"
	RequestUpdate RequestType = "Update"
	RequestDelete RequestType = "Delete"
)

// Event is the custom resource request CloudFormation sends to the handler
type Event struct {
	RequestType           RequestType            `json:"RequestType"`
	RequestID             string                 `json:"RequestId"`
	ResponseURL           string                 `json:"ResponseURL"`
	ResourceType          string                 `json:"ResourceType"`
	PhysicalResourceID    string                 `json:"PhysicalResourceId,omitempty"`
	LogicalResourceID     string                 `json:"LogicalResourceId"`
	StackID               string                 `json:"StackId"`
	ServiceToken          string                 `json:"ServiceToken,omitempty"`
	ResourceProperties    map[string]interface{} `json:"ResourceProperties"`
	OldResourceProperties map[string]interface{} `json:"OldResourceProperties,omitempty"`
}

// physicalResourceID keeps the id CloudFormation already knows on Update and
// Delete. New resources use the "Key" property when present, else the logical id.
func (e *Event) physicalResourceID() string {
	if e.PhysicalResourceID != "" {
		return e.PhysicalResourceID
	}
	if key, ok := e.ResourceProperties["Key"].(string); ok && key != "" {
		return key
	}
	return e.LogicalResourceID
}
