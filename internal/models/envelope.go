// Package models defines the wire-level message types exchanged over the
// broker and the internal record shapes stored per resource.
package models

import "encoding/json"

// Message intentions carried in the msg_intention field of every request.
const (
	IntentionCreate         = "CREATE"
	IntentionRead           = "READ"
	IntentionUpdate         = "UPDATE"
	IntentionDelete         = "DELETE"
	IntentionDiscover       = "DISCOVER"
	IntentionDiscoverDelete = "DISCOVER_DELETE"
)

// Response status codes. These mirror HTTP semantics but travel inside the
// response envelope, not a transport header.
const (
	StatusSuccess = 200
	StatusFail    = 405
	StatusError   = 500
)

// Envelope is the intention-independent header present on every inbound
// request. The resource-specific payload is decoded separately once the
// routing key and intention have selected a concrete request type.
type Envelope struct {
	MsgID     int64  `json:"msg_id"`
	Intention string `json:"msg_intention"`
	UserID    string `json:"userID"`
	Status    int    `json:"status"`
	RequestID string `json:"requestID,omitempty"`
}

// ResponseEnvelope is the single response shape for CRUD intentions. Result
// holds either generated/affected ids (strings) or shallow resource records.
type ResponseEnvelope struct {
	MsgID     int64  `json:"msg_id"`
	Intention string `json:"msg_intention"`
	UserID    string `json:"userID"`
	Status    int    `json:"status"`
	RequestID string `json:"requestID,omitempty"`
	Result    []any  `json:"result"`
}

// DiscoverResponse reports how many local records reference a foreign asset.
type DiscoverResponse struct {
	MsgID     int64  `json:"msg_id"`
	Intention string `json:"msg_intention"`
	UserID    string `json:"userID"`
	Status    int    `json:"status"`
	RequestID string `json:"requestID,omitempty"`
	Modify    int    `json:"modify"`
	Restrict  int    `json:"restrict"`
}

// DiscoverDeleteResponse reports the outcome of removing or detaching every
// local record that referenced a deleted foreign asset.
type DiscoverDeleteResponse struct {
	MsgID      int64  `json:"msg_id"`
	Intention  string `json:"msg_intention"`
	UserID     string `json:"userID"`
	Status     int    `json:"status"`
	RequestID  string `json:"requestID,omitempty"`
	Modified   int    `json:"modified"`
	Restrict   int    `json:"restrict"`
	Successful bool   `json:"successful"`
}

// IDs converts a list of id strings into a Result slice.
func IDs(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// ParseEnvelope decodes just the envelope header from a raw message body.
func ParseEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
