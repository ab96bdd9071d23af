package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Optional is a tri-state update field: absent, explicit null, or a value.
// An explicit null clears the stored field, which is how dangling references
// are detached when a foreign asset is deleted.
type Optional[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// Some returns an Optional carrying a value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Present: true, Value: v}
}

// Clear returns an Optional carrying an explicit null.
func Clear[T any]() Optional[T] {
	return Optional[T]{Present: true, Null: true}
}

// UnmarshalJSON records whether the field carried null or a value. Absent
// fields never reach this method, leaving Present false.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(data, []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON emits null for cleared values.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// IDList accepts either a single id string or an array of id strings on the
// wire. Any other JSON shape is a pre-condition violation and is rejected
// rather than guessed at.
type IDList struct {
	IDs    []string
	Scalar bool
}

// UnmarshalJSON decodes the scalar-or-array id filter.
func (l *IDList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &ClientError{Message: "invalid id filter"}
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		l.IDs = []string{s}
		l.Scalar = true
		return nil
	case '[':
		l.Scalar = false
		return json.Unmarshal(trimmed, &l.IDs)
	default:
		return &ClientError{Message: "invalid id filter"}
	}
}

// MarshalJSON restores the original scalar or array form.
func (l IDList) MarshalJSON() ([]byte, error) {
	if l.Scalar && len(l.IDs) == 1 {
		return json.Marshal(l.IDs[0])
	}
	return json.Marshal(l.IDs)
}

// Single returns the id when the filter was supplied in scalar form.
func (l IDList) Single() (string, bool) {
	if l.Scalar && len(l.IDs) == 1 {
		return l.IDs[0], true
	}
	return "", false
}

// ClientError marks a failure whose message is safe to echo back to the
// requesting client in a FAIL envelope. Anything else is masked.
type ClientError struct {
	Message string
}

func (e *ClientError) Error() string {
	return e.Message
}

// NewClientError builds a client-facing error with a formatted message.
func NewClientError(format string, args ...any) *ClientError {
	return &ClientError{Message: fmt.Sprintf(format, args...)}
}

// IsClientFacing reports whether err (or anything it wraps) is a ClientError.
func IsClientFacing(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce)
}
