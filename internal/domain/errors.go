package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation    ErrorKind = "validation_error"
	KindConfiguration ErrorKind = "configuration_error"
	KindRejection     ErrorKind = "provider_rejection"
	KindTransport     ErrorKind = "transport_failure"
)

// Error is the structured failure carried by a DispatchOutcome.
// StatusCode and Body are only set for provider rejections.
type Error struct {
	Kind       ErrorKind       `json:"kind"`
	Message    string          `json:"message"`
	StatusCode int             `json:"statusCode,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
	Err        error           `json:"-"`
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.StatusCode)
	}
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Configuration(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

func Rejection(status int, msg string, body json.RawMessage) *Error {
	if msg == "" {
		msg = "provider rejected message"
	}
	return &Error{Kind: KindRejection, Message: msg, StatusCode: status, Body: body}
}

func Transport(err error) *Error {
	msg := "provider unreachable"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: KindTransport, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
