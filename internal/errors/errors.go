package apierrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindConfiguration Kind = "configuration"
	KindUpstream      Kind = "upstream"
	KindInternal      Kind = "internal"
)

const internalMessage = "Internal server error"

// Error is the gateway's classified failure. Message is safe to show to
// callers; Err holds the cause for logs only.
type Error struct {
	Kind     Kind
	Message  string
	Provider string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *Error) StatusCode() int {
	if e.Kind == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func Validation(message string, err error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: err}
}

func Configuration(message string, err error) *Error {
	return &Error{Kind: KindConfiguration, Message: message, Err: err}
}

func Upstream(provider, message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Provider: provider, Err: err}
}

// Internal hides err behind a generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: internalMessage, Err: err}
}

// From classifies any error; unclassified errors become internal.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}

type Envelope struct {
	Error string `json:"error"`
}

func Marshal(message string) []byte {
	if strings.TrimSpace(message) == "" {
		message = "request failed"
	}
	body, err := json.Marshal(Envelope{Error: message})
	if err != nil {
		return []byte(`{"error":"failed to marshal error"}`)
	}
	return body
}

func Write(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(Marshal(message))
}

func WriteError(w http.ResponseWriter, err *Error) {
	Write(w, err.StatusCode(), err.Message)
}
