package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldError is one server-side validation complaint. Field uses the
// server's naming ("organizerId", "batches[2].price"); it may be empty.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldRejection is returned when the service rejected the payload as
// invalid (422, or 400 carrying field errors).
type FieldRejection struct {
	StatusCode int
	Message    string
	Fields     []FieldError
}

func (e *FieldRejection) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: payload rejected (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: payload rejected (%d): %d field error(s)", e.StatusCode, len(e.Fields))
}

// StatusError is any other non-2xx response. Message is the server's message
// when the body carried one.
type StatusError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: unexpected status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: unexpected status %d", e.StatusCode)
}

// errorBody is the JSON error envelope of the service. message is either a
// string or a list of strings.
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Errors  []FieldError    `json:"errors"`
}

func (b errorBody) text() string {
	if len(b.Message) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Message, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(b.Message, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}
