package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/khoahotran/portli/internal/domain/account"
	"github.com/khoahotran/portli/internal/domain/portfolio"
)

// Backend is the whole REST surface of the portfolio service.
type Backend interface {
	account.Gateway
	portfolio.Gateway
}

// APIError is a non-2xx answer from the backend. ErrorText and Message are
// the "error" and "message" fields of the body when they are strings.
type APIError struct {
	Status    int
	ErrorText string
	Message   string
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("backend status %d: %s", e.Status, e.Message)
	case e.ErrorText != "":
		return fmt.Sprintf("backend status %d: %s", e.Status, e.ErrorText)
	}
	return fmt.Sprintf("backend status %d", e.Status)
}

func NewAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return e
	}
	if s, ok := fields["error"].(string); ok {
		e.ErrorText = s
	}
	if s, ok := fields["message"].(string); ok {
		e.Message = s
	}
	return e
}

// Field selects which body field MessageOf reads.
type Field int

const (
	FieldError Field = iota
	FieldMessage
)

// MessageOf returns the first non-empty field of the backend error in err,
// in the order given, or fallback.
func MessageOf(err error, fallback string, fields ...Field) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return fallback
	}
	for _, f := range fields {
		switch f {
		case FieldError:
			if apiErr.ErrorText != "" {
				return apiErr.ErrorText
			}
		case FieldMessage:
			if apiErr.Message != "" {
				return apiErr.Message
			}
		}
	}
	return fallback
}

// StatusOf returns the HTTP status of the backend error in err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
