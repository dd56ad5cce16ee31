package xapi

import (
	"fmt"
	"strings"
)

const problemNotFound = "resource-not-found"

// APIError is an upstream failure: a non-2xx status, or a 2xx whose body
// carried only problems. Message is the raw body text, not parsed further.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("X API error: %d - %s", e.Status, e.Message)
}

// TransportError means no HTTP response was received at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("HTTP request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func onlyNotFound(problems []Problem) bool {
	if len(problems) == 0 {
		return false
	}
	for _, p := range problems {
		if !strings.HasSuffix(p.Type, problemNotFound) {
			return false
		}
	}
	return true
}

func describeProblems(problems []Problem) string {
	parts := make([]string, 0, len(problems))
	for _, p := range problems {
		msg := p.Title
		if p.Detail != "" {
			msg += ": " + p.Detail
		}
		parts = append(parts, msg)
	}
	return "API errors: " + strings.Join(parts, "; ")
}
