package authservice

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a failed Auth Service call carrying the HTTP status so callers
// can classify it.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth service: %s (status %d)", e.Message, e.Status)
}

func asAPIError(err error, target **APIError) bool {
	return errors.As(err, target)
}

// IsConflict reports whether err is an Auth Service uniqueness/conflict
// failure, e.g. losing the slug race between check and create.
func IsConflict(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusConflict ||
		apiErr.Code == "ORGANIZATION_ALREADY_EXISTS" ||
		apiErr.Code == "SLUG_IS_TAKEN"
}

// Kind is the user-facing category of a classified Auth Service failure.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindNotFound
	KindUpstream
)

// ClassifiedError is an Auth Service failure mapped into a user-facing
// category with a message safe to relay.
type ClassifiedError struct {
	Kind    Kind
	Message string
}

func (e *ClassifiedError) Error() string {
	return e.Message
}

// Classify maps an Auth Service failure into a user-facing category per its
// status: bad request, unauthorized/forbidden and not-found get fixed
// messages; anything else relays the upstream message. Non-APIError failures
// pass through unchanged so callers can treat them as unclassified.
func Classify(err error, action string) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Status {
	case http.StatusBadRequest:
		return &ClassifiedError{Kind: KindBadRequest, Message: "invalid request data"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ClassifiedError{Kind: KindUnauthorized, Message: fmt.Sprintf("unauthorized to %s", action)}
	case http.StatusNotFound:
		return &ClassifiedError{Kind: KindNotFound, Message: "organization or member not found"}
	default:
		message := apiErr.Message
		if message == "" {
			message = fmt.Sprintf("failed to %s", action)
		}
		return &ClassifiedError{Kind: KindUpstream, Message: message}
	}
}
