package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// UnavailableReason classifies why a model could not be invoked.
type UnavailableReason string

const (
	ReasonMissingCredentials UnavailableReason = "missing_credentials"
	ReasonAuth               UnavailableReason = "auth"
	ReasonTimeout            UnavailableReason = "timeout"
	ReasonRateLimited        UnavailableReason = "rate_limited"
	ReasonRejected           UnavailableReason = "rejected"
	ReasonUpstream           UnavailableReason = "upstream"
	ReasonCanceled           UnavailableReason = "canceled"
)

// ErrMissingCredentials is the cause of a ModelUnavailableError raised before
// any request is made because the provider API key is not configured.
var ErrMissingCredentials = errors.New("model provider credentials are not configured")

// ModelUnavailableError reports that the model endpoint could not produce a
// response: it was unreachable, rejected the credentials, or timed out.
type ModelUnavailableError struct {
	Provider   string
	Reason     UnavailableReason
	StatusCode int
	Err        error
}

func (e *ModelUnavailableError) Error() string {
	msg := fmt.Sprintf("model unavailable (provider=%s, reason=%s", e.Provider, e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(", status=%d", e.StatusCode)
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// Retryable reports whether resubmitting the same request may succeed.
func (e *ModelUnavailableError) Retryable() bool {
	switch e.Reason {
	case ReasonMissingCredentials, ReasonAuth, ReasonRejected, ReasonCanceled:
		return false
	}
	return true
}

func missingCredentials(provider string) error {
	return &ModelUnavailableError{Provider: provider, Reason: ReasonMissingCredentials, Err: ErrMissingCredentials}
}

// unavailable wraps a provider error. status is the HTTP status reported by
// the provider SDK, or 0 when the request never got a response.
func unavailable(ctx context.Context, provider string, status int, err error) error {
	e := &ModelUnavailableError{Provider: provider, StatusCode: status, Err: err}
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		e.Reason = ReasonTimeout
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		e.Reason = ReasonCanceled
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Reason = ReasonAuth
	case status == http.StatusTooManyRequests:
		e.Reason = ReasonRateLimited
	case status >= 400 && status < 500 && status != http.StatusRequestTimeout:
		e.Reason = ReasonRejected
	default:
		e.Reason = ReasonUpstream
	}
	return e
}
