package main

import (
	"errors"
	"log/slog"
	"net/http"

	"hiring-agents/internal/auth"
	"hiring-agents/internal/blob"
	"hiring-agents/internal/contract"
	"hiring-agents/internal/extract"
	"hiring-agents/internal/httputil"
	"hiring-agents/internal/llm"
	"hiring-agents/internal/pipeline"
	"hiring-agents/internal/store"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var empty *pipeline.EmptyInputError
	var unavailable *llm.ModelUnavailableError
	switch {
	case errors.As(err, &empty), errors.Is(err, extract.ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrCandidateNotFound), errors.Is(err, blob.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrEmailTaken):
		return http.StatusConflict
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case contract.IsViolation(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status statusFor picks for it.
func fail(log *slog.Logger, w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status != http.StatusInternalServerError {
		message = message + ": " + err.Error()
	}
	httputil.Fail(log, w, message, err, status)
}
