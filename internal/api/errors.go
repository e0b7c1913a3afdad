package api

import (
	"errors"
	"net/http"

	"prize_wheel/internal/model"
	"prize_wheel/pkg/resp"
)

// StatusOf maps game errors to HTTP status codes
func StatusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrSessionNotFound), errors.Is(err, model.ErrSessionClosed):
		return http.StatusNotFound
	case errors.Is(err, model.ErrWrongState), errors.Is(err, model.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, model.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, model.ErrInvalidSlice):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrTooManySessions):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError - internal errors are not exposed to the client
func WriteError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	resp.WriteError(w, status, msg)
}
