package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"prize_wheel/internal/model"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrSessionNotFound, http.StatusNotFound},
		{model.ErrSessionClosed, http.StatusNotFound},
		{model.ErrWrongState, http.StatusConflict},
		{fmt.Errorf("spin: %w", model.ErrBusy), http.StatusConflict},
		{model.ErrInsufficientBalance, http.StatusPaymentRequired},
		{fmt.Errorf("%w: 9 outside [0,8)", model.ErrInvalidSlice), http.StatusBadRequest},
		{model.ErrTooManySessions, http.StatusServiceUnavailable},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusOf(tt.err); got != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, got)
		}
	}
}

func TestWriteErrorHidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.New("password=hunter2"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "hunter2") {
		t.Errorf("internal error leaked: %s", w.Body.String())
	}
}
