package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestConstructorsMatchSentinels(t *testing.T) {
	cause := errors.New("connection reset")
	tests := map[string]struct {
		err    error
		target *AppError
		status int
	}{
		"database": {NewDatabaseError(cause), ErrDatabaseError, http.StatusInternalServerError},
		"external": {NewExternalAPIError(cause, "vision"), ErrExternalAPI, http.StatusBadGateway},
		"timeout":  {NewTimeoutError("lookup"), ErrTimeout, http.StatusGatewayTimeout},
		"internal": {NewInternalError(cause), ErrInternalServer, http.StatusInternalServerError},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.target)
			}
			if got := HTTPStatus(tt.err); got != tt.status {
				t.Errorf("HTTPStatus = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestWrappedCauseIsReachable(t *testing.T) {
	cause := errors.New("connection reset")
	if !errors.Is(NewDatabaseError(cause), cause) {
		t.Error("wrapped cause should match")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("route")
	if err.Message != "route not found" || err.Context["resource"] != "route" {
		t.Errorf("unexpected error %+v", err)
	}
	if HTTPStatus(err) != http.StatusNotFound {
		t.Errorf("HTTPStatus = %d", HTTPStatus(err))
	}
	if HTTPStatus(errors.New("plain")) != http.StatusInternalServerError {
		t.Error("foreign errors should map to 500")
	}
}
