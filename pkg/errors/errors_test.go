package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("store write failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("expected errors.Is to unwrap to the original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestConflictStatus(t *testing.T) {
	err := Conflict("booking is no longer available")
	if err.StatusCode() != http.StatusConflict {
		t.Errorf("expected 409, got %d", err.StatusCode())
	}
}

func TestUnavailableStatus(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := Unavailable("assignment could not be confirmed", cause)
	if err.StatusCode() != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", err.StatusCode())
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be preserved")
	}
}

func TestAsAppError(t *testing.T) {
	plain := errors.New("boom")
	appErr := AsAppError(plain)
	if appErr.Code != CodeInternal {
		t.Errorf("expected plain errors to map to %s, got %s", CodeInternal, appErr.Code)
	}

	conflict := Conflict("lost the race")
	if AsAppError(conflict) != conflict {
		t.Errorf("expected AppError to pass through unchanged")
	}
}
