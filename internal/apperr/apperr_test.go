package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromPassesThroughTypedErrors(t *testing.T) {
	orig := NotFound("load")
	wrapped := fmt.Errorf("fetching: %w", orig)

	got := From(wrapped)
	if got.Kind != KindNotFound {
		t.Fatalf("expected not_found, got %s", got.Kind)
	}
	if got != orig {
		t.Fatal("From should unwrap to the original typed error")
	}
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection refused")
	got := From(cause)

	if got.Kind != KindInternal {
		t.Fatalf("expected internal, got %s", got.Kind)
	}
	if got.Message != "internal server error" {
		t.Fatalf("client-facing message must stay generic, got %q", got.Message)
	}
	if !errors.Is(got, cause) {
		t.Fatal("cause must remain reachable via errors.Is")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:     http.StatusBadRequest,
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindNotFound:       http.StatusNotFound,
		KindConflict:       http.StatusConflict,
		KindInternal:       http.StatusInternalServerError,
		Kind("bogus"):      http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestValidationCarriesFields(t *testing.T) {
	err := Validation("request validation failed",
		FieldError{Field: "email", Message: "is required"},
		FieldError{Field: "password", Message: "must be at least 8 characters"},
	)
	if len(err.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Fields))
	}
	if err.Fields[0].Field != "email" {
		t.Fatalf("unexpected field order: %+v", err.Fields)
	}
}
