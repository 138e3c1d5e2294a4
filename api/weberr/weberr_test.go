package weberr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/course-catalog/validate"
)

func TestNotFound(t *testing.T) {
	base := errors.New("course[3] missing")
	err := NotFound(base)

	if !errors.Is(err, base) {
		t.Fatal("expected the wrapped error to be reachable")
	}

	body, status, ok := Response(err)
	if !ok {
		t.Fatal("expected a response")
	}
	if status != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, status)
	}
	if diff := cmp.Diff(&ErrorResponse{"the resource could not be found"}, body); diff != "" {
		t.Fatalf("wrong body (-want +got):\n%s", diff)
	}
}

func TestInvalid(t *testing.T) {
	fe := validate.FieldErrors{
		{Field: "name", Rule: "required", Message: "name is a required field"},
		{Field: "tags", Rule: "min", Message: "tags must contain at least 1 item"},
	}
	err := Invalid(fe)

	body, status, ok := Response(err)
	if !ok || status != http.StatusBadRequest {
		t.Fatalf("expected 400 response, got %d (%v)", status, ok)
	}

	exp := &ValidationResponse{Error: "validation failed", Violations: fe}
	if diff := cmp.Diff(exp, body); diff != "" {
		t.Fatalf("wrong body (-want +got):\n%s", diff)
	}

	fields, ok := Fields(err)
	if !ok || fields["violations"] != fe.Error() {
		t.Fatalf("expected violations in log fields, got %v", fields)
	}

	got, ok := validate.AsFieldErrors(err)
	if !ok || len(got) != 2 {
		t.Fatalf("expected field errors to be unwrapped, got %v", got)
	}
}

func TestWrapOrder(t *testing.T) {
	err := Wrap(errors.New("x"),
		WithFields(map[string]interface{}{"a": 1}),
		WithResponse("first", http.StatusTeapot),
	)

	body, status, _ := Response(err)
	if body != "first" || status != http.StatusTeapot {
		t.Fatalf("unexpected response %v %d", body, status)
	}
	if f, ok := Fields(err); !ok || f["a"] != 1 {
		t.Fatalf("unexpected fields %v", f)
	}
}

func TestFieldsMerge(t *testing.T) {
	err := Wrap(errors.New("x"),
		WithFields(map[string]interface{}{"a": 1, "b": 1}),
		WithFields(map[string]interface{}{"b": 2}),
	)

	f, ok := Fields(err)
	if !ok {
		t.Fatal("expected fields")
	}
	if diff := cmp.Diff(map[string]interface{}{"a": 1, "b": 2}, f); diff != "" {
		t.Fatalf("wrong fields (-want +got):\n%s", diff)
	}

	if _, ok := Fields(errors.New("plain")); ok {
		t.Fatal("expected no fields on a plain error")
	}
}
