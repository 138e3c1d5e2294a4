package validate

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sample struct {
	Title string   `json:"title" validate:"required,min=3"`
	Kind  string   `json:"kind" validate:"oneof=a b"`
	Items []string `json:"items" validate:"min=1"`
}

func TestCheckCollectsEveryViolation(t *testing.T) {
	err := Check(sample{Kind: "c", Items: []string{}})
	fe, ok := AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected FieldErrors, got %T: %v", err, err)
	}

	exp := FieldErrors{
		{Field: "title", Rule: "required", Message: "title is a required field"},
		{Field: "kind", Rule: "oneof", Message: "kind must be one of [a b]"},
		{Field: "items", Rule: "min", Message: "items must contain at least 1 item"},
	}
	if diff := cmp.Diff(exp, fe); diff != "" {
		t.Fatalf("wrong violations (-want +got):\n%s", diff)
	}
}

func TestCheckValid(t *testing.T) {
	if err := Check(sample{Title: "abc", Kind: "a", Items: []string{"x"}}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

type ruled struct {
	Code string `json:"code"`
}

func TestRulesAndPattern(t *testing.T) {
	v := New()
	if err := v.RegisterPattern("upper", regexp.MustCompile(`^[A-Z]+$`)); err != nil {
		t.Fatal(err)
	}
	v.RegisterRules([]Rule{{Field: "Code", Tags: "required,upper"}}, ruled{})

	if err := v.Check(ruled{Code: "ABC"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	fe, ok := AsFieldErrors(v.Check(ruled{Code: "abc"}))
	if !ok || len(fe) != 1 {
		t.Fatalf("expected one violation, got %v", fe)
	}
	if got, exp := fe[0].Message, "code must match the pattern ^[A-Z]+$"; got != exp {
		t.Fatalf("expected message %q, got %q", exp, got)
	}
	if !fe.Has("code") {
		t.Fatal("expected violation for code")
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in  string
		exp int64
		ok  bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseID(tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("ParseID(%q): unexpected error state %v", tt.in, err)
		}
		if got != tt.exp {
			t.Fatalf("ParseID(%q): expected %d, got %d", tt.in, tt.exp, got)
		}
	}
}
