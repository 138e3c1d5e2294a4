package course

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/course-catalog/validate"
)

var fixedNow = time.Date(2024, 3, 1, 10, 30, 0, 123456789, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine("", WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("building engine: %v", err)
	}
	return e
}

func validCandidate() map[string]any {
	return map[string]any{
		"name":     "Node.js Course",
		"category": "web",
		"tags":     []any{"frontend", "backend"},
	}
}

func with(m map[string]any, kv ...any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for i := 0; i < len(kv); i += 2 {
		out[kv[i].(string)] = kv[i+1]
	}
	return out
}

func without(m map[string]any, keys ...string) map[string]any {
	out := with(m)
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

type violation struct {
	Field string
	Rule  string
}

func violations(t *testing.T, err error) []violation {
	t.Helper()
	fe, ok := validate.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected FieldErrors, got %T: %v", err, err)
	}
	out := make([]violation, 0, len(fe))
	for _, v := range fe {
		out = append(out, violation{Field: v.Field, Rule: v.Rule})
	}
	return out
}

func TestValidateAccepts(t *testing.T) {
	e := newTestEngine(t)

	tests := map[string]struct {
		candidate map[string]any
		exp       Course
	}{
		"minimal": {
			candidate: validCandidate(),
			exp: Course{
				Name:     "Node.js Course",
				Category: "web",
				Tags:     []string{"frontend", "backend"},
				Date:     fixedNow.Truncate(time.Millisecond),
			},
		},
		"category lowercased": {
			candidate: with(validCandidate(), "category", "WEB"),
			exp: Course{
				Name:     "Node.js Course",
				Category: "web",
				Tags:     []string{"frontend", "backend"},
				Date:     fixedNow.Truncate(time.Millisecond),
			},
		},
		"published with price": {
			candidate: with(validCandidate(), "isPublished", true, "price", 15.0, "author", "Mosh"),
			exp: Course{
				Name:        "Node.js Course",
				Category:    "web",
				Author:      "Mosh",
				Tags:        []string{"frontend", "backend"},
				Date:        fixedNow.Truncate(time.Millisecond),
				IsPublished: true,
				Price:       intPtr(15),
			},
		},
		"price rounded up": {
			candidate: with(validCandidate(), "price", 17.6),
			exp: Course{
				Name:     "Node.js Course",
				Category: "web",
				Tags:     []string{"frontend", "backend"},
				Date:     fixedNow.Truncate(time.Millisecond),
				Price:    intPtr(18),
			},
		},
		"price rounded down": {
			candidate: with(validCandidate(), "price", json.Number("17.4")),
			exp: Course{
				Name:     "Node.js Course",
				Category: "web",
				Tags:     []string{"frontend", "backend"},
				Date:     fixedNow.Truncate(time.Millisecond),
				Price:    intPtr(17),
			},
		},
		"price just under minimum rounds into range": {
			candidate: with(validCandidate(), "price", 9.5),
			exp: Course{
				Name:     "Node.js Course",
				Category: "web",
				Tags:     []string{"frontend", "backend"},
				Date:     fixedNow.Truncate(time.Millisecond),
				Price:    intPtr(10),
			},
		},
		"explicit date": {
			candidate: with(validCandidate(), "date", "2023-05-04T12:00:00.5+02:00"),
			exp: Course{
				Name:     "Node.js Course",
				Category: "web",
				Tags:     []string{"frontend", "backend"},
				Date:     time.Date(2023, 5, 4, 10, 0, 0, 500000000, time.UTC),
			},
		},
		"null optional fields are absent": {
			candidate: with(validCandidate(), "author", nil, "price", nil),
			exp: Course{
				Name:     "Node.js Course",
				Category: "web",
				Tags:     []string{"frontend", "backend"},
				Date:     fixedNow.Truncate(time.Millisecond),
			},
		},
		"id ignored": {
			candidate: with(validCandidate(), "id", 99.0),
			exp: Course{
				Name:     "Node.js Course",
				Category: "web",
				Tags:     []string{"frontend", "backend"},
				Date:     fixedNow.Truncate(time.Millisecond),
			},
		},
		"unicode name": {
			candidate: with(validCandidate(), "name", "Programación Web"),
			exp: Course{
				Name:     "Programación Web",
				Category: "web",
				Tags:     []string{"frontend", "backend"},
				Date:     fixedNow.Truncate(time.Millisecond),
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := e.Validate(tc.candidate)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Fatalf("wrong course (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateRejects(t *testing.T) {
	e := newTestEngine(t)

	tests := map[string]struct {
		candidate map[string]any
		exp       []violation
	}{
		"name missing": {
			candidate: without(validCandidate(), "name"),
			exp:       []violation{{"name", "required"}},
		},
		"name too short": {
			candidate: with(validCandidate(), "name", "Node"),
			exp:       []violation{{"name", "min"}},
		},
		"name too long": {
			candidate: with(validCandidate(), "name", strings.Repeat("a", 256)),
			exp:       []violation{{"name", "max"}},
		},
		"name pattern": {
			candidate: with(validCandidate(), "name", "  leading space"),
			exp:       []violation{{"name", namePatternTag}},
		},
		"name wrong type": {
			candidate: with(validCandidate(), "name", 12345.0),
			exp:       []violation{{"name", "type"}},
		},
		"category unknown": {
			candidate: with(validCandidate(), "category", "cooking"),
			exp:       []violation{{"category", "oneof"}},
		},
		"category missing": {
			candidate: without(validCandidate(), "category"),
			exp:       []violation{{"category", "required"}},
		},
		"tags missing": {
			candidate: without(validCandidate(), "tags"),
			exp:       []violation{{"tags", "required"}},
		},
		"tags empty": {
			candidate: with(validCandidate(), "tags", []any{}),
			exp:       []violation{{"tags", "min"}},
		},
		"tags null": {
			candidate: with(validCandidate(), "tags", nil),
			exp:       []violation{{"tags", "required"}},
		},
		"tag element empty": {
			candidate: with(validCandidate(), "tags", []any{"ok", ""}),
			exp:       []violation{{"tags[1]", "required"}},
		},
		"tags wrong element type": {
			candidate: with(validCandidate(), "tags", []any{"ok", 3.0}),
			exp:       []violation{{"tags", "type"}},
		},
		"published without price": {
			candidate: with(validCandidate(), "isPublished", true),
			exp:       []violation{{"price", "required_if_published"}},
		},
		"price below range": {
			candidate: with(validCandidate(), "price", 9.4),
			exp:       []violation{{"price", "gte"}},
		},
		"price above range": {
			candidate: with(validCandidate(), "price", 200.5),
			exp:       []violation{{"price", "lte"}},
		},
		"price wrong type": {
			candidate: with(validCandidate(), "price", "15"),
			exp:       []violation{{"price", "type"}},
		},
		"published with price of wrong type": {
			candidate: with(validCandidate(), "isPublished", true, "price", "15"),
			exp:       []violation{{"price", "type"}},
		},
		"isPublished wrong type": {
			candidate: with(validCandidate(), "isPublished", "yes"),
			exp:       []violation{{"isPublished", "type"}},
		},
		"date malformed": {
			candidate: with(validCandidate(), "date", "yesterday"),
			exp:       []violation{{"date", "type"}},
		},
		"unknown key": {
			candidate: with(validCandidate(), "level", "beginner"),
			exp:       []violation{{"level", "unknown"}},
		},
		"unknown key with null value": {
			candidate: with(validCandidate(), "level", nil),
			exp:       []violation{{"level", "unknown"}},
		},
		"every violation reported": {
			candidate: map[string]any{
				"name":        "abc",
				"category":    "cooking",
				"tags":        []any{},
				"isPublished": true,
			},
			exp: []violation{
				{"name", "min"},
				{"category", "oneof"},
				{"tags", "min"},
				{"price", "required_if_published"},
			},
		},
		"empty candidate": {
			candidate: map[string]any{},
			exp: []violation{
				{"name", "required"},
				{"category", "required"},
				{"tags", "required"},
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := e.Validate(tc.candidate)
			if diff := cmp.Diff(tc.exp, violations(t, err)); diff != "" {
				t.Fatalf("wrong violations (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateMessages(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Validate(with(validCandidate(), "isPublished", true, "name", "abc"))
	fe, ok := validate.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected FieldErrors, got %T: %v", err, err)
	}

	exp := []string{
		"name must be at least 5 characters in length",
		"price is required when isPublished is true",
	}
	var got []string
	for _, v := range fe {
		got = append(got, v.Message)
	}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Fatalf("wrong messages (-want +got):\n%s", diff)
	}
}

func TestNewEngineCustomPattern(t *testing.T) {
	e, err := NewEngine(`^[A-Z][a-z ]+$`)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.Validate(with(validCandidate(), "name", "Basics of go")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_, err = e.Validate(with(validCandidate(), "name", "basics of go"))
	if diff := cmp.Diff([]violation{{"name", namePatternTag}}, violations(t, err)); diff != "" {
		t.Fatalf("wrong violations (-want +got):\n%s", diff)
	}

	if _, err := NewEngine(`([`); err == nil {
		t.Fatal("expected an error for an invalid pattern")
	}
}

func TestRoundPrice(t *testing.T) {
	tests := []struct {
		in  float64
		exp int
	}{
		{17.6, 18},
		{17.4, 17},
		{17.5, 18},
		{-0.5, 0},
		{1e12, 1<<31 - 1},
		{-1e12, -1 << 31},
	}

	for _, tc := range tests {
		if got := roundPrice(tc.in); got != tc.exp {
			t.Errorf("roundPrice(%v): expected %d, got %d", tc.in, tc.exp, got)
		}
	}
}

func intPtr(v int) *int { return &v }
