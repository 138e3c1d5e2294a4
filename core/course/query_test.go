package course

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/course-catalog/validate"
)

func TestParseQuery(t *testing.T) {
	published := true
	draftOnly := false

	tests := map[string]struct {
		raw string
		exp Query
	}{
		"empty": {
			raw: "",
			exp: Query{Sort: DefaultSort},
		},
		"published filter": {
			raw: "isPublished=true",
			exp: Query{Filter: Filter{IsPublished: &published}, Sort: DefaultSort},
		},
		"unpublished filter": {
			raw: "isPublished=false",
			exp: Query{Filter: Filter{IsPublished: &draftOnly}, Sort: DefaultSort},
		},
		"comma separated tags": {
			raw: "tags=backend,%20api",
			exp: Query{Filter: Filter{Tags: []string{"backend", "api"}}, Sort: DefaultSort},
		},
		"repeated tags": {
			raw: "tags=backend&tags=frontend",
			exp: Query{Filter: Filter{Tags: []string{"backend", "frontend"}}, Sort: DefaultSort},
		},
		"sort descending": {
			raw: "sort=price&dir=DESC",
			exp: Query{Sort: Sort{Field: FieldPrice, Desc: true}},
		},
		"projection": {
			raw: "fields=name,price",
			exp: Query{Sort: DefaultSort, Fields: []string{"name", "price"}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			v, err := url.ParseQuery(tc.raw)
			if err != nil {
				t.Fatal(err)
			}

			got, err := ParseQuery(v)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Fatalf("wrong query (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseQueryRejects(t *testing.T) {
	tests := map[string]string{
		"bad boolean":   "isPublished=yes",
		"unknown sort":  "sort=level",
		"bad direction": "dir=up",
		"unknown field": "fields=name,level",
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			v, _ := url.ParseQuery(raw)
			_, err := ParseQuery(v)
			if _, ok := validate.AsFieldErrors(err); !ok {
				t.Fatalf("expected FieldErrors, got %v", err)
			}
		})
	}
}

func TestProject(t *testing.T) {
	c := Course{
		ID:          3,
		Name:        "Node.js Course",
		Category:    "web",
		Tags:        []string{"backend"},
		Date:        time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		IsPublished: true,
		Price:       intPtr(25),
	}

	got := Project(c, []string{FieldName, FieldPrice, FieldAuthor})
	exp := map[string]any{
		FieldID:    int64(3),
		FieldName:  "Node.js Course",
		FieldPrice: 25,
	}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Fatalf("wrong projection (-want +got):\n%s", diff)
	}

	if got := Project(c, nil); len(got) != 7 {
		t.Fatalf("expected every set field, got %v", got)
	}
}
