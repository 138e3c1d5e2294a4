package course

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/irsalhamdi/course-catalog/validate"
)

// Query selects, orders and projects the records returned by List.
type Query struct {
	Filter Filter
	Sort   Sort
	Fields []string
}

type Filter struct {
	IsPublished *bool
	// Tags matches records carrying at least one of the listed tags.
	Tags []string
}

type Sort struct {
	Field string
	Desc  bool
}

var DefaultSort = Sort{Field: FieldName}

type listParams struct {
	IsPublished string   `json:"isPublished" validate:"omitempty,oneof=true false"`
	Tags        []string `json:"tags" validate:"dive,required"`
	Sort        string   `json:"sort" validate:"omitempty,oneof=id name category author date isPublished price"`
	Dir         string   `json:"dir" validate:"omitempty,oneof=asc desc"`
	Fields      []string `json:"fields" validate:"dive,oneof=id name category author tags date isPublished price"`
}

// ParseQuery reads list parameters from a query string. Tags and fields may
// be repeated or comma separated.
func ParseQuery(v url.Values) (Query, error) {
	p := listParams{
		IsPublished: v.Get("isPublished"),
		Tags:        splitList(v["tags"]),
		Sort:        v.Get("sort"),
		Dir:         strings.ToLower(v.Get("dir")),
		Fields:      splitList(v["fields"]),
	}

	if err := validate.Check(p); err != nil {
		return Query{}, err
	}

	q := Query{
		Filter: Filter{Tags: p.Tags},
		Sort:   DefaultSort,
		Fields: p.Fields,
	}
	if p.IsPublished != "" {
		b, _ := strconv.ParseBool(p.IsPublished)
		q.Filter.IsPublished = &b
	}
	if p.Sort != "" {
		q.Sort.Field = p.Sort
	}
	q.Sort.Desc = p.Dir == "desc"

	return q, nil
}

func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
