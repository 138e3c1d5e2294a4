package course

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/irsalhamdi/course-catalog/validate"
)

// DefaultNamePattern accepts names that start with a letter or digit and
// continue with letters, digits, spaces and common punctuation.
const DefaultNamePattern = `^[\p{L}\p{N}][\p{L}\p{N}\s\-_.,:;!?'"&+#()/]*$`

const namePatternTag = "coursename"

// draft is the normalized candidate the rule table runs against.
type draft struct {
	Name        *string   `json:"name"`
	Category    *string   `json:"category"`
	Author      *string   `json:"author"`
	Tags        []string  `json:"tags"`
	Date        time.Time `json:"date"`
	IsPublished bool      `json:"isPublished"`
	Price       *int      `json:"price"`
}

var fieldRules = []validate.Rule{
	{Field: "Name", Tags: "required,min=5,max=255," + namePatternTag},
	{Field: "Category", Tags: "required,oneof=web mobile network"},
	{Field: "Tags", Tags: "required,min=1,dive,required"},
	{Field: "Price", Tags: "omitempty,gte=10,lte=200"},
}

type crossRule struct {
	Field   string
	Rule    string
	Message string
	Broken  func(d draft) bool
}

// crossRules run after every per-field rule has been evaluated.
var crossRules = []crossRule{
	{
		Field:   FieldPrice,
		Rule:    "required_if_published",
		Message: "price is required when isPublished is true",
		Broken:  func(d draft) bool { return d.IsPublished && d.Price == nil },
	},
}

// Engine turns untyped payloads into normalized courses.
type Engine struct {
	v   *validate.Validator
	now func() time.Time
}

type EngineOpt func(*Engine)

func WithClock(now func() time.Time) EngineOpt {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds an engine enforcing namePattern on course names. An empty
// pattern selects DefaultNamePattern.
func NewEngine(namePattern string, opts ...EngineOpt) (*Engine, error) {
	if namePattern == "" {
		namePattern = DefaultNamePattern
	}
	re, err := regexp.Compile(namePattern)
	if err != nil {
		return nil, fmt.Errorf("compiling name pattern: %w", err)
	}

	v := validate.New()
	if err := v.RegisterPattern(namePatternTag, re); err != nil {
		return nil, err
	}
	v.RegisterRules(fieldRules, draft{})

	e := &Engine{v: v, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Validate checks candidate and returns the normalized course, or
// validate.FieldErrors listing every violation. The returned course has no id.
func (e *Engine) Validate(candidate map[string]any) (Course, error) {
	d, fe := e.decode(candidate)

	bad := make(map[string]bool, len(fe))
	for _, v := range fe {
		bad[v.Field] = true
	}

	if err := e.v.Check(d); err != nil {
		rerrs, ok := validate.AsFieldErrors(err)
		if !ok {
			return Course{}, fmt.Errorf("checking course rules: %w", err)
		}
		for _, v := range rerrs {
			if !bad[rootField(v.Field)] {
				fe = append(fe, v)
			}
		}
	}

	for _, r := range crossRules {
		if !bad[r.Field] && r.Broken(d) {
			fe = append(fe, validate.Violation{Field: r.Field, Rule: r.Rule, Message: r.Message})
		}
	}

	if len(fe) > 0 {
		return Course{}, fe
	}

	c := Course{
		Name:        *d.Name,
		Category:    *d.Category,
		Tags:        d.Tags,
		Date:        d.Date,
		IsPublished: d.IsPublished,
		Price:       d.Price,
	}
	if d.Author != nil {
		c.Author = *d.Author
	}
	return c, nil
}

// decode type-checks each key of the candidate and applies normalization:
// lowercase category, price rounded half-up, date defaulted to now.
func (e *Engine) decode(candidate map[string]any) (draft, validate.FieldErrors) {
	var (
		d  draft
		fe validate.FieldErrors
	)

	typeErr := func(field, want string) {
		fe = append(fe, validate.Violation{
			Field:   field,
			Rule:    "type",
			Message: fmt.Sprintf("%s must be %s", field, want),
		})
	}

	keys := make([]string, 0, len(candidate))
	for k := range candidate {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !isField(k) {
			fe = append(fe, validate.Violation{
				Field:   k,
				Rule:    "unknown",
				Message: k + " is not allowed",
			})
			continue
		}

		val := candidate[k]
		if val == nil {
			continue
		}

		switch k {
		case FieldID:

		case FieldName, FieldCategory, FieldAuthor:
			s, ok := val.(string)
			if !ok {
				typeErr(k, "a string")
				continue
			}
			switch k {
			case FieldName:
				d.Name = &s
			case FieldCategory:
				s = strings.ToLower(s)
				d.Category = &s
			case FieldAuthor:
				d.Author = &s
			}

		case FieldTags:
			tags, ok := toStrings(val)
			if !ok {
				typeErr(k, "an array of strings")
				continue
			}
			d.Tags = tags

		case FieldDate:
			t, ok := toTime(val)
			if !ok {
				typeErr(k, "an RFC 3339 timestamp")
				continue
			}
			d.Date = t

		case FieldIsPublished:
			b, ok := val.(bool)
			if !ok {
				typeErr(k, "a boolean")
				continue
			}
			d.IsPublished = b

		case FieldPrice:
			f, ok := toFloat(val)
			if !ok {
				typeErr(k, "a number")
				continue
			}
			p := roundPrice(f)
			d.Price = &p
		}
	}

	if d.Date.IsZero() {
		d.Date = e.now()
	}
	d.Date = d.Date.UTC().Truncate(time.Millisecond)

	return d, fe
}

// roundPrice rounds half-up to the nearest integer, clamping values that do
// not fit so the range rule still reports them.
func roundPrice(f float64) int {
	r := math.Floor(f + 0.5)
	switch {
	case r > math.MaxInt32:
		return math.MaxInt32
	case r < math.MinInt32:
		return math.MinInt32
	}
	return int(r)
}

func isField(name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

func rootField(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		return field[:i]
	}
	return field
}

func toStrings(val any) ([]string, bool) {
	switch v := val.(type) {
	case []string:
		return append([]string{}, v...), true
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			s, ok := it.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func toTime(val any) (time.Time, bool) {
	switch v := val.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

func toFloat(val any) (float64, bool) {
	var f float64
	switch v := val.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
