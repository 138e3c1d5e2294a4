package validate

import (
	"errors"
	"strings"
)

// Violation describes one field failing one rule.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// FieldErrors is the full set of violations found in a payload.
type FieldErrors []Violation

func (fe FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe))
	for _, v := range fe {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

// Fields exposes the violations to the error logging middleware.
func (fe FieldErrors) Fields() map[string]interface{} {
	return map[string]interface{}{"violations": fe.Error()}
}

// Has reports whether any violation concerns field.
func (fe FieldErrors) Has(field string) bool {
	for _, v := range fe {
		if v.Field == field {
			return true
		}
	}
	return false
}

func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
