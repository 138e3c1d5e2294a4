package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Rule binds a validator tag list to a struct field. Rules are registered per
// type so the constraints live in a table instead of struct tags.
type Rule struct {
	Field string
	Tags  string
}

// Validator wraps go-playground/validator with English messages and json
// field names.
type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	trans, _ := ut.New(en.New(), en.New()).GetTranslator("en")
	en_translations.RegisterDefaultTranslations(v, trans)

	return &Validator{v: v, trans: trans}
}

// RegisterRules installs the rule table for the given struct types. It must
// be called before the validator is used concurrently.
func (v *Validator) RegisterRules(rules []Rule, types ...any) {
	m := make(map[string]string, len(rules))
	for _, r := range rules {
		m[r.Field] = r.Tags
	}
	v.v.RegisterStructValidationMapRules(m, types...)
}

// RegisterPattern adds a string tag that passes when the value matches re.
func (v *Validator) RegisterPattern(tag string, re *regexp.Regexp) error {
	fn := func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
	if err := v.v.RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("registering %q validation: %w", tag, err)
	}

	err := v.v.RegisterTranslation(tag, v.trans,
		func(t ut.Translator) error {
			return t.Add(tag, "{0} must match the pattern {1}", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field(), re.String())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
	if err != nil {
		return fmt.Errorf("registering %q translation: %w", tag, err)
	}

	return nil
}

// Check validates val and reports every failing field, not just the first.
func (v *Validator) Check(val any) error {
	err := v.v.Struct(val)
	if err == nil {
		return nil
	}

	var verrors validator.ValidationErrors
	if !errors.As(err, &verrors) {
		return err
	}

	fe := make(FieldErrors, 0, len(verrors))
	for _, e := range verrors {
		fe = append(fe, Violation{
			Field:   e.Field(),
			Rule:    e.Tag(),
			Message: e.Translate(v.trans),
		})
	}
	if len(fe) == 0 {
		return nil
	}

	return fe
}

var std = New()

// Check validates val against its struct tags using the shared validator.
func Check(val any) error {
	return std.Check(val)
}

// ParseID parses a positive integer identifier.
func ParseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n < 1 {
		return 0, errors.New("ID is not in its proper form")
	}
	return n, nil
}
