package onboarding

import (
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/go-playground/validator/v10"
	"reflect"
	"regexp"
	"sort"
	"strings"
	_ "time/tzdata"
)

var hmsPattern = regexp.MustCompile(`^([0-9]{1,2}):([0-5][0-9]):([0-5][0-9])$`)

// FieldErrors maps a json field name to a human readable message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}
	return strings.Join(parts, "; ")
}

// Validator checks step inputs and patches. It is safe for concurrent use.
type Validator struct {
	validate        *validator.Validate
	DefaultTimezone string
}

func NewValidator(defaultTimezone string) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("hms", func(fl validator.FieldLevel) bool {
		return hmsPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}

	return &Validator{
		validate:        v,
		DefaultTimezone: defaultTimezone,
	}
}

// Struct validates s and returns FieldErrors when any rule fails.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	out := make(FieldErrors, len(errs))
	for _, fe := range errs {
		field := fieldName(fe.Field())
		if _, seen := out[field]; !seen {
			out[field] = message(field, fe)
		}
	}
	return out
}

// ValidatePatch checks the values present in an arbitrary patch. Text values
// are checked trimmed, and required text may not be blank.
func (v *Validator) ValidatePatch(p profile.Patch) error {
	errs := FieldErrors{}
	if err := v.Struct(p.Normalize()); err != nil {
		if !errors.As(err, &errs) {
			return err
		}
	}

	required := []struct {
		field string
		value *string
	}{
		{"first_name", p.FirstName},
		{"last_name", p.LastName},
		{"goal_title", p.GoalTitle},
		{"goal_description", p.GoalDescription},
	}
	for _, r := range required {
		if r.value != nil && strings.TrimSpace(*r.value) == "" {
			errs[r.field] = message(r.field, nil)
		}
	}

	if len(errs) != 0 {
		return errs
	}
	return nil
}

func fieldName(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		return field[:i]
	}
	return field
}

// Required renders the missing fields of an incomplete profile.
func Required(fields []string) FieldErrors {
	out := make(FieldErrors, len(fields))
	for _, f := range fields {
		out[f] = message(f, nil)
	}
	return out
}
