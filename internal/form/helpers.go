package form

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tormodhaugland/wsb/internal/model"
)

// FieldHelpers is what a renderer needs to draw and validate one field.
type FieldHelpers struct {
	Index     int
	Parameter model.TemplateVersionParameter
	Value     model.AutofillBuildParameter
	Validate  func(value string) error
}

// Helpers looks up the definition, current value and validator of a field.
func (c *Controller) Helpers(index int) (FieldHelpers, bool) {
	v, ok := c.Value(index)
	if !ok || index >= len(c.params) {
		return FieldHelpers{}, false
	}
	p := c.params[index]
	return FieldHelpers{
		Index:     index,
		Parameter: p,
		Value:     v,
		Validate: func(value string) error {
			return ValidateValue(p, value)
		},
	}, true
}

// InvalidValueError indicates a value does not satisfy its parameter schema.
type InvalidValueError struct {
	Name   string
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("invalid value %q for %s: %s", e.Value, e.Name, e.Reason)
}

// ValidateValue checks value against what the parameter schema declares.
// The schema's validation_error, when set, replaces the generic reason for
// range and pattern failures.
func ValidateValue(p model.TemplateVersionParameter, value string) error {
	if value == "" {
		if p.Required && p.DefaultValue == "" {
			return &InvalidValueError{Name: p.Label(), Reason: "a value is required"}
		}
		return nil
	}

	fail := func(reason string) error {
		return &InvalidValueError{Name: p.Label(), Value: value, Reason: reason}
	}
	custom := func(reason string) error {
		if p.ValidationError != "" {
			reason = p.ValidationError
		}
		return fail(reason)
	}

	switch p.Type {
	case model.ParameterTypeNumber:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fail("must be a number")
		}
		if p.ValidationMin != nil && n < int(*p.ValidationMin) {
			return custom(fmt.Sprintf("must be at least %d", *p.ValidationMin))
		}
		if p.ValidationMax != nil && n > int(*p.ValidationMax) {
			return custom(fmt.Sprintf("must be at most %d", *p.ValidationMax))
		}
	case model.ParameterTypeBool:
		if value != "true" && value != "false" {
			return fail("must be true or false")
		}
	}

	if len(p.Options) > 0 && p.Type != model.ParameterTypeListString {
		allowed := make([]string, len(p.Options))
		found := false
		for i, o := range p.Options {
			allowed[i] = o.Value
			if o.Value == value {
				found = true
			}
		}
		if !found {
			return fail("must be one of: " + strings.Join(allowed, ", "))
		}
	}

	if p.ValidationRegex != "" && p.Type != model.ParameterTypeNumber {
		re, err := regexp.Compile(p.ValidationRegex)
		if err != nil {
			return fail(fmt.Sprintf("invalid validation pattern %q", p.ValidationRegex))
		}
		if !re.MatchString(value) {
			return custom("does not match pattern " + p.ValidationRegex)
		}
	}

	return nil
}
