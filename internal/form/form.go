// Package form holds the edit state of a build options form and packages it
// into a build request.
package form

import (
	"github.com/tormodhaugland/wsb/internal/autofill"
	"github.com/tormodhaugland/wsb/internal/model"
)

// Controller tracks edits to the ephemeral parameters of one form. Fields are
// addressed by their index in schema order, not by name.
type Controller struct {
	params []model.TemplateVersionParameter
	values []model.AutofillBuildParameter
}

// New builds a controller from the full parameter schema and the autofill
// values returned by autofill.Resolve for that schema.
func New(schema []model.TemplateVersionParameter, values []model.AutofillBuildParameter) *Controller {
	params := autofill.Ephemeral(schema)
	state := make([]model.AutofillBuildParameter, len(values))
	copy(state, values)
	return &Controller{params: params, values: state}
}

// Autofill builds a controller whose initial state is resolved from the
// active build's parameter values.
func Autofill(schema []model.TemplateVersionParameter, prior []model.WorkspaceBuildParameter) *Controller {
	return New(schema, autofill.Resolve(schema, prior))
}

// Len returns the number of fields.
func (c *Controller) Len() int {
	return len(c.values)
}

// Parameters returns the ephemeral parameter definitions in field order.
func (c *Controller) Parameters() []model.TemplateVersionParameter {
	return c.params
}

// Values returns a copy of the current form state.
func (c *Controller) Values() []model.AutofillBuildParameter {
	out := make([]model.AutofillBuildParameter, len(c.values))
	copy(out, c.values)
	return out
}

// Value returns the field at index.
func (c *Controller) Value(index int) (model.AutofillBuildParameter, bool) {
	if index < 0 || index >= len(c.values) {
		return model.AutofillBuildParameter{}, false
	}
	return c.values[index], true
}

// IndexOf returns the field index for a parameter name, or -1.
func (c *Controller) IndexOf(name string) int {
	for i, v := range c.values {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// SetValue commits value to the field at index and marks it user_entered.
// An out-of-range index is a no-op; the return value reports whether
// anything changed so callers can log the programming error.
func (c *Controller) SetValue(index int, value string) bool {
	if index < 0 || index >= len(c.values) {
		return false
	}
	c.values[index] = model.AutofillBuildParameter{
		WorkspaceBuildParameter: model.WorkspaceBuildParameter{
			Name:  c.values[index].Name,
			Value: value,
		},
		Source: model.SourceUserEntered,
	}
	return true
}

// Submit returns the build request for the current state. Only name and
// value are kept; provenance stays in the form. No validation happens here.
func (c *Controller) Submit() []model.WorkspaceBuildParameter {
	req := make([]model.WorkspaceBuildParameter, len(c.values))
	for i, v := range c.values {
		req[i] = model.WorkspaceBuildParameter{Name: v.Name, Value: v.Value}
	}
	return req
}
