package model

type ParameterType string

const (
	ParameterTypeString     ParameterType = "string"
	ParameterTypeNumber     ParameterType = "number"
	ParameterTypeBool       ParameterType = "bool"
	ParameterTypeListString ParameterType = "list(string)"
)

type TemplateVersionParameterOption struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Value       string `json:"value" yaml:"value"`
}

// TemplateVersionParameter is a parameter declared by a template version.
// Name is the identity; everything else is display and validation metadata.
type TemplateVersionParameter struct {
	Name            string                           `json:"name" yaml:"name"`
	DisplayName     string                           `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Description     string                           `json:"description,omitempty" yaml:"description,omitempty"`
	Type            ParameterType                    `json:"type,omitempty" yaml:"type,omitempty"`
	Mutable         bool                             `json:"mutable" yaml:"mutable"`
	DefaultValue    string                           `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	Options         []TemplateVersionParameterOption `json:"options,omitempty" yaml:"options,omitempty"`
	ValidationRegex string                           `json:"validation_regex,omitempty" yaml:"validation_regex,omitempty"`
	ValidationMin   *int32                           `json:"validation_min,omitempty" yaml:"validation_min,omitempty"`
	ValidationMax   *int32                           `json:"validation_max,omitempty" yaml:"validation_max,omitempty"`
	ValidationError string                           `json:"validation_error,omitempty" yaml:"validation_error,omitempty"`
	Required        bool                             `json:"required" yaml:"required"`
	Ephemeral       bool                             `json:"ephemeral" yaml:"ephemeral"`
}

// Label is the display name, falling back to the parameter name.
func (p TemplateVersionParameter) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

type WorkspaceBuildParameter struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// AutofillSource records where an autofilled value came from. It is a
// display concern and never leaves the form.
type AutofillSource string

const (
	SourceActiveBuild AutofillSource = "active_build"
	SourceUserEntered AutofillSource = "user_entered"
	SourceDefault     AutofillSource = "default"
)

type AutofillBuildParameter struct {
	WorkspaceBuildParameter
	Source AutofillSource `json:"source"`
}

// WorkspaceParameters is the combined answer to "what can be set on the next
// build and what was used on the last one".
type WorkspaceParameters struct {
	TemplateVersionRichParameters []TemplateVersionParameter `json:"template_version_rich_parameters"`
	BuildParameters               []WorkspaceBuildParameter  `json:"build_parameters"`
}
