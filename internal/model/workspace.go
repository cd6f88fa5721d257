package model

import (
	"fmt"
	"time"
)

type WorkspaceTransition string

const (
	TransitionStart  WorkspaceTransition = "start"
	TransitionStop   WorkspaceTransition = "stop"
	TransitionDelete WorkspaceTransition = "delete"
)

type WorkspaceBuild struct {
	ID                string              `json:"id" yaml:"id"`
	BuildNumber       int                 `json:"build_number" yaml:"build_number"`
	TemplateVersionID string              `json:"template_version_id" yaml:"template_version_id"`
	Transition        WorkspaceTransition `json:"transition" yaml:"transition"`
	Status            string              `json:"status,omitempty" yaml:"status,omitempty"`
	CreatedAt         time.Time           `json:"created_at" yaml:"created_at"`
}

type Workspace struct {
	ID                              string         `json:"id" yaml:"id"`
	Name                            string         `json:"name" yaml:"name"`
	OwnerName                       string         `json:"owner_name" yaml:"owner_name"`
	TemplateName                    string         `json:"template_name,omitempty" yaml:"template_name,omitempty"`
	TemplateUseClassicParameterFlow bool           `json:"template_use_classic_parameter_flow" yaml:"template_use_classic_parameter_flow"`
	LatestBuild                     WorkspaceBuild `json:"latest_build" yaml:"latest_build"`
}

// FullName returns the owner-qualified workspace name, e.g. "alice/dev".
func (w Workspace) FullName() string {
	return w.OwnerName + "/" + w.Name
}

// SettingsParametersPath is where parameters are edited for templates that
// do not use the classic parameter flow.
func (w Workspace) SettingsParametersPath() string {
	return fmt.Sprintf("/@%s/%s/settings/parameters", w.OwnerName, w.Name)
}
