package doctor

import (
	"context"
	"fmt"

	"github.com/tormodhaugland/wsb/internal/autofill"
	"github.com/tormodhaugland/wsb/internal/client"
	"github.com/tormodhaugland/wsb/internal/form"
	"github.com/tormodhaugland/wsb/internal/model"
)

type ProblemKind string

const (
	// The template version or build parameters could not be fetched.
	ProblemUnreachable ProblemKind = "unreachable"
	// The active build carries a value for a parameter the template no
	// longer declares.
	ProblemStaleValue ProblemKind = "stale_value"
	// An ephemeral parameter would be prefilled with a value that fails
	// its validation.
	ProblemInvalidValue ProblemKind = "invalid_value"
)

type Problem struct {
	Workspace string      `json:"workspace"`
	Kind      ProblemKind `json:"kind"`
	Parameter string      `json:"parameter,omitempty"`
	Detail    string      `json:"detail"`
}

// FindProblems loads every workspace's parameters the way the build options
// popover would and reports what would surprise the operator.
func FindProblems(ctx context.Context, src client.Source) ([]Problem, error) {
	workspaces, err := src.Workspaces(ctx)
	if err != nil {
		return nil, err
	}

	problems := make([]Problem, 0)
	for _, ws := range workspaces {
		problems = append(problems, CheckWorkspace(ctx, src, ws)...)
	}
	return problems, nil
}

func CheckWorkspace(ctx context.Context, src client.Source, ws model.Workspace) []Problem {
	name := ws.FullName()

	wp, err := client.GetWorkspaceParameters(ctx, src, ws)
	if err != nil {
		return []Problem{{Workspace: name, Kind: ProblemUnreachable, Detail: err.Error()}}
	}

	var problems []Problem

	declared := make(map[string]bool, len(wp.TemplateVersionRichParameters))
	for _, p := range wp.TemplateVersionRichParameters {
		declared[p.Name] = true
	}
	for _, v := range wp.BuildParameters {
		if !declared[v.Name] {
			problems = append(problems, Problem{
				Workspace: name,
				Kind:      ProblemStaleValue,
				Parameter: v.Name,
				Detail:    fmt.Sprintf("build %s has a value for a parameter the template does not declare", ws.LatestBuild.ID),
			})
		}
	}

	ephemeral := autofill.Ephemeral(wp.TemplateVersionRichParameters)
	values := autofill.Resolve(wp.TemplateVersionRichParameters, wp.BuildParameters)
	for i, v := range values {
		if err := form.ValidateValue(ephemeral[i], v.Value); err != nil {
			problems = append(problems, Problem{
				Workspace: name,
				Kind:      ProblemInvalidValue,
				Parameter: v.Name,
				Detail:    err.Error(),
			})
		}
	}

	return problems
}
