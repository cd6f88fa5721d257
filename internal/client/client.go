// Package client defines how wsb talks to the workspace platform: where
// workspaces and parameter schemas come from, and who starts builds.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/tormodhaugland/wsb/internal/model"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound matches lookup errors for things that do not exist, as opposed
// to lookups that failed.
var ErrNotFound = errors.New("not found")

// Source supplies workspace and template metadata.
type Source interface {
	Workspaces(ctx context.Context) ([]model.Workspace, error)
	Workspace(ctx context.Context, owner, name string) (model.Workspace, error)
	TemplateVersionRichParameters(ctx context.Context, templateVersionID string) ([]model.TemplateVersionParameter, error)
	WorkspaceBuildParameters(ctx context.Context, buildID string) ([]model.WorkspaceBuildParameter, error)
}

// Builder starts a workspace build with the given parameter values.
type Builder interface {
	StartBuild(ctx context.Context, ws model.Workspace, params []model.WorkspaceBuildParameter) (model.WorkspaceBuild, error)
}

// Client is a Source that can also start builds.
type Client interface {
	Source
	Builder
}

// GetWorkspaceParameters fetches the parameter schema of the workspace's
// current template version and the values of its latest build in parallel.
func GetWorkspaceParameters(ctx context.Context, src Source, ws model.Workspace) (model.WorkspaceParameters, error) {
	var result model.WorkspaceParameters

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		params, err := src.TemplateVersionRichParameters(ctx, ws.LatestBuild.TemplateVersionID)
		if err != nil {
			return fmt.Errorf("fetching template version parameters: %w", err)
		}
		result.TemplateVersionRichParameters = params
		return nil
	})
	g.Go(func() error {
		params, err := src.WorkspaceBuildParameters(ctx, ws.LatestBuild.ID)
		if err != nil {
			return fmt.Errorf("fetching build parameters: %w", err)
		}
		result.BuildParameters = params
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.WorkspaceParameters{}, err
	}
	return result, nil
}

// FindWorkspace resolves query to a workspace. An "owner/name" is looked up
// directly and only falls back to fuzzy matching when it does not exist;
// anything else is fuzzy matched against all workspaces. Callers should show
// the resolved name when it differs from query.
func FindWorkspace(ctx context.Context, src Source, query string) (model.Workspace, error) {
	if owner, name, ok := strings.Cut(query, "/"); ok && owner != "" && name != "" {
		ws, err := src.Workspace(ctx, owner, name)
		if err == nil {
			return ws, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return model.Workspace{}, fmt.Errorf("failed to look up %s: %w", query, err)
		}
	}

	workspaces, err := src.Workspaces(ctx)
	if err != nil {
		return model.Workspace{}, fmt.Errorf("failed to list workspaces: %w", err)
	}

	names := make([]string, len(workspaces))
	for i, ws := range workspaces {
		names[i] = ws.FullName()
	}

	matches := fuzzy.Find(query, names)
	if len(matches) == 0 || matches[0].Score < -10 {
		return model.Workspace{}, fmt.Errorf("no workspace found matching: %s", query)
	}
	return workspaces[matches[0].Index], nil
}
