package coderapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormodhaugland/wsb/internal/client"
	"github.com/tormodhaugland/wsb/internal/coderapi"
	"github.com/tormodhaugland/wsb/internal/devserver"
	"github.com/tormodhaugland/wsb/internal/fixture"
	"github.com/tormodhaugland/wsb/internal/model"
)

var _ client.Client = (*coderapi.Client)(nil)

func newServer(t *testing.T) (*httptest.Server, *coderapi.Client) {
	t.Helper()
	srv := httptest.NewServer(devserver.NewRouter(fixture.New(fixture.Sample()), "secret", nil))
	t.Cleanup(srv.Close)

	c, err := coderapi.New(srv.URL, coderapi.WithSessionToken("secret"), coderapi.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return srv, c
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := coderapi.New("ftp://example.com")
	assert.Error(t, err)
	_, err = coderapi.New("://nope")
	assert.Error(t, err)
}

func TestWorkspacesAndParameters(t *testing.T) {
	_, c := newServer(t)
	ctx := context.Background()

	workspaces, err := c.Workspaces(ctx)
	require.NoError(t, err)
	assert.Len(t, workspaces, 3)

	ws, err := c.Workspace(ctx, "alice", "dev")
	require.NoError(t, err)
	assert.True(t, ws.TemplateUseClassicParameterFlow)

	got, err := client.GetWorkspaceParameters(ctx, c, ws)
	require.NoError(t, err)
	assert.Len(t, got.TemplateVersionRichParameters, 4)
	assert.Contains(t, got.BuildParameters, model.WorkspaceBuildParameter{Name: "region", Value: "us-east"})
}

func TestStartBuild(t *testing.T) {
	_, c := newServer(t)
	ctx := context.Background()

	ws, err := c.Workspace(ctx, "alice", "dev")
	require.NoError(t, err)

	build, err := c.StartBuild(ctx, ws, []model.WorkspaceBuildParameter{{Name: "region", Value: "eu-central"}})
	require.NoError(t, err)
	assert.Equal(t, 2, build.BuildNumber)
	assert.Equal(t, model.TransitionStart, build.Transition)

	values, err := c.WorkspaceBuildParameters(ctx, build.ID)
	require.NoError(t, err)
	assert.Contains(t, values, model.WorkspaceBuildParameter{Name: "region", Value: "eu-central"})
	assert.Contains(t, values, model.WorkspaceBuildParameter{Name: "image", Value: "ubuntu:24.04"})
}

func TestNotFoundError(t *testing.T) {
	_, c := newServer(t)

	_, err := c.Workspace(context.Background(), "nobody", "nothing")
	var apiErr *coderapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Resource not found.", apiErr.Message)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestMissingToken(t *testing.T) {
	srv, _ := newServer(t)
	c, err := coderapi.New(srv.URL)
	require.NoError(t, err)

	_, err = c.Workspaces(context.Background())
	var apiErr *coderapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.NotErrorIs(t, err, client.ErrNotFound)
}

func TestFindWorkspaceDoesNotFuzzyMatchAuthFailures(t *testing.T) {
	srv, _ := newServer(t)
	c, err := coderapi.New(srv.URL, coderapi.WithSessionToken("wrong"))
	require.NoError(t, err)

	_, err = client.FindWorkspace(context.Background(), c, "alice/de")
	var apiErr *coderapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
