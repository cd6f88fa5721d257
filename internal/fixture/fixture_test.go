package fixture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormodhaugland/wsb/internal/client"
	"github.com/tormodhaugland/wsb/internal/model"
)

const sampleYAML = `
workspaces:
  - id: ws-1
    name: dev
    owner_name: alice
    template_use_classic_parameter_flow: true
    latest_build:
      id: b1
      build_number: 3
      template_version_id: tv1
      transition: start
template_versions:
  - id: tv1
    parameters:
      - name: region
        ephemeral: true
      - name: size
        ephemeral: false
builds:
  - id: b1
    workspace_id: ws-1
    build_number: 3
    template_version_id: tv1
    parameters:
      - name: region
        value: us-east
      - name: size
        value: large
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workspaces.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0644))
	return path
}

func TestLoadAndQuery(t *testing.T) {
	s, err := Load(writeFixture(t))
	require.NoError(t, err)
	ctx := context.Background()

	ws, err := s.Workspace(ctx, "alice", "dev")
	require.NoError(t, err)
	assert.True(t, ws.TemplateUseClassicParameterFlow)
	assert.Equal(t, "tv1", ws.LatestBuild.TemplateVersionID)

	params, err := s.TemplateVersionRichParameters(ctx, "tv1")
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.True(t, params[0].Ephemeral)

	values, err := s.WorkspaceBuildParameters(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "us-east", values[0].Value)
}

func TestNotFound(t *testing.T) {
	s := New(Data{})
	ctx := context.Background()

	_, err := s.Workspace(ctx, "nobody", "none")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "workspace", nf.Kind)
	assert.ErrorIs(t, err, client.ErrNotFound)

	_, err = s.TemplateVersionRichParameters(ctx, "tv-x")
	assert.True(t, errors.As(err, &nf))

	_, err = s.WorkspaceBuildParameters(ctx, "b-x")
	assert.True(t, errors.As(err, &nf))
}

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	ws, err := s.Workspaces(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ws)
}

func TestStartBuildOverlaysAndPersists(t *testing.T) {
	path := writeFixture(t)
	s, err := Load(path)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	ws, err := s.Workspace(ctx, "alice", "dev")
	require.NoError(t, err)

	build, err := s.StartBuild(ctx, ws, []model.WorkspaceBuildParameter{{Name: "region", Value: "us-west"}})
	require.NoError(t, err)
	assert.Equal(t, 4, build.BuildNumber)
	assert.Equal(t, model.TransitionStart, build.Transition)

	reloaded, err := Load(path)
	require.NoError(t, err)

	ws, err = reloaded.Workspace(ctx, "alice", "dev")
	require.NoError(t, err)
	assert.Equal(t, build.ID, ws.LatestBuild.ID)

	values, err := reloaded.WorkspaceBuildParameters(ctx, build.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.WorkspaceBuildParameter{
		{Name: "region", Value: "us-west"},
		{Name: "size", Value: "large"},
	}, values)
}

func TestStartBuildUnknownWorkspace(t *testing.T) {
	s := New(Data{})
	_, err := s.StartBuild(context.Background(), model.Workspace{ID: "nope"}, nil)
	assert.Error(t, err)
}

func TestOverlay(t *testing.T) {
	base := []model.WorkspaceBuildParameter{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}
	got := Overlay(base, []model.WorkspaceBuildParameter{{Name: "b", Value: "3"}, {Name: "c", Value: "4"}})

	assert.Equal(t, []model.WorkspaceBuildParameter{
		{Name: "a", Value: "1"},
		{Name: "b", Value: "3"},
		{Name: "c", Value: "4"},
	}, got)
	assert.Equal(t, "2", base[1].Value, "base must not be modified")
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "workspaces.yaml")

	wrote, err := WriteSample(path)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = WriteSample(path)
	require.NoError(t, err)
	assert.False(t, wrote, "existing fixtures must not be overwritten")

	s, err := Load(path)
	require.NoError(t, err)
	ws, err := s.Workspaces(context.Background())
	require.NoError(t, err)
	assert.Len(t, ws, 3)
}
