package cmd

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormodhaugland/wsb/internal/config"
	"github.com/tormodhaugland/wsb/internal/fixture"
	"github.com/tormodhaugland/wsb/internal/model"
)

func testEnv(t *testing.T) (*env, *fixture.Store) {
	t.Helper()
	store := fixture.New(fixture.Sample())
	return &env{
		ctx:     context.Background(),
		cfg:     config.DefaultConfig(),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		src:     store,
		builder: store,
	}, store
}

func workspace(t *testing.T, store *fixture.Store, owner, name string) model.Workspace {
	t.Helper()
	ws, err := store.Workspace(context.Background(), owner, name)
	require.NoError(t, err)
	return ws
}

func TestParseBuildOptions(t *testing.T) {
	got, err := parseBuildOptions([]string{"region=us-west", "tags=a=b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, []model.WorkspaceBuildParameter{
		{Name: "region", Value: "us-west"},
		{Name: "tags", Value: "a=b"},
		{Name: "empty", Value: ""},
	}, got)

	_, err = parseBuildOptions([]string{"region"})
	assert.Error(t, err)
	_, err = parseBuildOptions([]string{"=x"})
	assert.Error(t, err)
}

func TestBuildWithOptionsOverridesActiveBuild(t *testing.T) {
	e, store := testEnv(t)
	ws := workspace(t, store, "alice", "dev")

	build, err := buildWithOptions(e.ctx, e, ws, []model.WorkspaceBuildParameter{
		{Name: "region", Value: "us-west"},
		{Name: "debug", Value: "true"},
	})
	require.NoError(t, err)
	assert.Equal(t, ws.LatestBuild.BuildNumber+1, build.BuildNumber)

	got, err := store.WorkspaceBuildParameters(e.ctx, build.ID)
	require.NoError(t, err)
	values := map[string]string{}
	for _, p := range got {
		values[p.Name] = p.Value
	}
	assert.Equal(t, "us-west", values["region"])
	assert.Equal(t, "true", values["debug"])
	assert.Equal(t, "ubuntu:24.04", values["image"], "non-ephemeral values carry over")
}

func TestBuildWithOptionsRejectsUnknownName(t *testing.T) {
	e, store := testEnv(t)
	ws := workspace(t, store, "alice", "dev")

	_, err := buildWithOptions(e.ctx, e, ws, []model.WorkspaceBuildParameter{{Name: "image", Value: "alpine"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown build option "image"`)
}

func TestBuildWithOptionsValidates(t *testing.T) {
	e, store := testEnv(t)
	ws := workspace(t, store, "alice", "dev")

	_, err := buildWithOptions(e.ctx, e, ws, []model.WorkspaceBuildParameter{{Name: "region", Value: "mars"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")

	latest := workspace(t, store, "alice", "dev")
	assert.Equal(t, ws.LatestBuild.ID, latest.LatestBuild.ID, "no build on validation failure")
}

func TestBuildWithOptionsDynamicFlow(t *testing.T) {
	e, store := testEnv(t)
	ws := workspace(t, store, "bob", "gpu")

	_, err := buildWithOptions(e.ctx, e, ws, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/@bob/gpu/settings/parameters")
}

func TestBuildWithOptionsNoEphemeral(t *testing.T) {
	e, store := testEnv(t)
	ws := workspace(t, store, "alice", "scratch")

	_, err := buildWithOptions(e.ctx, e, ws, []model.WorkspaceBuildParameter{{Name: "x", Value: "1"}})
	assert.Error(t, err)

	build, err := buildWithOptions(e.ctx, e, ws, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, build.BuildNumber)
}
