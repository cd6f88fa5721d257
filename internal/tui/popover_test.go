package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/tormodhaugland/wsb/internal/config"
	"github.com/tormodhaugland/wsb/internal/model"
	"github.com/tormodhaugland/wsb/internal/popover"
)

type stubClient struct {
	built [][]model.WorkspaceBuildParameter
}

func (s *stubClient) Workspaces(ctx context.Context) ([]model.Workspace, error) {
	return []model.Workspace{testWorkspace(true)}, nil
}

func (s *stubClient) Workspace(ctx context.Context, owner, name string) (model.Workspace, error) {
	return testWorkspace(true), nil
}

func (s *stubClient) TemplateVersionRichParameters(ctx context.Context, id string) ([]model.TemplateVersionParameter, error) {
	return nil, nil
}

func (s *stubClient) WorkspaceBuildParameters(ctx context.Context, id string) ([]model.WorkspaceBuildParameter, error) {
	return nil, nil
}

func (s *stubClient) StartBuild(ctx context.Context, ws model.Workspace, params []model.WorkspaceBuildParameter) (model.WorkspaceBuild, error) {
	s.built = append(s.built, params)
	return model.WorkspaceBuild{ID: "b2", BuildNumber: 2}, nil
}

func testWorkspace(classic bool) model.Workspace {
	return model.Workspace{
		ID:                              "ws-1",
		Name:                            "dev",
		OwnerName:                       "alice",
		TemplateUseClassicParameterFlow: classic,
		LatestBuild:                     model.WorkspaceBuild{ID: "b1", TemplateVersionID: "tv1"},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadedPopover opens a popover and delivers both fetch results.
func loadedPopover(t *testing.T, c *stubClient, ws model.Workspace, schema []model.TemplateVersionParameter, prior []model.WorkspaceBuildParameter) popoverModel {
	t.Helper()
	m, _ := openPopover(context.Background(), c, c, ws)
	id := m.workflow.ID()
	m, _ = m.Update(schemaMsg{id: id, params: schema})
	m, _ = m.Update(buildParamsMsg{id: id, values: prior})
	return m
}

func TestPopoverLoadsIntoForm(t *testing.T) {
	c := &stubClient{}
	m, cmd := openPopover(context.Background(), c, c, testWorkspace(true))
	if cmd == nil {
		t.Fatal("expected fetch commands")
	}
	if !strings.Contains(m.View(), "Loading parameters") {
		t.Errorf("loading view = %q", m.View())
	}

	m, _ = m.Update(schemaMsg{id: m.workflow.ID(), params: []model.TemplateVersionParameter{{Name: "region", Ephemeral: true}}})
	if m.workflow.Kind() != popover.KindLoading {
		t.Fatalf("state = %s after schema only, want loading", m.workflow.Kind())
	}
	m, _ = m.Update(buildParamsMsg{id: m.workflow.ID(), values: []model.WorkspaceBuildParameter{{Name: "region", Value: "us-east"}}})

	if m.workflow.Kind() != popover.KindFormReady {
		t.Fatalf("state = %s, want form_ready", m.workflow.Kind())
	}
	if len(m.fields) != 1 {
		t.Fatalf("len(fields) = %d, want 1", len(m.fields))
	}
	view := m.View()
	if !strings.Contains(view, "These parameters only apply for a single workspace start.") {
		t.Errorf("form view missing intro: %q", view)
	}
	if !strings.Contains(view, "from active build") {
		t.Errorf("form view missing provenance hint: %q", view)
	}
}

func TestPopoverIgnoresStaleMessages(t *testing.T) {
	c := &stubClient{}
	m, _ := openPopover(context.Background(), c, c, testWorkspace(true))

	stale := uuid.New()
	m, _ = m.Update(schemaMsg{id: stale, params: []model.TemplateVersionParameter{{Name: "region", Ephemeral: true}}})
	m, _ = m.Update(buildParamsMsg{id: stale})

	if m.workflow.Kind() != popover.KindLoading {
		t.Errorf("state = %s, want loading", m.workflow.Kind())
	}
}

func TestPopoverSubmit(t *testing.T) {
	c := &stubClient{}
	m := loadedPopover(t, c, testWorkspace(true),
		[]model.TemplateVersionParameter{{Name: "region", Ephemeral: true}, {Name: "size"}}, nil)

	m, _ = m.Update(keyRunes("us-west"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	if !m.closed() {
		t.Fatalf("popover should close on submit, state = %s", m.workflow.Kind())
	}
	if cmd == nil {
		t.Fatal("expected build command")
	}

	msg := cmd()
	res, ok := msg.(buildResultMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want buildResultMsg", msg)
	}
	if res.err != nil || res.build.BuildNumber != 2 {
		t.Errorf("result = %+v", res)
	}
	if len(c.built) != 1 {
		t.Fatalf("StartBuild called %d times, want 1", len(c.built))
	}
	want := []model.WorkspaceBuildParameter{{Name: "region", Value: "us-west"}}
	if len(c.built[0]) != 1 || c.built[0][0] != want[0] {
		t.Errorf("built with %+v, want %+v", c.built[0], want)
	}

	// A second submit after close does nothing.
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Error("second submit should not issue a build")
	}
}

func TestPopoverRequiredFieldBlocksSubmit(t *testing.T) {
	c := &stubClient{}
	m := loadedPopover(t, c, testWorkspace(true),
		[]model.TemplateVersionParameter{{Name: "region", DisplayName: "Region", Ephemeral: true, Required: true}}, nil)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	if m.workflow.Kind() != popover.KindFormReady {
		t.Fatalf("state = %s, want form_ready", m.workflow.Kind())
	}
	if !strings.Contains(m.View(), "a value is required") {
		t.Errorf("view missing validation error: %q", m.View())
	}
	if len(c.built) != 0 {
		t.Error("build must not start")
	}
}

func TestPopoverBoolField(t *testing.T) {
	c := &stubClient{}
	m := loadedPopover(t, c, testWorkspace(true),
		[]model.TemplateVersionParameter{{Name: "debug", Type: model.ParameterTypeBool, Ephemeral: true, DefaultValue: "false"}}, nil)

	m, _ = m.Update(keyRunes("y"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("expected build command")
	}
	cmd()
	if got := c.built[0][0].Value; got != "true" {
		t.Errorf("debug = %q, want true", got)
	}
}

func TestPopoverRedirect(t *testing.T) {
	c := &stubClient{}
	m := loadedPopover(t, c, testWorkspace(false),
		[]model.TemplateVersionParameter{{Name: "region", DisplayName: "Region", Description: "Where to run", Ephemeral: true}}, nil)

	view := m.View()
	if !strings.Contains(view, "Go to workspace parameters") || !strings.Contains(view, "Where to run") {
		t.Errorf("redirect view = %q", view)
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.closed() {
		t.Fatal("popover should close on redirect")
	}
	msg, ok := cmd().(redirectMsg)
	if !ok {
		t.Fatal("expected redirectMsg")
	}
	if msg.path != "/@alice/dev/settings/parameters" {
		t.Errorf("path = %q", msg.path)
	}
}

func TestPopoverNoEphemeral(t *testing.T) {
	c := &stubClient{}
	m := loadedPopover(t, c, testWorkspace(true), []model.TemplateVersionParameter{{Name: "size"}}, nil)

	if m.workflow.Kind() != popover.KindNoEphemeralParameters {
		t.Fatalf("state = %s", m.workflow.Kind())
	}
	if !strings.Contains(m.View(), "This template has no ephemeral build options.") {
		t.Errorf("view = %q", m.View())
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.closed() {
		t.Error("enter must do nothing without a form")
	}
}

func TestPopoverFetchErrorBanner(t *testing.T) {
	c := &stubClient{}
	m, _ := openPopover(context.Background(), c, c, testWorkspace(true))
	m, _ = m.Update(fetchErrMsg{id: m.workflow.ID(), op: popover.FetchBuildParameters, err: errors.New("connection refused")})

	if !strings.Contains(m.View(), "connection") {
		t.Errorf("view missing error banner: %q", m.View())
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !m.closed() {
		t.Error("esc should dismiss")
	}
}

func TestHostDropsResultsAfterDismiss(t *testing.T) {
	c := &stubClient{}
	host := New(context.Background(), Deps{Config: config.DefaultConfig(), Source: c, Builder: c})

	next, _ := host.Update(workspacesMsg{workspaces: []model.Workspace{testWorkspace(true)}})
	host = next.(Model)

	next, _ = host.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	host = next.(Model)
	if host.popover == nil {
		t.Fatal("b should open the popover")
	}
	id := host.popover.workflow.ID()

	next, _ = host.Update(tea.KeyMsg{Type: tea.KeyEsc})
	host = next.(Model)
	if host.popover != nil {
		t.Fatal("esc should close the popover")
	}

	// Late responses for the dismissed instance.
	next, _ = host.Update(schemaMsg{id: id, params: []model.TemplateVersionParameter{{Name: "region", Ephemeral: true}}})
	host = next.(Model)
	next, _ = host.Update(buildParamsMsg{id: id})
	host = next.(Model)
	if host.popover != nil {
		t.Error("stale responses must not reopen a popover")
	}

	// Reopening gets a fresh instance.
	next, _ = host.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	host = next.(Model)
	if host.popover == nil || host.popover.workflow.ID() == id {
		t.Error("reopen should create a new popover instance")
	}
}

func TestHostShowsBuildResult(t *testing.T) {
	c := &stubClient{}
	host := New(context.Background(), Deps{Config: config.DefaultConfig(), Source: c, Builder: c})

	next, _ := host.Update(buildResultMsg{workspace: testWorkspace(true), err: errors.New("quota exceeded")})
	host = next.(Model)
	if !strings.Contains(host.message, "quota exceeded") {
		t.Errorf("message = %q", host.message)
	}
}
