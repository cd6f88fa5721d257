package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/tormodhaugland/wsb/internal/client"
	"github.com/tormodhaugland/wsb/internal/logging"
	"github.com/tormodhaugland/wsb/internal/model"
	"github.com/tormodhaugland/wsb/internal/popover"
)

// Fetch results are tagged with the popover instance they were issued for.
type schemaMsg struct {
	id     uuid.UUID
	params []model.TemplateVersionParameter
}

type buildParamsMsg struct {
	id     uuid.UUID
	values []model.WorkspaceBuildParameter
}

type fetchErrMsg struct {
	id  uuid.UUID
	op  popover.FetchOp
	err error
}

// buildResultMsg reports the outcome of a build request. It arrives after
// the popover that submitted it has closed.
type buildResultMsg struct {
	workspace model.Workspace
	build     model.WorkspaceBuild
	err       error
}

// redirectMsg asks the host to send the operator to the settings page.
type redirectMsg struct {
	workspace model.Workspace
	path      string
}

func fetchSchemaCmd(ctx context.Context, src client.Source, id uuid.UUID, templateVersionID string) tea.Cmd {
	return func() tea.Msg {
		params, err := src.TemplateVersionRichParameters(ctx, templateVersionID)
		if err != nil {
			return fetchErrMsg{id: id, op: popover.FetchTemplateParameters, err: err}
		}
		return schemaMsg{id: id, params: params}
	}
}

func fetchBuildParamsCmd(ctx context.Context, src client.Source, id uuid.UUID, buildID string) tea.Cmd {
	return func() tea.Msg {
		values, err := src.WorkspaceBuildParameters(ctx, buildID)
		if err != nil {
			return fetchErrMsg{id: id, op: popover.FetchBuildParameters, err: err}
		}
		return buildParamsMsg{id: id, values: values}
	}
}

func startBuildCmd(ctx context.Context, b client.Builder, ws model.Workspace, params []model.WorkspaceBuildParameter) tea.Cmd {
	return func() tea.Msg {
		build, err := b.StartBuild(ctx, ws, params)
		return buildResultMsg{workspace: ws, build: build, err: err}
	}
}

// popoverModel renders one popover.Workflow. The host owns it and passes
// messages through; the workflow decides what is accepted.
type popoverModel struct {
	ctx      context.Context
	builder  client.Builder
	workflow *popover.Workflow
	spinner  spinner.Model
	fields   []field
	focus    int // len(fields) is the submit button
	width    int
}

// openPopover starts a fresh workflow for ws and the two fetches that gate
// its Loading state.
func openPopover(ctx context.Context, src client.Source, b client.Builder, ws model.Workspace, opts ...popover.Option) (popoverModel, tea.Cmd) {
	opts = append([]popover.Option{popover.WithLogger(logging.FromContext(ctx))}, opts...)
	w := popover.Open(ws, opts...)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = promptLabelStyle

	m := popoverModel{
		ctx:      ctx,
		builder:  b,
		workflow: w,
		spinner:  sp,
		width:    40,
	}
	return m, tea.Batch(
		m.spinner.Tick,
		fetchSchemaCmd(ctx, src, w.ID(), ws.LatestBuild.TemplateVersionID),
		fetchBuildParamsCmd(ctx, src, w.ID(), ws.LatestBuild.ID),
	)
}

func (m popoverModel) closed() bool {
	return m.workflow.Kind() == popover.KindClosed
}

func (m popoverModel) Update(msg tea.Msg) (popoverModel, tea.Cmd) {
	switch msg := msg.(type) {
	case schemaMsg:
		if m.workflow.ReceiveSchema(msg.id, msg.params) {
			cmd := m.afterSettle()
			return m, cmd
		}
		return m, nil

	case buildParamsMsg:
		if m.workflow.ReceiveBuildParameters(msg.id, msg.values) {
			cmd := m.afterSettle()
			return m, cmd
		}
		return m, nil

	case fetchErrMsg:
		m.workflow.ReceiveError(msg.id, msg.op, msg.err)
		return m, nil

	case spinner.TickMsg:
		if m.workflow.Kind() != popover.KindLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "esc" {
			m.workflow.Dismiss()
			return m, nil
		}
		switch m.workflow.State().(type) {
		case popover.RedirectEligible:
			if msg.String() == "enter" {
				cmd := m.goToSettings()
				return m, cmd
			}
		case popover.FormReady:
			return m.updateForm(msg)
		}
	}

	return m, nil
}

// afterSettle builds the field editors once the form becomes ready.
func (m *popoverModel) afterSettle() tea.Cmd {
	fr, ok := m.workflow.State().(popover.FormReady)
	if !ok || m.fields != nil {
		return nil
	}
	m.fields = make([]field, fr.Form.Len())
	for i := range m.fields {
		h, _ := fr.Form.Helpers(i)
		m.fields[i] = newField(h)
	}
	m.focus = 0
	if len(m.fields) > 0 {
		return m.fields[0].Focus()
	}
	return nil
}

func (m popoverModel) updateForm(msg tea.KeyMsg) (popoverModel, tea.Cmd) {
	onField := m.focus < len(m.fields)

	switch msg.String() {
	case "tab":
		cmd := m.moveFocus(1)
		return m, cmd
	case "shift+tab":
		cmd := m.moveFocus(-1)
		return m, cmd
	case "down", "up":
		if !onField || !m.fields[m.focus].capturesVertical() {
			if msg.String() == "down" {
				cmd := m.moveFocus(1)
				return m, cmd
			}
			cmd := m.moveFocus(-1)
			return m, cmd
		}
	case "ctrl+s":
		cmd := m.submit()
		return m, cmd
	case "enter":
		if !onField {
			cmd := m.submit()
			return m, cmd
		}
		cmd := m.moveFocus(1)
		return m, cmd
	}

	if onField {
		var cmd tea.Cmd
		m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *popoverModel) moveFocus(delta int) tea.Cmd {
	if m.focus < len(m.fields) {
		m.commit(m.focus)
		m.fields[m.focus].Blur()
	}
	n := len(m.fields) + 1
	m.focus = ((m.focus+delta)%n + n) % n
	if m.focus < len(m.fields) {
		return m.fields[m.focus].Focus()
	}
	return nil
}

// commit hands a field's value to the workflow when it differs from what the
// form holds, so untouched fields keep their autofill provenance.
func (m *popoverModel) commit(i int) {
	fr, ok := m.workflow.State().(popover.FormReady)
	if !ok {
		return
	}
	current, ok := fr.Form.Value(i)
	if !ok {
		return
	}
	if v := m.fields[i].Value(); v != current.Value {
		m.workflow.SetValue(i, v)
		m.fields[i].helpers.Value, _ = fr.Form.Value(i)
	}
}

// submit validates every field, commits the values and closes the popover
// before the build request is sent.
func (m *popoverModel) submit() tea.Cmd {
	firstInvalid := -1
	for i := range m.fields {
		if !m.fields[i].Validate() && firstInvalid < 0 {
			firstInvalid = i
		}
	}
	if firstInvalid >= 0 {
		if m.focus < len(m.fields) {
			m.fields[m.focus].Blur()
		}
		m.focus = firstInvalid
		return m.fields[m.focus].Focus()
	}

	for i := range m.fields {
		m.commit(i)
	}

	params, err := m.workflow.Submit()
	if err != nil {
		return nil
	}
	return startBuildCmd(m.ctx, m.builder, m.workflow.Workspace(), params)
}

func (m *popoverModel) goToSettings() tea.Cmd {
	path, err := m.workflow.GoToSettings()
	if err != nil {
		return nil
	}
	ws := m.workflow.Workspace()
	return func() tea.Msg {
		return redirectMsg{workspace: ws, path: path}
	}
}

// View switches once over the workflow state.
func (m popoverModel) View() string {
	var sb strings.Builder

	switch st := m.workflow.State().(type) {
	case popover.Loading:
		if st.Err != nil {
			sb.WriteString(titleStyle.Render("Build Options") + "\n\n")
			sb.WriteString(bannerStyle.Width(m.width).Render(st.Err.Error()) + "\n")
			sb.WriteString("\n" + helpStyle.Render("esc: close"))
			break
		}
		sb.WriteString(m.spinner.View() + " Loading parameters...")

	case popover.RedirectEligible:
		sb.WriteString(promptHintStyle.Width(m.width).Render(
			"This workspace has ephemeral parameters which may use a temporary value on workspace start. " +
				"Configure the following parameters in workspace settings.") + "\n\n")
		for _, p := range st.Parameters {
			sb.WriteString("  " + promptLabelStyle.Render(p.Label()) + "\n")
			if p.Description != "" {
				sb.WriteString("  " + promptHintStyle.Render(p.Description) + "\n")
			}
		}
		sb.WriteString("\n" + activeButtonStyle.Render("Go to workspace parameters") + "\n")
		sb.WriteString("\n" + helpStyle.Render("enter: open settings • esc: close"))

	case popover.NoEphemeralParameters:
		sb.WriteString(titleStyle.Render("Build Options") + "\n\n")
		sb.WriteString(promptHintStyle.Render("This template has no ephemeral build options.") + "\n\n")
		sb.WriteString("Read the docs: " + st.DocsURL + "\n")
		sb.WriteString("\n" + helpStyle.Render("esc: close"))

	case popover.FormReady:
		sb.WriteString(titleStyle.Render("Build Options") + "\n")
		sb.WriteString(promptHintStyle.Render("These parameters only apply for a single workspace start.") + "\n\n")
		for i, f := range m.fields {
			sb.WriteString(f.View(i == m.focus) + "\n")
		}
		button := buttonStyle
		if m.focus == len(m.fields) {
			button = activeButtonStyle
		}
		sb.WriteString(button.Render("Build workspace") + "\n")
		sb.WriteString("\n" + helpStyle.Render("tab: next • enter: next/submit • ctrl+s: build • esc: close"))

	case popover.Closed:
		sb.WriteString(fmt.Sprintf("Closed (%s)", st.Reason))
	}

	return sb.String()
}
