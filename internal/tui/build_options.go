package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/tormodhaugland/wsb/internal/client"
	"github.com/tormodhaugland/wsb/internal/model"
	"github.com/tormodhaugland/wsb/internal/popover"
)

// ErrDismissed is returned when the operator closes the popover without
// submitting.
var ErrDismissed = errors.New("build options dismissed")

// ErrBuildPending is returned when the operator quits after submitting but
// before the build request answered. The build may or may not have started.
var ErrBuildPending = errors.New("build submitted, result unknown")

// BuildOptionsResult holds the outcome of a standalone popover run.
type BuildOptionsResult struct {
	Build        model.WorkspaceBuild
	SettingsPath string // set when the template uses the settings page flow
	BuildErr     error  // the build request failed after submission
}

type buildOptionsModel struct {
	popover  popoverModel
	initCmd  tea.Cmd
	waiting  bool // submitted, build request in flight
	done     bool
	result   BuildOptionsResult
	canceled bool
	pending  bool // quit while waiting
}

func (m buildOptionsModel) Init() tea.Cmd {
	return m.initCmd
}

func (m buildOptionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.waiting {
				m.pending = true
			} else {
				m.popover.workflow.Dismiss()
				m.canceled = true
			}
			m.done = true
			return m, tea.Quit
		}

	case buildResultMsg:
		m.result.Build = msg.build
		m.result.BuildErr = msg.err
		m.done = true
		return m, tea.Quit

	case redirectMsg:
		m.result.SettingsPath = msg.path
		m.done = true
		return m, tea.Quit
	}

	if m.waiting {
		return m, nil
	}

	var cmd tea.Cmd
	m.popover, cmd = m.popover.Update(msg)
	if st, ok := m.popover.workflow.State().(popover.Closed); ok {
		switch st.Reason {
		case popover.ClosedSubmitted:
			m.waiting = true
		case popover.ClosedDismissed:
			m.canceled = true
			m.done = true
			return m, tea.Quit
		}
	}
	return m, cmd
}

func (m buildOptionsModel) View() string {
	if m.done {
		return ""
	}
	if m.waiting {
		return fmt.Sprintf("Starting build of %s...\n", m.popover.workflow.Workspace().FullName())
	}
	return activePaneStyle.Render(m.popover.View()) + "\n"
}

// RunBuildOptions shows the build options popover for ws on its own and
// starts the build on submit.
func RunBuildOptions(ctx context.Context, src client.Source, b client.Builder, ws model.Workspace, opts ...popover.Option) (BuildOptionsResult, error) {
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(os.Stderr, termenv.WithColorCache(true)))

	pm, cmd := openPopover(ctx, src, b, ws, opts...)
	m := buildOptionsModel{popover: pm, initCmd: cmd}

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	finalModel, err := p.Run()
	if err != nil {
		return BuildOptionsResult{}, err
	}

	return finalModel.(buildOptionsModel).outcome()
}

func (m buildOptionsModel) outcome() (BuildOptionsResult, error) {
	switch {
	case m.canceled:
		return BuildOptionsResult{}, ErrDismissed
	case m.pending:
		return BuildOptionsResult{}, ErrBuildPending
	}
	return m.result, nil
}
