package tui

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/tormodhaugland/wsb/internal/client"
	"github.com/tormodhaugland/wsb/internal/config"
	"github.com/tormodhaugland/wsb/internal/logging"
	"github.com/tormodhaugland/wsb/internal/model"
	"github.com/tormodhaugland/wsb/internal/popover"
)

type workspaceItem struct {
	ws model.Workspace
}

func (i workspaceItem) Title() string { return i.ws.FullName() }
func (i workspaceItem) Description() string {
	b := i.ws.LatestBuild
	return fmt.Sprintf("%s • build #%d %s", i.ws.TemplateName, b.BuildNumber, b.Status)
}
func (i workspaceItem) FilterValue() string { return i.ws.FullName() + " " + i.ws.TemplateName }

type keyMap struct {
	BuildOptions key.Binding
	Reload       key.Binding
	Quit         key.Binding
}

var keys = keyMap{
	BuildOptions: key.NewBinding(key.WithKeys("b", "enter"), key.WithHelp("b/enter", "build options")),
	Reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type workspacesMsg struct {
	workspaces []model.Workspace
	err        error
}

// Deps are the collaborators the TUI talks to.
type Deps struct {
	Config  *config.Config
	Source  client.Source
	Builder client.Builder
}

type Model struct {
	ctx      context.Context
	deps     Deps
	list     list.Model
	selected *model.Workspace
	popover  *popoverModel // nil when no popover is open
	width    int
	height   int
	message  string
}

func New(ctx context.Context, deps Deps) Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 40, 20)
	l.Title = "Workspaces"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return Model{
		ctx:  ctx,
		deps: deps,
		list: l,
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadWorkspaces()
}

func (m Model) loadWorkspaces() tea.Cmd {
	ctx, src := m.ctx, m.deps.Source
	return func() tea.Msg {
		ws, err := src.Workspaces(ctx)
		return workspacesMsg{workspaces: ws, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	log := logging.FromContext(m.ctx)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width/2-4, msg.Height-6)
		if m.popover != nil {
			m.popover.width = m.popoverWidth()
		}
		return m, nil

	case workspacesMsg:
		if msg.err != nil {
			m.message = promptErrorStyle.Render("Failed to load workspaces: " + msg.err.Error())
			return m, nil
		}
		items := make([]list.Item, len(msg.workspaces))
		for i, ws := range msg.workspaces {
			items[i] = workspaceItem{ws: ws}
		}
		cmd := m.list.SetItems(items)
		m.syncSelected()
		return m, cmd

	case buildResultMsg:
		if msg.err != nil {
			m.message = promptErrorStyle.Render(fmt.Sprintf("Build of %s failed: %v", msg.workspace.FullName(), msg.err))
			return m, nil
		}
		m.message = fmt.Sprintf("Build #%d started for %s", msg.build.BuildNumber, msg.workspace.FullName())
		return m, m.loadWorkspaces()

	case redirectMsg:
		link := m.deps.Config.SiteLink(msg.path)
		m.message = "Configure parameters at " + link
		if strings.HasPrefix(link, "http") {
			return m, openURL(link)
		}
		return m, nil

	case schemaMsg, buildParamsMsg, fetchErrMsg:
		if m.popover == nil {
			log.Debug("dropping fetch result, no popover open")
			return m, nil
		}
		return m.updatePopover(msg)

	case tea.KeyMsg:
		if m.popover != nil {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m.updatePopover(msg)
		}
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.BuildOptions):
			if m.selected != nil {
				m.message = ""
				p, cmd := openPopover(m.ctx, m.deps.Source, m.deps.Builder, *m.selected,
					popover.WithDocsURL(m.deps.Config.DocsLink(popover.DocsPath)))
				p.width = m.popoverWidth()
				m.popover = &p
				return m, cmd
			}

		case key.Matches(msg, keys.Reload):
			return m, m.loadWorkspaces()
		}
	}

	if m.popover != nil {
		if _, ok := msg.(tea.KeyMsg); !ok {
			return m.updatePopover(msg)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.syncSelected()
	return m, cmd
}

func (m Model) updatePopover(msg tea.Msg) (tea.Model, tea.Cmd) {
	p, cmd := m.popover.Update(msg)
	if p.closed() {
		m.popover = nil
	} else {
		m.popover = &p
	}
	return m, cmd
}

func (m Model) popoverWidth() int {
	return max(m.width/2-6, 30)
}

func (m *Model) syncSelected() {
	if i, ok := m.list.SelectedItem().(workspaceItem); ok {
		ws := i.ws
		m.selected = &ws
		return
	}
	m.selected = nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	listStyle, rightStyle := activePaneStyle, paneStyle
	right := m.detailsView()
	if m.popover != nil {
		listStyle, rightStyle = paneStyle, activePaneStyle
		right = m.popover.View()
	}

	leftPane := listStyle.Width(m.width/2 - 2).Height(m.height - 6).Render(m.list.View())
	rightPane := rightStyle.Width(m.width/2 - 2).Height(m.height - 6).Render(right)

	main := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	help := helpStyle.Render("b/enter: build options • r: reload • /: search • q: quit")

	if m.message != "" {
		help = m.message
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, help)
}

func (m Model) detailsView() string {
	if m.selected == nil {
		return "No workspace selected"
	}

	ws := m.selected
	b := ws.LatestBuild
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(ws.FullName()) + "\n\n")
	sb.WriteString(fmt.Sprintf("Owner:     %s\n", ws.OwnerName))
	sb.WriteString(fmt.Sprintf("Template:  %s\n", ws.TemplateName))
	sb.WriteString(fmt.Sprintf("Build:     #%d (%s, %s)\n", b.BuildNumber, b.Transition, b.Status))
	if !b.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Built at:  %s\n", b.CreatedAt.Local().Format("2006-01-02 15:04")))
	}

	flow := "classic"
	if !ws.TemplateUseClassicParameterFlow {
		flow = "workspace settings"
	}
	sb.WriteString(fmt.Sprintf("Params:    %s\n", flow))

	return sb.String()
}

func openURL(url string) tea.Cmd {
	return func() tea.Msg {
		opener := "xdg-open"
		if runtime.GOOS == "darwin" {
			opener = "open"
		}
		exec.Command(opener, url).Start()
		return nil
	}
}

// Run starts the workspace browser.
func Run(ctx context.Context, deps Deps) error {
	// Render on stderr so stdout stays clean for scripted use.
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(os.Stderr, termenv.WithColorCache(true)))

	m := New(ctx, deps)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	_, err := p.Run()
	return err
}
