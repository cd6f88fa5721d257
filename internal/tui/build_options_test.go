package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tormodhaugland/wsb/internal/model"
)

func sendAll(t *testing.T, m buildOptionsModel, msgs ...tea.Msg) (buildOptionsModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(buildOptionsModel)
	}
	return m, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestBuildOptionsOutcome(t *testing.T) {
	regionSchema := []model.TemplateVersionParameter{{Name: "region", Ephemeral: true}}
	buildFailed := errors.New("quota exceeded")

	tests := []struct {
		name      string
		classic   bool
		run       func(t *testing.T, m buildOptionsModel) (buildOptionsModel, tea.Cmd)
		wantErr   error
		wantQuit  bool
		checkDone func(t *testing.T, res BuildOptionsResult)
	}{
		{
			name:    "esc dismisses",
			classic: true,
			run: func(t *testing.T, m buildOptionsModel) (buildOptionsModel, tea.Cmd) {
				return sendAll(t, m, tea.KeyMsg{Type: tea.KeyEsc})
			},
			wantErr:  ErrDismissed,
			wantQuit: true,
		},
		{
			name:    "ctrl+c before submit dismisses",
			classic: true,
			run: func(t *testing.T, m buildOptionsModel) (buildOptionsModel, tea.Cmd) {
				return sendAll(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
			},
			wantErr:  ErrDismissed,
			wantQuit: true,
		},
		{
			name:    "redirect returns settings path",
			classic: false,
			run: func(t *testing.T, m buildOptionsModel) (buildOptionsModel, tea.Cmd) {
				m, cmd := sendAll(t, m, tea.KeyMsg{Type: tea.KeyEnter})
				if cmd == nil {
					t.Fatal("expected redirect command")
				}
				return sendAll(t, m, cmd())
			},
			wantQuit: true,
			checkDone: func(t *testing.T, res BuildOptionsResult) {
				if res.SettingsPath != "/@alice/dev/settings/parameters" {
					t.Errorf("SettingsPath = %q", res.SettingsPath)
				}
			},
		},
		{
			name:    "submit then build result",
			classic: true,
			run: func(t *testing.T, m buildOptionsModel) (buildOptionsModel, tea.Cmd) {
				m, cmd := sendAll(t, m, keyRunes("eu"), tea.KeyMsg{Type: tea.KeyCtrlS})
				if !m.waiting {
					t.Fatal("expected waiting after submit")
				}
				if cmd == nil {
					t.Fatal("expected build command")
				}
				return sendAll(t, m, cmd())
			},
			wantQuit: true,
			checkDone: func(t *testing.T, res BuildOptionsResult) {
				if res.BuildErr != nil || res.Build.BuildNumber != 2 {
					t.Errorf("result = %+v, want build #2", res)
				}
			},
		},
		{
			name:    "submit then failed build",
			classic: true,
			run: func(t *testing.T, m buildOptionsModel) (buildOptionsModel, tea.Cmd) {
				m, _ = sendAll(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
				return sendAll(t, m, buildResultMsg{workspace: testWorkspace(true), err: buildFailed})
			},
			wantQuit: true,
			checkDone: func(t *testing.T, res BuildOptionsResult) {
				if !errors.Is(res.BuildErr, buildFailed) {
					t.Errorf("BuildErr = %v, want %v", res.BuildErr, buildFailed)
				}
			},
		},
		{
			name:    "ctrl+c while build in flight",
			classic: true,
			run: func(t *testing.T, m buildOptionsModel) (buildOptionsModel, tea.Cmd) {
				m, _ = sendAll(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
				return sendAll(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
			},
			wantErr:  ErrBuildPending,
			wantQuit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &stubClient{}
			m := buildOptionsModel{popover: loadedPopover(t, c, testWorkspace(tt.classic), regionSchema, nil)}

			m, cmd := tt.run(t, m)
			if tt.wantQuit && !isQuit(cmd) {
				t.Error("expected the program to quit")
			}
			if !m.done {
				t.Error("expected done")
			}

			res, err := m.outcome()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("outcome error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if res != (BuildOptionsResult{}) {
					t.Errorf("result = %+v, want zero on error", res)
				}
				return
			}
			if tt.checkDone != nil {
				tt.checkDone(t, res)
			}
		})
	}
}

func TestBuildOptionsIgnoresInputWhileWaiting(t *testing.T) {
	c := &stubClient{}
	m := buildOptionsModel{popover: loadedPopover(t, c, testWorkspace(true),
		[]model.TemplateVersionParameter{{Name: "region", Ephemeral: true}}, nil)}

	m, _ = sendAll(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, cmd := sendAll(t, m, tea.KeyMsg{Type: tea.KeyEsc}, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Error("keys other than ctrl+c must be ignored while waiting")
	}
	if m.done {
		t.Error("should still be waiting for the build result")
	}
}
