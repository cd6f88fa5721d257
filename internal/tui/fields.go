package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tormodhaugland/wsb/internal/form"
	"github.com/tormodhaugland/wsb/internal/model"
)

// optionItem is a list item for option selection.
type optionItem struct {
	option model.TemplateVersionParameterOption
}

func (i optionItem) Title() string {
	if i.option.Name != "" && i.option.Name != i.option.Value {
		return fmt.Sprintf("%s (%s)", i.option.Name, i.option.Value)
	}
	return i.option.Value
}
func (i optionItem) Description() string { return i.option.Description }
func (i optionItem) FilterValue() string { return i.option.Value }

// inputMode represents how a field is edited.
type inputMode int

const (
	modeText inputMode = iota
	modeBoolean
	modeChoice
)

// field is the editor for one parameter. It owns the uncommitted value; the
// form controller only sees it once committed.
type field struct {
	helpers    form.FieldHelpers
	mode       inputMode
	textInput  textinput.Model
	optionList list.Model
	boolValue  bool
	err        string
}

func newField(h form.FieldHelpers) field {
	f := field{helpers: h}
	p := h.Parameter
	value := h.Value.Value

	switch {
	case p.Type == model.ParameterTypeBool:
		f.mode = modeBoolean
		if value == "" {
			value = p.DefaultValue
		}
		f.boolValue = value == "true"

	case len(p.Options) > 0 && p.Type != model.ParameterTypeListString:
		f.mode = modeChoice
		items := make([]list.Item, len(p.Options))
		selectedIdx := 0
		if value == "" {
			value = p.DefaultValue
		}
		for i, o := range p.Options {
			items[i] = optionItem{option: o}
			if o.Value == value {
				selectedIdx = i
			}
		}
		delegate := list.NewDefaultDelegate()
		delegate.ShowDescription = false
		delegate.SetSpacing(0)
		delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("212"))

		l := list.New(items, delegate, 36, min(len(p.Options)+1, 8))
		l.SetShowTitle(false)
		l.SetShowStatusBar(false)
		l.SetFilteringEnabled(false)
		l.SetShowHelp(false)
		l.SetShowPagination(false)
		l.Select(selectedIdx)
		f.optionList = l

	default: // string, number, list(string)
		f.mode = modeText
		ti := textinput.New()
		ti.Placeholder = p.DefaultValue
		if ti.Placeholder == "" {
			ti.Placeholder = "value"
		}
		ti.CharLimit = 256
		ti.Width = 32
		ti.SetValue(value)
		f.textInput = ti
	}

	return f
}

// Value is what the field would commit right now.
func (f field) Value() string {
	switch f.mode {
	case modeBoolean:
		if f.boolValue {
			return "true"
		}
		return "false"
	case modeChoice:
		if item, ok := f.optionList.SelectedItem().(optionItem); ok {
			return item.option.Value
		}
		return ""
	default:
		return strings.TrimSpace(f.textInput.Value())
	}
}

// Validate applies the parameter's validation helper and records the error
// for display.
func (f *field) Validate() bool {
	if err := f.helpers.Validate(f.Value()); err != nil {
		f.err = err.Error()
		return false
	}
	f.err = ""
	return true
}

func (f *field) Focus() tea.Cmd {
	if f.mode == modeText {
		return f.textInput.Focus()
	}
	return nil
}

func (f *field) Blur() {
	if f.mode == modeText {
		f.textInput.Blur()
	}
}

// capturesVertical reports whether up/down belong to the field rather than
// to form navigation.
func (f field) capturesVertical() bool {
	return f.mode == modeChoice
}

func (f field) Update(msg tea.Msg) (field, tea.Cmd) {
	switch f.mode {
	case modeBoolean:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "y", "Y", "t", "1":
				f.boolValue = true
			case "n", "N", "f", "0":
				f.boolValue = false
			case "left", "h", "right", "l", " ":
				f.boolValue = !f.boolValue
			}
		}
		return f, nil

	case modeChoice:
		var cmd tea.Cmd
		f.optionList, cmd = f.optionList.Update(msg)
		return f, cmd

	default:
		var cmd tea.Cmd
		f.textInput, cmd = f.textInput.Update(msg)
		return f, cmd
	}
}

func (f field) View(focused bool) string {
	p := f.helpers.Parameter
	var sb strings.Builder

	label := p.Label()
	if focused {
		label = "› " + label
	} else {
		label = "  " + label
	}
	sb.WriteString(promptLabelStyle.Render(label))
	if p.Required {
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(" *"))
	}
	if f.helpers.Value.Source == model.SourceActiveBuild {
		sb.WriteString(" " + sourceStyle.Render("from active build"))
	}
	sb.WriteString("\n")

	if p.Description != "" {
		sb.WriteString("  " + promptHintStyle.Render(p.Description) + "\n")
	}

	switch f.mode {
	case modeBoolean:
		on := lipgloss.NewStyle().
			Background(lipgloss.Color("212")).
			Foreground(lipgloss.Color("0")).
			Bold(true)
		yes, no := "  true  ", "  false  "
		if f.boolValue {
			yes = on.Render(" true ")
		} else {
			no = on.Render(" false ")
		}
		sb.WriteString(fmt.Sprintf("  [ %s | %s ]\n", yes, no))

	case modeChoice:
		if focused {
			sb.WriteString(f.optionList.View() + "\n")
		} else {
			sb.WriteString("  " + f.Value() + "\n")
		}

	default:
		sb.WriteString("  " + f.textInput.View() + "\n")
		if p.Type == model.ParameterTypeNumber {
			sb.WriteString("  " + promptHintStyle.Render("(number)") + "\n")
		}
	}

	if f.err != "" {
		sb.WriteString("  " + promptErrorStyle.Render("Error: "+f.err) + "\n")
	}

	return sb.String()
}
