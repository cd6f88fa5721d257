// Package popover implements the build options popover as a state machine.
//
// A Workflow is one open instance of the popover. It starts in Loading,
// waits for both the parameter schema and the active build's values, then
// settles into RedirectEligible, NoEphemeralParameters or FormReady. Every
// path ends in Closed, which is terminal: reopening means calling Open again
// and fetching fresh data.
//
// A Workflow is not safe for concurrent use. It is meant to be driven from a
// single event loop (a bubbletea program or a CLI command); asynchronous
// fetch results are handed back tagged with the instance ID so that a
// response for a dismissed instance is dropped.
package popover

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tormodhaugland/wsb/internal/autofill"
	"github.com/tormodhaugland/wsb/internal/form"
	"github.com/tormodhaugland/wsb/internal/model"
)

// DocsPath is the documentation page about ephemeral parameters, relative to
// the docs root.
const DocsPath = "/admin/templates/extending-templates/parameters#ephemeral-parameters"

const defaultDocsRoot = "https://coder.com/docs"

type Workflow struct {
	id        uuid.UUID
	workspace model.Workspace
	docsURL   string
	log       *slog.Logger
	state     State

	schema     []model.TemplateVersionParameter
	prior      []model.WorkspaceBuildParameter
	haveSchema bool
	havePrior  bool
}

type Option func(*Workflow)

// WithDocsURL sets the link shown when a template has no ephemeral
// parameters.
func WithDocsURL(url string) Option {
	return func(w *Workflow) {
		w.docsURL = url
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) {
		w.log = l
	}
}

// Open starts a new popover instance for ws in the Loading state.
func Open(ws model.Workspace, opts ...Option) *Workflow {
	w := &Workflow{
		id:        uuid.New(),
		workspace: ws,
		docsURL:   defaultDocsRoot + DocsPath,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:     Loading{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With("popover", w.id.String(), "workspace", ws.FullName())
	w.log.Debug("popover opened")
	return w
}

func (w *Workflow) ID() uuid.UUID { return w.id }

func (w *Workflow) Workspace() model.Workspace { return w.workspace }

func (w *Workflow) State() State { return w.state }

func (w *Workflow) Kind() Kind { return w.state.Kind() }

// accepting reports whether a fetch result for id may still change this
// instance.
func (w *Workflow) accepting(id uuid.UUID) bool {
	if id != w.id {
		return false
	}
	l, ok := w.state.(Loading)
	return ok && l.Err == nil
}

// ReceiveSchema delivers the template version's parameters. It returns false
// when the result was ignored as stale.
func (w *Workflow) ReceiveSchema(id uuid.UUID, params []model.TemplateVersionParameter) bool {
	if !w.accepting(id) {
		w.log.Debug("dropping stale schema response", "response_for", id.String())
		return false
	}
	w.schema = params
	w.haveSchema = true
	w.settle()
	return true
}

// ReceiveBuildParameters delivers the active build's parameter values. It
// returns false when the result was ignored as stale.
func (w *Workflow) ReceiveBuildParameters(id uuid.UUID, params []model.WorkspaceBuildParameter) bool {
	if !w.accepting(id) {
		w.log.Debug("dropping stale build parameters response", "response_for", id.String())
		return false
	}
	w.prior = params
	w.havePrior = true
	w.settle()
	return true
}

// ReceiveError records a failed fetch. The popover stays in Loading with
// the error attached and ignores any later responses.
func (w *Workflow) ReceiveError(id uuid.UUID, op FetchOp, err error) bool {
	if !w.accepting(id) {
		return false
	}
	fe := &FetchError{Op: op, Err: err}
	w.log.Warn("fetch failed", "op", string(op), "error", err)
	w.schema, w.prior = nil, nil
	w.state = Loading{Err: fe}
	return true
}

func (w *Workflow) settle() {
	if !w.haveSchema || !w.havePrior {
		return
	}

	ephemeral := autofill.Ephemeral(w.schema)
	switch {
	case len(ephemeral) == 0:
		w.transition(NoEphemeralParameters{DocsURL: w.docsURL})
	case !w.workspace.TemplateUseClassicParameterFlow:
		w.transition(RedirectEligible{
			Parameters:   ephemeral,
			SettingsPath: w.workspace.SettingsParametersPath(),
		})
	default:
		w.transition(FormReady{
			Parameters: ephemeral,
			Form:       form.Autofill(w.schema, w.prior),
		})
	}
}

func (w *Workflow) transition(next State) {
	w.log.Debug("popover transition", "from", w.state.Kind().String(), "to", next.Kind().String())
	w.state = next
}

// SetValue edits a form field. It is ignored outside FormReady and for
// out-of-range indexes.
func (w *Workflow) SetValue(index int, value string) bool {
	fr, ok := w.state.(FormReady)
	if !ok {
		return false
	}
	if !fr.Form.SetValue(index, value) {
		w.log.Error("form index out of range", "index", index, "fields", fr.Form.Len())
		return false
	}
	return true
}

// Submit packages the form into a build request and closes the popover in
// the same step, so a second Submit fails with ErrNotAcceptingInput even
// while the build request is still in flight.
func (w *Workflow) Submit() ([]model.WorkspaceBuildParameter, error) {
	fr, ok := w.state.(FormReady)
	if !ok {
		return nil, stateError("submit", w.state.Kind())
	}
	req := fr.Form.Submit()
	w.transition(Closed{Reason: ClosedSubmitted})
	w.log.Info("build options submitted", "parameters", len(req))
	return req, nil
}

// GoToSettings closes the popover and returns the settings page path the
// operator should be sent to.
func (w *Workflow) GoToSettings() (string, error) {
	re, ok := w.state.(RedirectEligible)
	if !ok {
		return "", stateError("open workspace settings", w.state.Kind())
	}
	w.transition(Closed{Reason: ClosedRedirected})
	return re.SettingsPath, nil
}

// Dismiss closes the popover from any state, discarding edits. It returns
// false if the popover was already closed.
func (w *Workflow) Dismiss() bool {
	if w.state.Kind() == KindClosed {
		return false
	}
	w.transition(Closed{Reason: ClosedDismissed})
	return true
}
