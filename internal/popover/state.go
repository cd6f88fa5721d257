package popover

import (
	"github.com/tormodhaugland/wsb/internal/form"
	"github.com/tormodhaugland/wsb/internal/model"
)

type Kind int

const (
	KindLoading Kind = iota
	KindRedirectEligible
	KindNoEphemeralParameters
	KindFormReady
	KindClosed
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindRedirectEligible:
		return "redirect_eligible"
	case KindNoEphemeralParameters:
		return "no_ephemeral_parameters"
	case KindFormReady:
		return "form_ready"
	case KindClosed:
		return "closed"
	}
	return "unknown"
}

// State is one of Loading, RedirectEligible, NoEphemeralParameters,
// FormReady or Closed. Renderers switch on the concrete type.
type State interface {
	Kind() Kind
	isState()
}

// Loading waits for the parameter schema and the active build's values.
// Err is set when a fetch failed; the popover then stays here until
// dismissed.
type Loading struct {
	Err error
}

// RedirectEligible lists ephemeral parameters that must be set from the
// workspace settings page instead of this popover.
type RedirectEligible struct {
	Parameters   []model.TemplateVersionParameter
	SettingsPath string
}

// NoEphemeralParameters is informational only.
type NoEphemeralParameters struct {
	DocsURL string
}

// FormReady hosts the form for the ephemeral parameters.
type FormReady struct {
	Parameters []model.TemplateVersionParameter
	Form       *form.Controller
}

type CloseReason string

const (
	ClosedDismissed  CloseReason = "dismissed"
	ClosedSubmitted  CloseReason = "submitted"
	ClosedRedirected CloseReason = "redirected"
)

type Closed struct {
	Reason CloseReason
}

func (Loading) Kind() Kind               { return KindLoading }
func (RedirectEligible) Kind() Kind      { return KindRedirectEligible }
func (NoEphemeralParameters) Kind() Kind { return KindNoEphemeralParameters }
func (FormReady) Kind() Kind             { return KindFormReady }
func (Closed) Kind() Kind                { return KindClosed }

func (Loading) isState()               {}
func (RedirectEligible) isState()      {}
func (NoEphemeralParameters) isState() {}
func (FormReady) isState()             {}
func (Closed) isState()                {}
