package popover

import (
	"context"
	"errors"

	"github.com/tormodhaugland/wsb/internal/client"
	"github.com/tormodhaugland/wsb/internal/model"
	"golang.org/x/sync/errgroup"
)

// Load runs both loading queries concurrently and feeds the results to w on
// the caller's goroutine. It returns the *FetchError recorded on w, if any.
func Load(ctx context.Context, src client.Source, w *Workflow) error {
	ws := w.Workspace()
	id := w.ID()

	var (
		schema []model.TemplateVersionParameter
		prior  []model.WorkspaceBuildParameter
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		params, err := src.TemplateVersionRichParameters(gctx, ws.LatestBuild.TemplateVersionID)
		if err != nil {
			return &FetchError{Op: FetchTemplateParameters, Err: err}
		}
		schema = params
		return nil
	})
	g.Go(func() error {
		params, err := src.WorkspaceBuildParameters(gctx, ws.LatestBuild.ID)
		if err != nil {
			return &FetchError{Op: FetchBuildParameters, Err: err}
		}
		prior = params
		return nil
	})

	if err := g.Wait(); err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			fe = &FetchError{Op: FetchTemplateParameters, Err: err}
		}
		w.ReceiveError(id, fe.Op, fe.Err)
		return loadError(w)
	}

	w.ReceiveSchema(id, schema)
	w.ReceiveBuildParameters(id, prior)
	return loadError(w)
}

func loadError(w *Workflow) error {
	if l, ok := w.State().(Loading); ok && l.Err != nil {
		return l.Err
	}
	return nil
}
