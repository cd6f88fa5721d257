package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tormodhaugland/wsb/internal/client"
	"github.com/tormodhaugland/wsb/internal/coderapi"
	"github.com/tormodhaugland/wsb/internal/config"
	"github.com/tormodhaugland/wsb/internal/fixture"
	"github.com/tormodhaugland/wsb/internal/journal"
	"github.com/tormodhaugland/wsb/internal/logging"
	"github.com/tormodhaugland/wsb/internal/model"
	"github.com/tormodhaugland/wsb/internal/popover"
)

// env is what every command needs: config, a logger in the context, the
// workspace source and a journaling builder.
type env struct {
	ctx     context.Context
	cfg     *config.Config
	log     *slog.Logger
	src     client.Source
	builder client.Builder
	journal *journal.DB
	closers []io.Closer
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, logCloser := logging.NewFile(cfg.LogPath(), cfg.LogLevel)
	e := &env{
		ctx:     logging.WithLogger(ctx, log),
		cfg:     cfg,
		log:     log,
		closers: []io.Closer{logCloser},
	}

	var c client.Client
	if cfg.UseAPI() {
		api, err := coderapi.New(cfg.URL, coderapi.WithSessionToken(cfg.SessionToken))
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to create API client: %w", err)
		}
		c = api
		log.Debug("using platform API", "url", cfg.URL)
	} else {
		path := cfg.FixturesPath()
		if wrote, err := fixture.WriteSample(path); err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to prepare fixtures: %w", err)
		} else if wrote {
			log.Info("wrote sample fixtures", "path", path)
		}
		store, err := fixture.Load(path)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to load fixtures: %w", err)
		}
		c = store
		log.Debug("using fixtures", "path", path)
	}

	db, err := journal.Open(cfg.JournalPath())
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	e.journal = db
	e.closers = append(e.closers, db)

	e.src = c
	e.builder = journal.NewRecorder(c, db)
	return e, nil
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			e.log.Warn("close failed", "error", err)
		}
	}
}

func (e *env) popoverOptions() []popover.Option {
	return []popover.Option{
		popover.WithDocsURL(e.cfg.DocsLink(popover.DocsPath)),
		popover.WithLogger(e.log),
	}
}

// findWorkspace resolves query and says which workspace was picked when it
// was not named exactly.
func (e *env) findWorkspace(query string) (model.Workspace, error) {
	ws, err := client.FindWorkspace(e.ctx, e.src, query)
	if err != nil {
		return model.Workspace{}, err
	}
	if ws.FullName() != query {
		fmt.Fprintf(os.Stderr, "Using workspace: %s\n", ws.FullName())
	}
	return ws, nil
}
