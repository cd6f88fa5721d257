// Package devserver exposes a fixture store over the same REST surface the
// API client uses, for local development and tests.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tormodhaugland/wsb/internal/coderapi"
	"github.com/tormodhaugland/wsb/internal/fixture"
	"github.com/tormodhaugland/wsb/internal/model"
)

type Config struct {
	Addr   string
	Store  *fixture.Store
	Token  string // when set, requests must carry it
	Logger *slog.Logger
}

// NewRouter returns the API routes backed by store.
func NewRouter(store *fixture.Store, token string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &handler{store: store, log: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	if token != "" {
		r.Use(requireToken(token))
	}

	r.Route("/api/v2", func(r chi.Router) {
		r.Get("/workspaces", h.listWorkspaces)
		r.Get("/users/{owner}/workspace/{name}", h.getWorkspace)
		r.Get("/templateversions/{id}/rich-parameters", h.richParameters)
		r.Get("/workspacebuilds/{id}/parameters", h.buildParameters)
		r.Post("/workspaces/{id}/builds", h.createBuild)
	})
	return r
}

// Run serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg.Store, cfg.Token, cfg.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type handler struct {
	store *fixture.Store
	log   *slog.Logger
}

func (h *handler) listWorkspaces(w http.ResponseWriter, r *http.Request) {
	ws, err := h.store.Workspaces(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coderapi.WorkspacesResponse{Workspaces: ws, Count: len(ws)})
}

func (h *handler) getWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := h.store.Workspace(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "name"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (h *handler) richParameters(w http.ResponseWriter, r *http.Request) {
	params, err := h.store.TemplateVersionRichParameters(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, params)
}

func (h *handler) buildParameters(w http.ResponseWriter, r *http.Request) {
	params, err := h.store.WorkspaceBuildParameters(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, params)
}

func (h *handler) createBuild(w http.ResponseWriter, r *http.Request) {
	var req coderapi.CreateWorkspaceBuildRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", err.Error())
		return
	}
	if req.Transition != model.TransitionStart {
		writeError(w, http.StatusBadRequest, "Unsupported transition.", string(req.Transition))
		return
	}

	ws, err := h.store.WorkspaceByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	build, err := h.store.StartBuild(r.Context(), ws, req.RichParameterValues)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.log.Info("build created", "workspace", ws.FullName(), "build", build.ID, "parameters", len(req.RichParameterValues))
	writeJSON(w, http.StatusCreated, build)
}

func requireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(coderapi.SessionTokenHeader) != token {
				writeError(w, http.StatusUnauthorized, "You must be logged in.", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, map[string]string{
		"message": message,
		"detail":  detail,
	})
}

func writeStoreError(w http.ResponseWriter, err error) {
	var nf *fixture.NotFoundError
	if errors.As(err, &nf) {
		writeError(w, http.StatusNotFound, "Resource not found.", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal error.", err.Error())
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
