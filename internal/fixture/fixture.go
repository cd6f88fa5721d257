// Package fixture serves workspaces, template parameters and builds from a
// local YAML file. It backs offline use of wsb and the development server.
package fixture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tormodhaugland/wsb/internal/client"
	"github.com/tormodhaugland/wsb/internal/model"
	"gopkg.in/yaml.v3"
)

type TemplateVersion struct {
	ID         string                           `yaml:"id"`
	Parameters []model.TemplateVersionParameter `yaml:"parameters"`
}

type Build struct {
	model.WorkspaceBuild `yaml:",inline"`
	WorkspaceID          string                          `yaml:"workspace_id"`
	Parameters           []model.WorkspaceBuildParameter `yaml:"parameters"`
}

type Data struct {
	Workspaces       []model.Workspace `yaml:"workspaces"`
	TemplateVersions []TemplateVersion `yaml:"template_versions"`
	Builds           []Build           `yaml:"builds"`
}

// NotFoundError indicates a lookup matched nothing in the fixtures.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == client.ErrNotFound
}

// Store is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	path string
	data Data
	now  func() time.Time
}

// New returns a store over data that is never written to disk.
func New(data Data) *Store {
	return &Store{data: data, now: time.Now}
}

// Load reads the fixtures file at path. A missing file yields an empty
// store that will be created on the first build.
func Load(path string) (*Store, error) {
	s := &Store{path: path, now: time.Now}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// Path returns the backing file, or "" for an in-memory store.
func (s *Store) Path() string {
	return s.path
}

// Save writes the store back to its file atomically.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	raw, err := yaml.Marshal(&s.data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, s.path)
}

func (s *Store) Workspaces(ctx context.Context) ([]model.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Workspace, len(s.data.Workspaces))
	copy(out, s.data.Workspaces)
	return out, nil
}

func (s *Store) Workspace(ctx context.Context, owner, name string) (model.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ws := range s.data.Workspaces {
		if ws.OwnerName == owner && ws.Name == name {
			return ws, nil
		}
	}
	return model.Workspace{}, &NotFoundError{Kind: "workspace", ID: owner + "/" + name}
}

func (s *Store) WorkspaceByID(ctx context.Context, id string) (model.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.workspaceIndex(id)
	if i < 0 {
		return model.Workspace{}, &NotFoundError{Kind: "workspace", ID: id}
	}
	return s.data.Workspaces[i], nil
}

func (s *Store) TemplateVersionRichParameters(ctx context.Context, templateVersionID string) ([]model.TemplateVersionParameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tv := range s.data.TemplateVersions {
		if tv.ID == templateVersionID {
			out := make([]model.TemplateVersionParameter, len(tv.Parameters))
			copy(out, tv.Parameters)
			return out, nil
		}
	}
	return nil, &NotFoundError{Kind: "template version", ID: templateVersionID}
}

func (s *Store) WorkspaceBuildParameters(ctx context.Context, buildID string) ([]model.WorkspaceBuildParameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := s.build(buildID)
	if b == nil {
		return nil, &NotFoundError{Kind: "workspace build", ID: buildID}
	}
	out := make([]model.WorkspaceBuildParameter, len(b.Parameters))
	copy(out, b.Parameters)
	return out, nil
}

// StartBuild records a new start build for ws. Its parameters are the
// previous build's values with params laid over them, so values that are
// not part of the request carry forward.
func (s *Store) StartBuild(ctx context.Context, ws model.Workspace, params []model.WorkspaceBuildParameter) (model.WorkspaceBuild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.workspaceIndex(ws.ID)
	if i < 0 {
		return model.WorkspaceBuild{}, &NotFoundError{Kind: "workspace", ID: ws.ID}
	}
	current := s.data.Workspaces[i]

	var previous []model.WorkspaceBuildParameter
	if b := s.build(current.LatestBuild.ID); b != nil {
		previous = b.Parameters
	}

	build := Build{
		WorkspaceBuild: model.WorkspaceBuild{
			ID:                uuid.NewString(),
			BuildNumber:       current.LatestBuild.BuildNumber + 1,
			TemplateVersionID: current.LatestBuild.TemplateVersionID,
			Transition:        model.TransitionStart,
			Status:            "pending",
			CreatedAt:         s.now().UTC(),
		},
		WorkspaceID: current.ID,
		Parameters:  Overlay(previous, params),
	}

	s.data.Builds = append(s.data.Builds, build)
	s.data.Workspaces[i].LatestBuild = build.WorkspaceBuild

	if err := s.saveLocked(); err != nil {
		return model.WorkspaceBuild{}, fmt.Errorf("saving fixtures: %w", err)
	}
	return build.WorkspaceBuild, nil
}

// Overlay returns base with each value in top replacing the entry of the
// same name, or appended when base has none.
func Overlay(base, top []model.WorkspaceBuildParameter) []model.WorkspaceBuildParameter {
	out := make([]model.WorkspaceBuildParameter, len(base))
	copy(out, base)

	for _, p := range top {
		replaced := false
		for i := range out {
			if out[i].Name == p.Name {
				out[i].Value = p.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) workspaceIndex(id string) int {
	for i, ws := range s.data.Workspaces {
		if ws.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) build(id string) *Build {
	for i := range s.data.Builds {
		if s.data.Builds[i].ID == id {
			return &s.data.Builds[i]
		}
	}
	return nil
}
