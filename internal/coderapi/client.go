// Package coderapi is a small client for the workspace platform's REST API,
// covering what the build options popover needs.
package coderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tormodhaugland/wsb/internal/client"
	"github.com/tormodhaugland/wsb/internal/model"
)

// SessionTokenHeader carries the API session token.
const SessionTokenHeader = "Coder-Session-Token"

// Error is a non-2xx response from the API.
type Error struct {
	StatusCode int    `json:"-"`
	Method     string `json:"-"`
	URL        string `json:"-"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, msg)
}

// Is reports a 404 as client.ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == client.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// CreateWorkspaceBuildRequest is the body of a build request.
type CreateWorkspaceBuildRequest struct {
	Transition          model.WorkspaceTransition       `json:"transition"`
	TemplateVersionID   string                          `json:"template_version_id,omitempty"`
	RichParameterValues []model.WorkspaceBuildParameter `json:"rich_parameter_values,omitempty"`
}

type WorkspacesResponse struct {
	Workspaces []model.Workspace `json:"workspaces"`
	Count      int               `json:"count"`
}

type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithSessionToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(rawURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", rawURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Workspaces(ctx context.Context) ([]model.Workspace, error) {
	var resp WorkspacesResponse
	if err := c.do(ctx, http.MethodGet, "/api/v2/workspaces", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Workspaces, nil
}

func (c *Client) Workspace(ctx context.Context, owner, name string) (model.Workspace, error) {
	var ws model.Workspace
	path := fmt.Sprintf("/api/v2/users/%s/workspace/%s", url.PathEscape(owner), url.PathEscape(name))
	if err := c.do(ctx, http.MethodGet, path, nil, &ws); err != nil {
		return model.Workspace{}, err
	}
	return ws, nil
}

func (c *Client) TemplateVersionRichParameters(ctx context.Context, templateVersionID string) ([]model.TemplateVersionParameter, error) {
	var params []model.TemplateVersionParameter
	path := fmt.Sprintf("/api/v2/templateversions/%s/rich-parameters", url.PathEscape(templateVersionID))
	if err := c.do(ctx, http.MethodGet, path, nil, &params); err != nil {
		return nil, err
	}
	return params, nil
}

func (c *Client) WorkspaceBuildParameters(ctx context.Context, buildID string) ([]model.WorkspaceBuildParameter, error) {
	var params []model.WorkspaceBuildParameter
	path := fmt.Sprintf("/api/v2/workspacebuilds/%s/parameters", url.PathEscape(buildID))
	if err := c.do(ctx, http.MethodGet, path, nil, &params); err != nil {
		return nil, err
	}
	return params, nil
}

// StartBuild asks the platform to start ws with the given parameter values.
func (c *Client) StartBuild(ctx context.Context, ws model.Workspace, params []model.WorkspaceBuildParameter) (model.WorkspaceBuild, error) {
	req := CreateWorkspaceBuildRequest{
		Transition:          model.TransitionStart,
		RichParameterValues: params,
	}
	var build model.WorkspaceBuild
	path := fmt.Sprintf("/api/v2/workspaces/%s/builds", url.PathEscape(ws.ID))
	if err := c.do(ctx, http.MethodPost, path, req, &build); err != nil {
		return model.WorkspaceBuild{}, err
	}
	return build, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u := c.baseURL.String() + path
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(SessionTokenHeader, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode, Method: method, URL: u}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
