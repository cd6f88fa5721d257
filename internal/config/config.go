package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	Schema       int    `json:"schema"`
	URL          string `json:"url,omitempty"`
	SessionToken string `json:"session_token,omitempty"`
	Fixtures     string `json:"fixtures,omitempty"`
	DataDir      string `json:"data_dir"`
	LogLevel     string `json:"log_level,omitempty"`
	DocsURL      string `json:"docs_url,omitempty"`
}

const CurrentConfigSchema = 1

const DefaultDocsURL = "https://coder.com/docs"

// Environment variables that override the config file.
const (
	EnvURL          = "WSB_URL"
	EnvSessionToken = "WSB_SESSION_TOKEN"
)

func DefaultConfig() *Config {
	return &Config{
		Schema:   CurrentConfigSchema,
		DataDir:  defaultDataDir(),
		LogLevel: "info",
		DocsURL:  DefaultDocsURL,
	}
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "wsb")
}

func Load(configPath string) (*Config, error) {
	cfg, err := loadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	cfg.expandPaths()
	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	for _, path := range getConfigPaths(configPath) {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		var cfg Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	return DefaultConfig(), nil
}

func getConfigPaths(explicit string) []string {
	home, _ := os.UserHomeDir()

	var paths []string

	if explicit != "" {
		paths = append(paths, explicit)
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "wsb", "config.json"))

	return paths
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvURL); v != "" {
		c.URL = v
	}
	if v := os.Getenv(EnvSessionToken); v != "" {
		c.SessionToken = v
	}
}

func (c *Config) applyDefaults() {
	if c.Schema == 0 {
		c.Schema = CurrentConfigSchema
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DocsURL == "" {
		c.DocsURL = DefaultDocsURL
	}
}

func (c *Config) expandPaths() {
	c.DataDir = expandHome(c.DataDir)
	c.Fixtures = expandHome(c.Fixtures)
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

// UseAPI reports whether a platform URL is configured. Without one wsb runs
// against the local fixtures file.
func (c *Config) UseAPI() bool {
	return c.URL != ""
}

func (c *Config) FixturesPath() string {
	if c.Fixtures != "" {
		return c.Fixtures
	}
	return filepath.Join(c.DataDir, "workspaces.yaml")
}

func (c *Config) JournalPath() string {
	return filepath.Join(c.DataDir, "journal.db")
}

func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "wsb.log")
}

// DocsLink joins a documentation path onto the configured docs root.
func (c *Config) DocsLink(path string) string {
	return strings.TrimSuffix(c.DocsURL, "/") + path
}

// SiteLink joins a site path (such as a workspace settings page) onto the
// platform URL. In fixture mode the path is returned unchanged.
func (c *Config) SiteLink(path string) string {
	if c.URL == "" {
		return path
	}
	return strings.TrimSuffix(c.URL, "/") + path
}
