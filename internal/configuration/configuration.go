package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/pkg/errors"

	"github.com/malonaz/pdfchat/internal/file"
)

// DefaultPath is where the configuration lives unless overridden on the command line.
const DefaultPath = "~/.config/pdfchat/config.json"

// defaultConfig returns a fresh copy of the default configuration.
func defaultConfig() *Config {
	return &Config{
		BackendURL:     "http://localhost:8000",
		RequestTimeout: seconds(60),
		Database:       "~/.config/pdfchat/pdfchat.db",
		LogFile:        "/tmp/pdfchat-debug.log",

		Upload: &UploadConfig{
			MaxBytes: 25 * 1024 * 1024,
		},

		Chat: &ChatConfig{
			DateFormat:   "02.01.2006 15:04",
			SidebarWidth: 32,
			HistorySize:  1000,
		},
	}
}

// Config holds configuration for the pdfchat client.
type Config struct {
	// Base URL of the chat backend.
	BackendURL string `json:"backend_url"`
	// Per-request timeout in seconds. 0 disables the timeout; omitted means the default.
	RequestTimeout *int `json:"request_timeout"`
	// SQLite database holding local state (token, input history).
	Database string `json:"database"`
	// Debug log destination. The TUI owns the terminal, so logs go to a file.
	LogFile string `json:"log_file"`

	Upload *UploadConfig `json:"upload"`
	Chat   *ChatConfig   `json:"chat"`
}

// UploadConfig holds configuration for pdf uploads.
type UploadConfig struct {
	// Files above this size are rejected before upload. 0 disables the check.
	MaxBytes int64 `json:"max_bytes"`
	// Send documents without parsing them locally first.
	SkipValidation bool `json:"skip_validation"`
}

// ChatConfig holds configuration for the chat workspace.
type ChatConfig struct {
	// Go time layout used to render session creation dates.
	DateFormat string `json:"date_format"`
	// Width of the session sidebar in cells.
	SidebarWidth int `json:"sidebar_width"`
	// Maximum number of remembered inputs.
	HistorySize int `json:"history_size"`
}

func seconds(n int) *int { return &n }

// keepSetPointers stops mergo from replacing an explicit zero behind a set *int with the default.
// Nil pointers never reach the transformer and are filled as usual.
type keepSetPointers struct{}

func (keepSetPointers) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	if t != reflect.TypeOf((*int)(nil)) {
		return nil
	}
	return func(dst, src reflect.Value) error { return nil }
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout == nil {
		return 0
	}
	return time.Duration(*c.RequestTimeout) * time.Second
}

// Parse a configuration file.
func Parse(path string) (*Config, error) {
	path, err := file.ExpandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}
	if err := mergo.Merge(config, defaultConfig(), mergo.WithTransformers(keepSetPointers{})); err != nil {
		return nil, errors.Wrap(err, "applying defaults")
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize expands paths and validates values.
func (c *Config) normalize() error {
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
	if !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		return errors.Errorf("backend_url %q must start with http:// or https://", c.BackendURL)
	}
	if c.RequestTimeout != nil && *c.RequestTimeout < 0 {
		return errors.Errorf("request_timeout must not be negative, got %d", *c.RequestTimeout)
	}

	expandedDatabasePath, err := file.ExpandPath(c.Database)
	if err != nil {
		return errors.Wrap(err, "expanding database path")
	}
	c.Database = expandedDatabasePath

	expandedLogFilePath, err := file.ExpandPath(c.LogFile)
	if err != nil {
		return errors.Wrap(err, "expanding log file path")
	}
	c.LogFile = expandedLogFilePath
	return nil
}

// SetBackendURL overrides the backend url, e.g. from a command line flag.
func (c *Config) SetBackendURL(url string) error {
	previous := c.BackendURL
	c.BackendURL = url
	if err := c.normalize(); err != nil {
		c.BackendURL = previous
		return err
	}
	return nil
}

// save a configuration file.
func (c *Config) save(path string) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	err = os.WriteFile(path, bytes, 0644)
	if err != nil {
		return errors.Wrap(err, "writing file")
	}

	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	exists, err := file.Exists(path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	// Create the directories.
	dir, _ := filepath.Split(path)
	if dir != "" {
		if err := file.CreateDirectoryIfNotExist(dir); err != nil {
			return errors.Wrap(err, "creating folders")
		}
	}

	if err := defaultConfig().save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}
