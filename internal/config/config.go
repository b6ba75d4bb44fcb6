// Package config loads mend's settings.
//
// User settings live in ~/.mend/config.json. A repository can override the
// text and the follow-up behavior of its operations in <root>/.mend.toml.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	merrors "github.com/zhubert/mend/internal/errors"
)

// Defaults for settings absent from the config file.
const (
	DefaultMaxBackgroundSessions = 2
	DefaultPreviewStyle          = "monokai"
	MaxBackgroundSessionsLimit   = 16
)

// Config holds the user configuration
type Config struct {
	NotificationsEnabled  bool   `json:"notifications_enabled,omitempty"`   // Desktop notifications for warnings and errors
	Editor                string `json:"editor,omitempty"`                  // Command for the merge tool's edit action
	UseGitMergetool       bool   `json:"use_git_mergetool,omitempty"`       // Offer "git mergetool" in the merge tool
	MaxBackgroundSessions int    `json:"max_background_sessions,omitempty"` // Retries that may run at once
	PreviewStyle          string `json:"preview_style,omitempty"`           // Chroma style for the file preview
	PromptOnUnresolved    *bool  `json:"prompt_on_unresolved,omitempty"`    // Ask to retry when conflicts remain

	mu       sync.RWMutex
	filePath string
}

// configDir returns the path to the config directory
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mend"), nil
}

// configPath returns the path to the config file
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if it doesn't exist
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, merrors.ConfigLoadFailed("~/.mend/config.json", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{filePath: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, merrors.ConfigLoadFailed(path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, merrors.ConfigLoadFailed(path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise be silently clamped.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MaxBackgroundSessions < 0 || c.MaxBackgroundSessions > MaxBackgroundSessionsLimit {
		return merrors.ConfigInvalid("max_background_sessions must be between 0 and 16")
	}
	if strings.ContainsAny(c.PreviewStyle, " \t\n") {
		return merrors.ConfigInvalid("preview_style must be a single chroma style name")
	}
	return nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.filePath
}

// Save writes the config to disk
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filePath == "" {
		path, err := configPath()
		if err != nil {
			return merrors.ConfigSaveFailed("~/.mend/config.json", err)
		}
		c.filePath = path
	}

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return merrors.ConfigSaveFailed(c.filePath, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return merrors.ConfigSaveFailed(c.filePath, err)
	}

	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		return merrors.ConfigSaveFailed(c.filePath, err)
	}
	return nil
}

// GetNotificationsEnabled returns whether desktop notifications are enabled
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SetNotificationsEnabled sets whether desktop notifications are enabled
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NotificationsEnabled = enabled
}

// GetEditor returns the editor command, falling back to $VISUAL, $EDITOR
// and vi.
func (c *Config) GetEditor() string {
	c.mu.RLock()
	editor := c.Editor
	c.mu.RUnlock()

	if editor != "" {
		return editor
	}
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return "vi"
}

// SetEditor sets the editor command
func (c *Config) SetEditor(editor string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Editor = strings.TrimSpace(editor)
}

// GetUseGitMergetool returns whether git mergetool is offered
func (c *Config) GetUseGitMergetool() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.UseGitMergetool
}

// SetUseGitMergetool sets whether git mergetool is offered
func (c *Config) SetUseGitMergetool(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.UseGitMergetool = enabled
}

// GetMaxBackgroundSessions returns how many retries may run at once
func (c *Config) GetMaxBackgroundSessions() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.MaxBackgroundSessions <= 0 {
		return DefaultMaxBackgroundSessions
	}
	return c.MaxBackgroundSessions
}

// SetMaxBackgroundSessions sets how many retries may run at once
func (c *Config) SetMaxBackgroundSessions(n int) error {
	if n < 0 || n > MaxBackgroundSessionsLimit {
		return merrors.ConfigInvalid("max_background_sessions must be between 0 and 16")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MaxBackgroundSessions = n
	return nil
}

// GetPreviewStyle returns the chroma style used for previews
func (c *Config) GetPreviewStyle() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.PreviewStyle == "" {
		return DefaultPreviewStyle
	}
	return c.PreviewStyle
}

// SetPreviewStyle sets the chroma style used for previews
func (c *Config) SetPreviewStyle(style string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.PreviewStyle = style
}

// GetPromptOnUnresolved returns whether to ask for a retry when conflicts
// remain. Defaults to true.
func (c *Config) GetPromptOnUnresolved() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.PromptOnUnresolved == nil || *c.PromptOnUnresolved
}

// SetPromptOnUnresolved sets whether to ask for a retry when conflicts remain
func (c *Config) SetPromptOnUnresolved(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.PromptOnUnresolved = &enabled
}
