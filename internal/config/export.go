package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	merrors "github.com/zhubert/mend/internal/errors"
)

// Effective is the configuration in force for one repository, after defaults
// and overrides.
type Effective struct {
	ConfigFile            string     `json:"config_file" yaml:"config_file" toml:"config_file"`
	NotificationsEnabled  bool       `json:"notifications_enabled" yaml:"notifications_enabled" toml:"notifications_enabled"`
	Editor                string     `json:"editor" yaml:"editor" toml:"editor"`
	UseGitMergetool       bool       `json:"use_git_mergetool" yaml:"use_git_mergetool" toml:"use_git_mergetool"`
	MaxBackgroundSessions int        `json:"max_background_sessions" yaml:"max_background_sessions" toml:"max_background_sessions"`
	PreviewStyle          string     `json:"preview_style" yaml:"preview_style" toml:"preview_style"`
	PromptOnUnresolved    bool       `json:"prompt_on_unresolved" yaml:"prompt_on_unresolved" toml:"prompt_on_unresolved"`
	RepoFile              string     `json:"repo_file,omitempty" yaml:"repo_file,omitempty" toml:"repo_file,omitempty"`
	Repo                  RepoConfig `json:"repo" yaml:"repo" toml:"repo"`
}

// NewEffective combines the user config with a repository's overrides.
func NewEffective(c *Config, repo RepoConfig) Effective {
	return Effective{
		ConfigFile:            c.Path(),
		NotificationsEnabled:  c.GetNotificationsEnabled(),
		Editor:                c.GetEditor(),
		UseGitMergetool:       c.GetUseGitMergetool(),
		MaxBackgroundSessions: c.GetMaxBackgroundSessions(),
		PreviewStyle:          c.GetPreviewStyle(),
		PromptOnUnresolved:    c.GetPromptOnUnresolved(),
		RepoFile:              repo.Path(),
		Repo:                  repo,
	}
}

// Formats accepted by Marshal.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Marshal renders v as json, yaml or toml.
func Marshal(v any, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML, "yml":
		return yaml.Marshal(v)
	case FormatTOML:
		return toml.Marshal(v)
	}
	return nil, merrors.ConfigInvalid(fmt.Sprintf("unknown format %q (want json, yaml or toml)", format))
}
