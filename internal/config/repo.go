package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	merrors "github.com/zhubert/mend/internal/errors"
	"github.com/zhubert/mend/internal/operation"
)

// RepoConfigFile is the per-repository override file, at the working tree
// root.
const RepoConfigFile = ".mend.toml"

// RepoConfig holds the overrides of one repository
type RepoConfig struct {
	ErrorTitle            string `toml:"error_title,omitempty" json:"error_title,omitempty" yaml:"error_title,omitempty"`
	ErrorDescription      string `toml:"error_description,omitempty" json:"error_description,omitempty" yaml:"error_description,omitempty"`
	MergeDescription      string `toml:"merge_description,omitempty" json:"merge_description,omitempty" yaml:"merge_description,omitempty"`
	CommitAfterMerge      bool   `toml:"commit_after_merge" json:"commit_after_merge" yaml:"commit_after_merge"`
	DropStashAfterResolve bool   `toml:"drop_stash_after_resolve" json:"drop_stash_after_resolve" yaml:"drop_stash_after_resolve"`

	path string
}

// DefaultRepoConfig commits merges and keeps stash entries.
func DefaultRepoConfig() RepoConfig {
	return RepoConfig{CommitAfterMerge: true}
}

// LoadRepo reads <root>/.mend.toml. A missing file yields the defaults.
// Unknown keys are rejected so typos do not go unnoticed.
func LoadRepo(root string) (RepoConfig, error) {
	cfg := DefaultRepoConfig()
	path := filepath.Join(root, RepoConfigFile)
	cfg.path = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, merrors.ConfigLoadFailed(path, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, merrors.ConfigLoadFailed(path, errors.New(strict.String()))
		}
		return cfg, merrors.ConfigLoadFailed(path, err)
	}
	return cfg, nil
}

// Path returns where the overrides are read from.
func (r RepoConfig) Path() string {
	return r.path
}

// Save writes the overrides back to <root>/.mend.toml.
func (r RepoConfig) Save() error {
	if r.path == "" {
		return merrors.ConfigInvalid("repository config has no path")
	}
	data, err := toml.Marshal(r)
	if err != nil {
		return merrors.ConfigSaveFailed(r.path, err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return merrors.ConfigSaveFailed(r.path, err)
	}
	return nil
}

// Settings converts the overrides for the operation package.
func (r RepoConfig) Settings() operation.Settings {
	return operation.Settings{
		ErrorTitle:            r.ErrorTitle,
		ErrorDescription:      r.ErrorDescription,
		MergeDescription:      r.MergeDescription,
		CommitAfterMerge:      r.CommitAfterMerge,
		DropStashAfterResolve: r.DropStashAfterResolve,
	}
}
