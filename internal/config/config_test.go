package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	merrors "github.com/zhubert/mend/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_UsesHomeDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, ".mend", "config.json"), `{"editor": "nano"}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GetEditor() != "nano" {
		t.Errorf("GetEditor() = %q, want nano", cfg.GetEditor())
	}
	if cfg.Path() != filepath.Join(home, ".mend", "config.json") {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.GetNotificationsEnabled() {
		t.Error("notifications should be off by default")
	}
	if cfg.GetMaxBackgroundSessions() != DefaultMaxBackgroundSessions {
		t.Errorf("GetMaxBackgroundSessions() = %d", cfg.GetMaxBackgroundSessions())
	}
	if cfg.GetPreviewStyle() != DefaultPreviewStyle {
		t.Errorf("GetPreviewStyle() = %q", cfg.GetPreviewStyle())
	}
	if !cfg.GetPromptOnUnresolved() {
		t.Error("prompt_on_unresolved should default to true")
	}
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantKind merrors.Kind
	}{
		{"malformed json", `{"editor": `, merrors.KindConfig},
		{"negative sessions", `{"max_background_sessions": -1}`, merrors.KindInvalid},
		{"too many sessions", `{"max_background_sessions": 99}`, merrors.KindInvalid},
		{"style with spaces", `{"preview_style": "solarized dark"}`, merrors.KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			writeFile(t, path, tt.content)

			_, err := LoadFrom(path)
			if !merrors.Is(err, tt.wantKind) {
				t.Errorf("LoadFrom() error = %v, want kind %v", err, tt.wantKind)
			}
		})
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg.SetNotificationsEnabled(true)
	cfg.SetEditor("  code --wait ")
	cfg.SetUseGitMergetool(true)
	if err := cfg.SetMaxBackgroundSessions(4); err != nil {
		t.Fatal(err)
	}
	cfg.SetPreviewStyle("dracula")
	cfg.SetPromptOnUnresolved(false)

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !loaded.GetNotificationsEnabled() || !loaded.GetUseGitMergetool() {
		t.Error("booleans not persisted")
	}
	if loaded.GetEditor() != "code --wait" {
		t.Errorf("GetEditor() = %q", loaded.GetEditor())
	}
	if loaded.GetMaxBackgroundSessions() != 4 {
		t.Errorf("GetMaxBackgroundSessions() = %d", loaded.GetMaxBackgroundSessions())
	}
	if loaded.GetPreviewStyle() != "dracula" {
		t.Errorf("GetPreviewStyle() = %q", loaded.GetPreviewStyle())
	}
	if loaded.GetPromptOnUnresolved() {
		t.Error("prompt_on_unresolved=false not persisted")
	}
}

func TestConfig_SaveOmitsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, _ := LoadFrom(path)
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if len(raw) != 0 {
		t.Errorf("default config should save as {}, got %s", data)
	}
}

func TestConfig_SetMaxBackgroundSessionsRejectsOutOfRange(t *testing.T) {
	cfg := &Config{}
	if err := cfg.SetMaxBackgroundSessions(17); !merrors.Is(err, merrors.KindInvalid) {
		t.Errorf("SetMaxBackgroundSessions(17) error = %v", err)
	}
	if cfg.GetMaxBackgroundSessions() != DefaultMaxBackgroundSessions {
		t.Error("rejected value should not be stored")
	}
}

func TestConfig_GetEditorFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		editor string
		visual string
		env    string
		want   string
	}{
		{"configured wins", "hx", "code", "nano", "hx"},
		{"visual before editor", "", "code", "nano", "code"},
		{"editor env", "", "", "nano", "nano"},
		{"vi last", "", "", "", "vi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VISUAL", tt.visual)
			t.Setenv("EDITOR", tt.env)
			cfg := &Config{Editor: tt.editor}
			if got := cfg.GetEditor(); got != tt.want {
				t.Errorf("GetEditor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_ConcurrentAccess(t *testing.T) {
	cfg := &Config{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			cfg.SetNotificationsEnabled(i%2 == 0)
			_ = cfg.SetMaxBackgroundSessions(i % 8)
		}(i)
		go func() {
			defer wg.Done()
			_ = cfg.GetNotificationsEnabled()
			_ = cfg.GetMaxBackgroundSessions()
		}()
	}
	wg.Wait()
}

func TestLoadRepo(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		root := t.TempDir()
		rc, err := LoadRepo(root)
		if err != nil {
			t.Fatalf("LoadRepo() error = %v", err)
		}
		if !rc.CommitAfterMerge || rc.DropStashAfterResolve {
			t.Errorf("defaults = %+v", rc)
		}
		if rc.Path() != filepath.Join(root, RepoConfigFile) {
			t.Errorf("Path() = %q", rc.Path())
		}
	})

	t.Run("overrides", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, RepoConfigFile), `
error_title = "Release merge blocked"
error_description = " Ask #release for help."
merge_description = "Merging the release train"
commit_after_merge = false
drop_stash_after_resolve = true
`)
		rc, err := LoadRepo(root)
		if err != nil {
			t.Fatalf("LoadRepo() error = %v", err)
		}
		s := rc.Settings()
		if s.ErrorTitle != "Release merge blocked" || s.ErrorDescription != " Ask #release for help." {
			t.Errorf("text overrides = %+v", s)
		}
		if s.MergeDescription != "Merging the release train" {
			t.Errorf("MergeDescription = %q", s.MergeDescription)
		}
		if s.CommitAfterMerge || !s.DropStashAfterResolve {
			t.Errorf("flags = %+v", s)
		}
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, RepoConfigFile), `error_title = "x"`)
		rc, err := LoadRepo(root)
		if err != nil {
			t.Fatalf("LoadRepo() error = %v", err)
		}
		if !rc.CommitAfterMerge {
			t.Error("commit_after_merge should stay true when absent")
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, RepoConfigFile), `commit_afer_merge = false`)
		_, err := LoadRepo(root)
		if !merrors.Is(err, merrors.KindConfig) {
			t.Fatalf("LoadRepo() error = %v, want config error", err)
		}
		if !strings.Contains(err.Error(), "commit_afer_merge") {
			t.Errorf("error should name the unknown key: %v", err)
		}
	})

	t.Run("invalid toml", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, RepoConfigFile), `error_title = `)
		if _, err := LoadRepo(root); !merrors.Is(err, merrors.KindConfig) {
			t.Errorf("LoadRepo() error = %v, want config error", err)
		}
	})
}

func TestRepoConfig_SaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	rc, _ := LoadRepo(root)
	rc.ErrorTitle = "Saved"
	rc.DropStashAfterResolve = true
	if err := rc.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadRepo(root)
	if err != nil {
		t.Fatalf("LoadRepo() error = %v", err)
	}
	if loaded.ErrorTitle != "Saved" || !loaded.DropStashAfterResolve || !loaded.CommitAfterMerge {
		t.Errorf("loaded = %+v", loaded)
	}

	if err := (RepoConfig{}).Save(); !merrors.Is(err, merrors.KindInvalid) {
		t.Errorf("Save() without path error = %v", err)
	}
}

func TestMarshal(t *testing.T) {
	cfg := &Config{Editor: "nano", filePath: "/home/u/.mend/config.json"}
	eff := NewEffective(cfg, DefaultRepoConfig())

	tests := []struct {
		format string
		want   []string
	}{
		{FormatJSON, []string{`"editor": "nano"`, `"commit_after_merge": true`, `"max_background_sessions": 2`}},
		{FormatYAML, []string{"editor: nano", "commit_after_merge: true", "preview_style: monokai"}},
		{FormatTOML, []string{"editor = 'nano'", "[repo]", "commit_after_merge = true"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			data, err := Marshal(eff, tt.format)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(data), w) {
					t.Errorf("output missing %q:\n%s", w, data)
				}
			}
		})
	}

	if _, err := Marshal(eff, "xml"); !merrors.Is(err, merrors.KindInvalid) {
		t.Errorf("Marshal(xml) error = %v", err)
	}
}
