package mergetool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/zhubert/mend/internal/conflict"
	merrors "github.com/zhubert/mend/internal/errors"
	pexec "github.com/zhubert/mend/internal/exec"
	"github.com/zhubert/mend/internal/git"
)

var ctx = context.Background()

func isArgs(prefix ...string) pexec.MatchFunc {
	return func(_, name string, args []string) bool {
		return name == "git" && len(args) >= len(prefix) && slices.Equal(args[:len(prefix)], prefix)
	}
}

func tempFile(t *testing.T, rel, content string) conflict.UnmergedFile {
	t.Helper()
	root := t.TempDir()
	f := conflict.UnmergedFile{Root: conflict.Root(root), RelPath: rel, Path: filepath.Join(root, rel)}
	if content != "" {
		if err := os.WriteFile(f.Path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		f.Exists = true
	}
	return f
}

func TestProvider_AcceptSides(t *testing.T) {
	tests := []struct {
		name     string
		reverse  bool
		yours    bool
		wantFlag string
	}{
		{"merge yours", false, true, "--ours"},
		{"merge theirs", false, false, "--theirs"},
		{"rebase yours", true, true, "--theirs"},
		{"rebase theirs", true, false, "--ours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := pexec.NewMockExecutor(nil)
			mock.AddPrefixMatch("git", []string{"checkout"}, pexec.MockResponse{})
			mock.AddPrefixMatch("git", []string{"add"}, pexec.MockResponse{})
			p := NewProvider(git.NewGitServiceWithExecutor(mock), tt.reverse)
			f := conflict.UnmergedFile{Root: "/repo", RelPath: "a.txt", Path: "/repo/a.txt", Exists: true}

			var err error
			if tt.yours {
				err = p.AcceptYours(ctx, f)
			} else {
				err = p.AcceptTheirs(ctx, f)
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n := mock.CallCount(isArgs("checkout", tt.wantFlag, "--", "a.txt")); n != 1 {
				t.Errorf("checkout %s called %d times; calls: %v", tt.wantFlag, n, mock.Calls())
			}
			if n := mock.CallCount(isArgs("add", "--", "a.txt")); n != 1 {
				t.Errorf("add called %d times", n)
			}
		})
	}
}

func TestProvider_MarkResolvedRefusesMarkers(t *testing.T) {
	f := tempFile(t, "a.txt", conflicted)
	mock := pexec.NewMockExecutor(nil)
	mock.AddPrefixMatch("git", []string{"add"}, pexec.MockResponse{})
	p := NewProvider(git.NewGitServiceWithExecutor(mock), false)

	err := p.MarkResolved(ctx, f, false)
	if !merrors.Is(err, merrors.KindInvalid) {
		t.Fatalf("expected KindInvalid, got %v", err)
	}
	if n := mock.CallCount(isArgs("add")); n != 0 {
		t.Errorf("add should not run while markers remain, ran %d times", n)
	}

	if err := p.MarkResolved(ctx, f, true); err != nil {
		t.Fatalf("forced MarkResolved: %v", err)
	}
	if n := mock.CallCount(isArgs("add", "--", "a.txt")); n != 1 {
		t.Errorf("add called %d times, want 1", n)
	}
}

func TestProvider_MarkResolvedClean(t *testing.T) {
	f := tempFile(t, "a.txt", "merged\n")
	mock := pexec.NewMockExecutor(nil)
	mock.AddPrefixMatch("git", []string{"add"}, pexec.MockResponse{})
	p := NewProvider(git.NewGitServiceWithExecutor(mock), false)

	if err := p.MarkResolved(ctx, f, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProvider_ContentFromDisk(t *testing.T) {
	f := tempFile(t, "a.txt", "on disk\n")
	p := NewProvider(git.NewGitServiceWithExecutor(pexec.NewMockExecutor(nil)), false)

	got, err := p.Content(ctx, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "on disk\n" {
		t.Errorf("Content() = %q", got)
	}
}

func TestProvider_ContentFromStage(t *testing.T) {
	f := tempFile(t, "gone.txt", "")
	mock := pexec.NewMockExecutor(nil)
	mock.AddExactMatch("git", []string{"show", ":2:gone.txt"}, pexec.MockResponse{Err: errors.New("exit 128")})
	mock.AddExactMatch("git", []string{"show", ":3:gone.txt"}, pexec.MockResponse{Stdout: []byte("theirs version\n")})
	p := NewProvider(git.NewGitServiceWithExecutor(mock), false)

	got, err := p.Content(ctx, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "theirs version" {
		t.Errorf("Content() = %q", got)
	}
}

func TestProvider_ContentMissingEverywhere(t *testing.T) {
	f := tempFile(t, "gone.txt", "")
	mock := pexec.NewMockExecutor(nil)
	mock.AddPrefixMatch("git", []string{"show"}, pexec.MockResponse{Err: errors.New("exit 128")})
	p := NewProvider(git.NewGitServiceWithExecutor(mock), false)

	_, err := p.Content(ctx, f)
	if !merrors.Is(err, merrors.KindIO) {
		t.Errorf("expected KindIO, got %v", err)
	}
}

func TestProvider_StillUnmerged(t *testing.T) {
	mock := pexec.NewMockExecutor(nil)
	mock.AddExactMatch("git", []string{"ls-files", "--unmerged"}, pexec.MockResponse{
		Stdout: []byte("100644 aaa 2\tb.txt\n100644 bbb 3\tb.txt\n"),
	})
	p := NewProvider(git.NewGitServiceWithExecutor(mock), false)

	still, err := p.StillUnmerged(ctx, conflict.UnmergedFile{Root: "/repo", RelPath: "a.txt"})
	if err != nil || still {
		t.Errorf("a.txt: still=%v err=%v, want false nil", still, err)
	}
	still, err = p.StillUnmerged(ctx, conflict.UnmergedFile{Root: "/repo", RelPath: "b.txt"})
	if err != nil || !still {
		t.Errorf("b.txt: still=%v err=%v, want true nil", still, err)
	}
}
