package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/zhubert/mend/internal/config"
	"github.com/zhubert/mend/internal/conflict"
	"github.com/zhubert/mend/internal/git"
	"github.com/zhubert/mend/internal/operation"
	"github.com/zhubert/mend/internal/session"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// createDivergedRepo builds a repository on "main" where merging "feature"
// conflicts on conflict.txt.
func createDivergedRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	gitCmd(t, dir, "init", "-q")
	gitCmd(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	gitCmd(t, dir, "config", "user.email", "test@example.com")
	gitCmd(t, dir, "config", "user.name", "Test User")
	gitCmd(t, dir, "config", "commit.gpgsign", "false")

	write := func(content string) {
		if err := os.WriteFile(filepath.Join(dir, "conflict.txt"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("base\n")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-q", "-m", "base")

	gitCmd(t, dir, "checkout", "-q", "-b", "feature")
	write("feature\n")
	gitCmd(t, dir, "commit", "-q", "-am", "feature")

	gitCmd(t, dir, "checkout", "-q", "main")
	write("main\n")
	gitCmd(t, dir, "commit", "-q", "-am", "main")
	return dir
}

// createConflictedRepo is createDivergedRepo with the merge already stopped
// on conflicts.
func createConflictedRepo(t *testing.T) string {
	t.Helper()
	dir := createDivergedRepo(t)
	cmd := exec.Command("git", "merge", "feature")
	cmd.Dir = dir
	_ = cmd.Run() // exits non-zero on conflict
	return dir
}

// acceptTool stands in for the interactive merge tool. It takes one side of
// every file from the given call on, and does nothing before that.
type acceptTool struct {
	g         *git.GitService
	side      git.Side
	resolveOn int32
	calls     atomic.Int32
}

func (a *acceptTool) ShowMergeDialog(ctx context.Context, req conflict.MergeRequest) error {
	if a.calls.Add(1) < a.resolveOn {
		return nil
	}
	for _, f := range req.Files {
		if err := a.g.AcceptSide(ctx, string(f.Root), f.RelPath, a.side); err != nil {
			return err
		}
	}
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func answer(yes bool, asked *atomic.Int32) func(string, string, string) (bool, error) {
	return func(string, string, string) (bool, error) {
		asked.Add(1)
		return yes, nil
	}
}

func TestRunOperation_ResolveInProgressMerge(t *testing.T) {
	dir := createConflictedRepo(t)
	g := git.NewGitService()
	tool := &acceptTool{g: g, side: git.SideOurs, resolveOn: 1}
	var out, errOut bytes.Buffer
	var asked atomic.Int32

	err := runOperationWith(t.Context(), &out, testConfig(t), g,
		appOptions{stderr: &errOut, tool: tool, confirm: answer(false, &asked)},
		operation.KindNone, "", []string{dir})
	if err != nil {
		t.Fatalf("runOperationWith() error = %v\nstderr: %s", err, errOut.String())
	}
	if !strings.Contains(out.String(), "resolved") {
		t.Errorf("output = %q", out.String())
	}
	if asked.Load() != 0 {
		t.Error("no prompt expected when everything is resolved")
	}
	// Plain resolve leaves the merge for the user to commit.
	if !g.MergeInProgress(t.Context(), dir) {
		t.Error("resolve without --continue should not commit the merge")
	}
}

func TestRunOperation_MergeCommitsAfterResolve(t *testing.T) {
	dir := createDivergedRepo(t)
	g := git.NewGitService()
	tool := &acceptTool{g: g, side: git.SideTheirs, resolveOn: 1}
	var out, errOut bytes.Buffer
	var asked atomic.Int32

	err := runOperationWith(t.Context(), &out, testConfig(t), g,
		appOptions{stderr: &errOut, tool: tool, confirm: answer(false, &asked)},
		operation.KindMerge, "feature", []string{dir})
	if err != nil {
		t.Fatalf("runOperationWith() error = %v\nstderr: %s", err, errOut.String())
	}
	if !strings.Contains(out.String(), "merge stopped on conflicts") {
		t.Errorf("output = %q", out.String())
	}
	if g.MergeInProgress(t.Context(), dir) {
		t.Error("merge should be committed")
	}
	if got := gitCmd(t, dir, "show", "HEAD:conflict.txt"); got != "feature" {
		t.Errorf("HEAD:conflict.txt = %q, want feature", got)
	}
	if parents := gitCmd(t, dir, "rev-list", "--parents", "-n", "1", "HEAD"); len(strings.Fields(parents)) != 3 {
		t.Errorf("HEAD is not a merge commit: %q", parents)
	}
}

func TestRunOperation_UnresolvedDeclined(t *testing.T) {
	dir := createConflictedRepo(t)
	g := git.NewGitService()
	tool := &acceptTool{g: g, resolveOn: 100}
	var out, errOut bytes.Buffer
	var asked atomic.Int32

	err := runOperationWith(t.Context(), &out, testConfig(t), g,
		appOptions{stderr: &errOut, tool: tool, confirm: answer(false, &asked)},
		operation.KindNone, "", []string{dir})
	if ExitCode(err) != 1 {
		t.Fatalf("exit code = %d (err %v), want 1", ExitCode(err), err)
	}
	if asked.Load() != 1 {
		t.Errorf("asked %d times, want 1", asked.Load())
	}
	if !strings.Contains(out.String(), "unresolved") {
		t.Errorf("output = %q", out.String())
	}
	if !strings.Contains(errOut.String(), "Conflicts were not resolved") {
		t.Errorf("warning missing from stderr: %q", errOut.String())
	}
}

func TestRunOperation_RetryFromPrompt(t *testing.T) {
	dir := createConflictedRepo(t)
	g := git.NewGitService()
	tool := &acceptTool{g: g, side: git.SideOurs, resolveOn: 2}
	var out, errOut bytes.Buffer
	var asked atomic.Int32

	err := runOperationWith(t.Context(), &out, testConfig(t), g,
		appOptions{stderr: &errOut, tool: tool, confirm: answer(true, &asked)},
		operation.KindNone, "", []string{dir})
	if err != nil {
		t.Fatalf("runOperationWith() error = %v\nstderr: %s", err, errOut.String())
	}
	if tool.calls.Load() != 2 {
		t.Errorf("merge tool shown %d times, want 2", tool.calls.Load())
	}
	if !strings.Contains(out.String(), "all conflicts resolved") {
		t.Errorf("output = %q", out.String())
	}
}

// createStoppedRebase rebases a two-commit branch onto main so that both
// commits conflict, and leaves the rebase stopped on the first one.
func createStoppedRebase(t *testing.T) string {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	gitCmd(t, dir, "init", "-q")
	gitCmd(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	gitCmd(t, dir, "config", "user.email", "test@example.com")
	gitCmd(t, dir, "config", "user.name", "Test User")
	gitCmd(t, dir, "config", "commit.gpgsign", "false")

	write := func(content string) {
		if err := os.WriteFile(filepath.Join(dir, "conflict.txt"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("base\n")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-q", "-m", "base")

	gitCmd(t, dir, "checkout", "-q", "-b", "feature")
	write("feature one\n")
	gitCmd(t, dir, "commit", "-q", "-am", "feature one")
	write("feature two\n")
	gitCmd(t, dir, "commit", "-q", "-am", "feature two")

	gitCmd(t, dir, "checkout", "-q", "main")
	write("main\n")
	gitCmd(t, dir, "commit", "-q", "-am", "main")

	gitCmd(t, dir, "checkout", "-q", "feature")
	cmd := exec.Command("git", "rebase", "main")
	cmd.Dir = dir
	if err := cmd.Run(); err == nil {
		t.Fatal("expected the rebase to stop on conflicts")
	}
	return dir
}

func TestRunOperation_ContinueRebaseStopsAgain(t *testing.T) {
	dir := createStoppedRebase(t)
	g := git.NewGitService()

	// The first stop is resolved by hand, outside mend.
	if err := os.WriteFile(filepath.Join(dir, "conflict.txt"), []byte("resolved one\n"), 0644); err != nil {
		t.Fatal(err)
	}
	gitCmd(t, dir, "add", "conflict.txt")

	continueOperation = true
	t.Cleanup(func() { continueOperation = false })

	tool := &acceptTool{g: g, side: git.SideTheirs, resolveOn: 1}
	var out, errOut bytes.Buffer
	var asked atomic.Int32

	err := runOperationWith(t.Context(), &out, testConfig(t), g,
		appOptions{stderr: &errOut, tool: tool, confirm: answer(false, &asked)},
		operation.KindNone, "", []string{dir})
	if err != nil {
		t.Fatalf("runOperationWith() error = %v\noutput: %s\nstderr: %s", err, out.String(), errOut.String())
	}
	if tool.calls.Load() != 1 {
		t.Errorf("merge tool shown %d times, want 1 for the second stop", tool.calls.Load())
	}
	if !strings.Contains(out.String(), "rebase stopped on conflicts again") {
		t.Errorf("output = %q", out.String())
	}
	if g.RebaseInProgress(t.Context(), dir) {
		t.Error("rebase should be finished")
	}
	if files, err := g.ListUnmergedFiles(t.Context(), dir); err != nil || len(files) != 0 {
		t.Errorf("unmerged = %v (err %v), want none", files, err)
	}
}

func TestProceedDeclined(t *testing.T) {
	tests := []struct {
		outcome session.Outcome
		ok      bool
		want    bool
	}{
		{session.Resolved, true, false},
		{session.Resolved, false, true},
		{session.NothingToMerge, true, false},
		{session.NothingToMerge, false, true},
		{session.Unresolved, false, false},
		{session.DetectionFailed, false, false},
	}
	for _, tt := range tests {
		if got := proceedDeclined(tt.outcome, tt.ok); got != tt.want {
			t.Errorf("proceedDeclined(%v, %v) = %v, want %v", tt.outcome, tt.ok, got, tt.want)
		}
	}
}

func TestRunOperation_NothingToMerge(t *testing.T) {
	dir := createDivergedRepo(t)
	g := git.NewGitService()
	tool := &acceptTool{g: g, resolveOn: 1}
	var out bytes.Buffer

	err := runOperationWith(t.Context(), &out, testConfig(t), g,
		appOptions{stderr: &bytes.Buffer{}, tool: tool},
		operation.KindNone, "", []string{dir})
	if err != nil {
		t.Fatalf("runOperationWith() error = %v", err)
	}
	if !strings.Contains(out.String(), "nothing to merge") {
		t.Errorf("output = %q", out.String())
	}
	if tool.calls.Load() != 0 {
		t.Error("merge tool should not be shown")
	}
}

func TestRunOperation_NotARepository(t *testing.T) {
	requireGit(t)
	err := runOperationWith(t.Context(), &bytes.Buffer{}, testConfig(t), git.NewGitService(),
		appOptions{stderr: &bytes.Buffer{}}, operation.KindNone, "", []string{t.TempDir()})
	if err == nil {
		t.Fatal("expected an error outside a repository")
	}
}

func TestRunStatus(t *testing.T) {
	dir := createConflictedRepo(t)
	g := git.NewGitService()

	var out bytes.Buffer
	err := runStatus(t.Context(), &out, g, []string{dir}, "json")
	if ExitCode(err) != 1 {
		t.Fatalf("exit code = %d, want 1", ExitCode(err))
	}
	var report statusReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out.String())
	}
	if len(report.Unmerged) != 1 || report.Unmerged[0].Path != "conflict.txt" || !report.Unmerged[0].Exists {
		t.Errorf("report = %+v", report)
	}

	out.Reset()
	_ = runStatus(t.Context(), &out, g, []string{dir}, "text")
	if !strings.Contains(out.String(), "1 conflicted file") || !strings.Contains(out.String(), "conflict.txt") {
		t.Errorf("text output = %q", out.String())
	}

	if err := runStatus(t.Context(), &out, g, []string{dir}, "xml"); err == nil || ExitCode(err) != 1 {
		t.Errorf("unknown format should fail, got %v", err)
	}
}

func TestRunStatus_Clean(t *testing.T) {
	dir := createDivergedRepo(t)
	var out bytes.Buffer
	if err := runStatus(t.Context(), &out, git.NewGitService(), []string{dir}, "yaml"); err != nil {
		t.Fatalf("runStatus() error = %v", err)
	}
	if !strings.Contains(out.String(), "unmerged: []") {
		t.Errorf("yaml output = %q", out.String())
	}
}

func TestPrintConfig(t *testing.T) {
	cfg := testConfig(t)
	repo := config.DefaultRepoConfig()
	for _, format := range []string{"yaml", "json", "toml"} {
		t.Run(format, func(t *testing.T) {
			var out bytes.Buffer
			if err := printConfig(&out, cfg, repo, format); err != nil {
				t.Fatalf("printConfig() error = %v", err)
			}
			if !strings.Contains(out.String(), "max_background_sessions") {
				t.Errorf("output missing keys:\n%s", out.String())
			}
		})
	}
	if err := printConfig(&bytes.Buffer{}, cfg, repo, "ini"); err == nil {
		t.Error("expected error for unknown format")
	}
}
