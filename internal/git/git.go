// Package git wraps the git command line for everything mend needs from a
// working tree: listing unmerged index entries, picking a conflict side,
// marking files resolved, and starting or continuing the operations that
// produce conflicts in the first place.
package git

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	merrors "github.com/zhubert/mend/internal/errors"
	pexec "github.com/zhubert/mend/internal/exec"
	"github.com/zhubert/mend/internal/logger"
)

// GitService runs git through a CommandExecutor.
type GitService struct {
	executor pexec.CommandExecutor
	log      *slog.Logger
}

// NewGitService returns a service that runs the real git binary.
func NewGitService() *GitService {
	return NewGitServiceWithExecutor(pexec.NewRealExecutor())
}

// NewGitServiceWithExecutor returns a service that runs commands through e.
func NewGitServiceWithExecutor(e pexec.CommandExecutor) *GitService {
	return &GitService{
		executor: e,
		log:      logger.ComponentLogger("Git"),
	}
}

// run executes git in dir and returns trimmed stdout. A non-zero exit is
// reported as a KindGit error carrying git's stderr.
func (s *GitService) run(ctx context.Context, dir string, args ...string) (string, error) {
	return s.runWithEnv(ctx, dir, nil, args...)
}

func (s *GitService) runWithEnv(ctx context.Context, dir string, env []string, args ...string) (string, error) {
	s.log.Debug("running git", "dir", dir, "args", args)
	stdout, stderr, err := s.executor.RunWithEnv(ctx, dir, env, "git", args...)
	if err != nil {
		s.log.Debug("git failed", "args", args, "error", err, "stderr", strings.TrimSpace(string(stderr)))
		return "", merrors.GitCommandFailed(args, string(stderr), err)
	}
	return strings.TrimSpace(string(stdout)), nil
}

// GetGitRoot returns the top level of the working tree containing path.
func (s *GitService) GetGitRoot(ctx context.Context, path string) (string, error) {
	out, err := s.run(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil || out == "" {
		return "", merrors.GitNotRepo(path)
	}
	return filepath.Clean(out), nil
}

// CurrentBranch returns the checked out branch, or "HEAD" when detached.
func (s *GitService) CurrentBranch(ctx context.Context, root string) (string, error) {
	return s.run(ctx, root, "rev-parse", "--abbrev-ref", "HEAD")
}

// refExists reports whether rev resolves in root.
func (s *GitService) refExists(ctx context.Context, root, rev string) bool {
	_, _, err := s.executor.Run(ctx, root, "git", "rev-parse", "-q", "--verify", rev)
	return err == nil
}

// gitPathExists reports whether a file inside the git directory exists, such
// as rebase-merge/ during an interactive rebase.
func (s *GitService) gitPathExists(ctx context.Context, root, name string) bool {
	p, err := s.run(ctx, root, "rev-parse", "--git-path", name)
	if err != nil || p == "" {
		return false
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return fileExists(p)
}
