package git

import (
	"context"
	"strings"

	merrors "github.com/zhubert/mend/internal/errors"
)

// nonInteractive keeps git from opening an editor for commit messages when it
// continues an operation on our behalf.
var nonInteractive = []string{"GIT_EDITOR=true"}

// OperationResult describes how a conflict-producing git command ended.
type OperationResult struct {
	// Output is what git printed, stdout followed by stderr.
	Output string
	// Conflicted is set when the command stopped because of unmerged files.
	Conflicted bool
}

// Merge merges branch into the current branch of root.
func (s *GitService) Merge(ctx context.Context, root, branch string) (OperationResult, error) {
	return s.start(ctx, root, "Merge", "merge", "--no-edit", branch)
}

// Rebase rebases the current branch of root onto upstream.
func (s *GitService) Rebase(ctx context.Context, root, upstream string) (OperationResult, error) {
	return s.start(ctx, root, "Rebase", "rebase", upstream)
}

// CherryPick applies commit on top of the current branch of root.
func (s *GitService) CherryPick(ctx context.Context, root, commit string) (OperationResult, error) {
	return s.start(ctx, root, "CherryPick", "cherry-pick", commit)
}

// StashPop applies a stash entry (the latest when stash is empty). On conflict
// git keeps the entry in the stash list.
func (s *GitService) StashPop(ctx context.Context, root, stash string) (OperationResult, error) {
	args := []string{"stash", "pop"}
	if stash != "" {
		args = append(args, stash)
	}
	return s.start(ctx, root, "StashPop", args...)
}

// CommitMerge records the merge commit once every conflict is resolved.
func (s *GitService) CommitMerge(ctx context.Context, root string) error {
	if _, err := s.runWithEnv(ctx, root, nonInteractive, "commit", "--no-edit"); err != nil {
		return merrors.GitOperationFailed("CommitMerge", err)
	}
	return nil
}

// RebaseContinue continues a stopped rebase. The rebase may stop again on the
// next commit, which is reported through Conflicted.
func (s *GitService) RebaseContinue(ctx context.Context, root string) (OperationResult, error) {
	return s.startWithEnv(ctx, root, "RebaseContinue", nonInteractive, "rebase", "--continue")
}

// CherryPickContinue continues a stopped cherry-pick.
func (s *GitService) CherryPickContinue(ctx context.Context, root string) (OperationResult, error) {
	return s.startWithEnv(ctx, root, "CherryPickContinue", nonInteractive, "cherry-pick", "--continue")
}

// StashDrop removes a stash entry (the latest when stash is empty).
func (s *GitService) StashDrop(ctx context.Context, root, stash string) error {
	args := []string{"stash", "drop"}
	if stash != "" {
		args = append(args, stash)
	}
	if _, err := s.run(ctx, root, args...); err != nil {
		return merrors.GitOperationFailed("StashDrop", err)
	}
	return nil
}

// MergeInProgress reports whether root has a merge waiting to be committed.
func (s *GitService) MergeInProgress(ctx context.Context, root string) bool {
	return s.refExists(ctx, root, "MERGE_HEAD")
}

// RebaseInProgress reports whether root is in the middle of a rebase.
func (s *GitService) RebaseInProgress(ctx context.Context, root string) bool {
	return s.gitPathExists(ctx, root, "rebase-merge") || s.gitPathExists(ctx, root, "rebase-apply")
}

// CherryPickInProgress reports whether root is in the middle of a cherry-pick.
func (s *GitService) CherryPickInProgress(ctx context.Context, root string) bool {
	return s.refExists(ctx, root, "CHERRY_PICK_HEAD")
}

func (s *GitService) start(ctx context.Context, root, op string, args ...string) (OperationResult, error) {
	return s.startWithEnv(ctx, root, op, nil, args...)
}

// startWithEnv runs a command that may stop on conflicts. Stopping on
// conflicts is a normal result; any other failure is an error.
func (s *GitService) startWithEnv(ctx context.Context, root, op string, env []string, args ...string) (OperationResult, error) {
	s.log.Info("starting operation", "op", op, "root", root, "args", args)
	stdout, stderr, err := s.executor.RunWithEnv(ctx, root, env, "git", args...)
	result := OperationResult{Output: strings.TrimSpace(string(stdout) + string(stderr))}
	if err == nil {
		return result, nil
	}

	if lines, lerr := s.ListUnmergedFiles(ctx, root); lerr == nil && len(lines) > 0 {
		s.log.Info("operation stopped on conflicts", "op", op, "root", root, "entries", len(lines))
		result.Conflicted = true
		return result, nil
	}
	return result, merrors.GitOperationFailed(op, merrors.GitCommandFailed(args, string(stderr), err))
}
