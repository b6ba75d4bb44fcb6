package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	merrors "github.com/zhubert/mend/internal/errors"
)

// unmergedArgs is the backend query used for detection. Each unmerged index
// entry is printed as "<mode> <object> <stage>\t<path>", one line per stage,
// with the path quoted when it contains special characters.
var unmergedArgs = []string{"ls-files", "--unmerged"}

// ListUnmergedFiles returns the raw output lines of `git ls-files --unmerged`
// for root. The command counts as failed when git exits non-zero or prints
// anything on stderr other than warnings and hints.
func (s *GitService) ListUnmergedFiles(ctx context.Context, root string) ([]string, error) {
	stdout, stderr, err := s.executor.Run(ctx, root, "git", unmergedArgs...)
	errText := significantStderr(string(stderr))
	if err != nil || errText != "" {
		if err == nil {
			err = fmt.Errorf("git wrote to stderr")
		}
		s.log.Warn("listing unmerged files failed", "root", root, "error", err, "stderr", errText)
		return nil, merrors.GitCommandFailed(unmergedArgs, errText, err)
	}
	out := strings.ReplaceAll(string(stdout), "\r\n", "\n")
	if out == "" {
		return nil, nil
	}
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n"), nil
}

// significantStderr drops warning and hint lines, which git prints on
// successful commands too.
func significantStderr(stderr string) string {
	var kept []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "warning:") || strings.HasPrefix(line, "hint:") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// Side selects one version of a conflicted file as git names it: "ours" is
// the branch being merged into, "theirs" is the one being merged in.
type Side int

const (
	SideOurs Side = iota
	SideTheirs
)

func (s Side) flag() string {
	if s == SideTheirs {
		return "--theirs"
	}
	return "--ours"
}

// Stage returns the index stage number holding this side's version.
func (s Side) Stage() int {
	if s == SideTheirs {
		return 3
	}
	return 2
}

func (s Side) String() string {
	if s == SideTheirs {
		return "theirs"
	}
	return "ours"
}

// AcceptSide resolves rel by taking one side's version and staging it. When
// that side deleted the file, the deletion is staged instead.
func (s *GitService) AcceptSide(ctx context.Context, root, rel string, side Side) error {
	_, err := s.run(ctx, root, "checkout", side.flag(), "--", rel)
	if err != nil {
		if !strings.Contains(merrors.Cause(err), "does not have") {
			return err
		}
		s.log.Info("side has no version, staging deletion", "root", root, "path", rel, "side", side.String())
		_, err = s.run(ctx, root, "rm", "--quiet", "--", rel)
		return err
	}
	_, err = s.run(ctx, root, "add", "--", rel)
	return err
}

// MarkResolved stages rel as it currently is in the working tree. A file
// that no longer exists is removed from the index.
func (s *GitService) MarkResolved(ctx context.Context, root, rel string) error {
	if fileExists(filepath.Join(root, rel)) {
		_, err := s.run(ctx, root, "add", "--", rel)
		return err
	}
	_, err := s.run(ctx, root, "rm", "--cached", "--quiet", "--", rel)
	return err
}

// ShowStage returns the content of rel at an index stage (1 base, 2 ours,
// 3 theirs). A missing stage yields an error.
func (s *GitService) ShowStage(ctx context.Context, root, rel string, stage int) (string, error) {
	return s.run(ctx, root, "show", fmt.Sprintf(":%d:%s", stage, rel))
}

func fileExists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}
