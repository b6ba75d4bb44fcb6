// Package operation knows the git operations that leave conflicts behind and
// how each one continues once they are resolved.
package operation

import (
	"context"
	"fmt"
	"strings"

	"github.com/zhubert/mend/internal/conflict"
	merrors "github.com/zhubert/mend/internal/errors"
	"github.com/zhubert/mend/internal/git"
)

// Kind is the operation whose conflicts are being resolved.
type Kind int

const (
	// KindNone resolves whatever is unmerged without continuing anything.
	KindNone Kind = iota
	KindMerge
	KindRebase
	KindCherryPick
	KindStash
)

func (k Kind) String() string {
	switch k {
	case KindMerge:
		return "merge"
	case KindRebase:
		return "rebase"
	case KindCherryPick:
		return "cherry-pick"
	case KindStash:
		return "stash"
	default:
		return "none"
	}
}

// Reverse reports whether git's "ours" is the upstream side for this kind.
func (k Kind) Reverse() bool {
	return k == KindRebase || k == KindStash
}

// ParseKind accepts the names printed by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return KindNone, nil
	case "merge":
		return KindMerge, nil
	case "rebase":
		return KindRebase, nil
	case "cherry-pick", "cherrypick":
		return KindCherryPick, nil
	case "stash", "stash-pop":
		return KindStash, nil
	}
	return KindNone, merrors.ConfigInvalid(fmt.Sprintf("unknown operation %q", s))
}

// Context describes one run of an operation.
type Context struct {
	Kind  Kind
	Roots []conflict.Root
	// Branch is the branch checked out in the first root.
	Branch string
	// Target is what the operation brings in: the merged branch, the
	// upstream of a rebase, the picked commit or the stash entry.
	Target string
}

// Detect figures out which operation is in progress in root, if any.
func Detect(ctx context.Context, g *git.GitService, root string) Kind {
	switch {
	case g.RebaseInProgress(ctx, root):
		return KindRebase
	case g.MergeInProgress(ctx, root):
		return KindMerge
	case g.CherryPickInProgress(ctx, root):
		return KindCherryPick
	}
	return KindNone
}

// Start runs the git command that begins the operation in the first root.
func Start(ctx context.Context, g *git.GitService, c Context) (git.OperationResult, error) {
	if len(c.Roots) == 0 {
		return git.OperationResult{}, merrors.ConfigInvalid("no working tree to operate on")
	}
	root := string(c.Roots[0])
	switch c.Kind {
	case KindMerge:
		return g.Merge(ctx, root, c.Target)
	case KindRebase:
		return g.Rebase(ctx, root, c.Target)
	case KindCherryPick:
		return g.CherryPick(ctx, root, c.Target)
	case KindStash:
		return g.StashPop(ctx, root, c.Target)
	}
	return git.OperationResult{}, nil
}
