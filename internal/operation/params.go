package operation

import (
	"fmt"

	"github.com/zhubert/mend/internal/conflict"
	"github.com/zhubert/mend/internal/session"
)

// Settings are the per-repository knobs that change how an operation is
// resolved. Empty strings keep the defaults.
type Settings struct {
	ErrorTitle            string
	ErrorDescription      string
	MergeDescription      string
	CommitAfterMerge      bool
	DropStashAfterResolve bool
}

// DefaultSettings commits merges and keeps stash entries.
func DefaultSettings() Settings {
	return Settings{CommitAfterMerge: true}
}

// Describe returns the sentence shown above the merge tool's file list.
func (c Context) Describe() string {
	branch := c.Branch
	if branch == "" {
		branch = "HEAD"
	}
	switch c.Kind {
	case KindMerge:
		if c.Target != "" {
			return fmt.Sprintf("Merging branch %s into %s", c.Target, branch)
		}
		return fmt.Sprintf("Merging into %s", branch)
	case KindRebase:
		if c.Target != "" {
			return fmt.Sprintf("Rebasing %s onto %s", branch, c.Target)
		}
		return fmt.Sprintf("Rebasing %s", branch)
	case KindCherryPick:
		if c.Target != "" {
			return fmt.Sprintf("Cherry-picking %s onto %s", c.Target, branch)
		}
		return fmt.Sprintf("Cherry-picking onto %s", branch)
	case KindStash:
		stash := c.Target
		if stash == "" {
			stash = "stash@{0}"
		}
		return fmt.Sprintf("Applying %s to %s", stash, branch)
	}
	return ""
}

func (c Context) defaultTitle() string {
	switch c.Kind {
	case KindMerge:
		return "Merge Conflicts"
	case KindRebase:
		return "Rebase Conflicts"
	case KindCherryPick:
		return "Cherry-Pick Conflicts"
	case KindStash:
		return "Stash Conflicts"
	}
	return "Conflicts"
}

func (c Context) errorTitle() string {
	switch c.Kind {
	case KindMerge:
		return "Merge was not completed"
	case KindRebase:
		return "Rebase was suspended"
	case KindCherryPick:
		return "Cherry-pick was not completed"
	case KindStash:
		return "Stash was not applied cleanly"
	}
	return "Conflicts were not resolved"
}

func (c Context) errorDescription() string {
	switch c.Kind {
	case KindMerge:
		return "\nResolve them and the merge is committed."
	case KindRebase:
		return "\nResolve them and the rebase continues."
	case KindCherryPick:
		return "\nResolve them and the cherry-pick continues."
	case KindStash:
		return "\nThe stash entry is kept until the conflicts are resolved."
	}
	return ""
}

// sideLabels names the user's side and the incoming side. Under reverse
// semantics the user's side is what git calls theirs.
func (c Context) sideLabels() (yours, theirs string) {
	branch := c.Branch
	if branch == "" {
		branch = "HEAD"
	}
	switch c.Kind {
	case KindMerge, KindCherryPick:
		if c.Target == "" {
			return "Yours (" + branch + ")", "Theirs"
		}
		return "Yours (" + branch + ")", "Theirs (" + c.Target + ")"
	case KindRebase:
		if c.Target == "" {
			return "Your commits (" + branch + ")", "Upstream"
		}
		return "Your commits (" + branch + ")", "Upstream (" + c.Target + ")"
	case KindStash:
		return "Stashed changes", "Working tree (" + branch + ")"
	}
	return "", ""
}

// Params builds the session parameters for c, with s applied on top of the
// defaults.
func Params(c Context, s Settings) session.Params {
	yours, theirs := c.sideLabels()
	p := session.Params{
		Reverse:          c.Kind.Reverse(),
		ErrorTitle:       c.errorTitle(),
		ErrorDescription: c.errorDescription(),
		MergeDescription: s.MergeDescription,
		Customizer: conflict.DialogCustomizer{
			Title:       c.defaultTitle(),
			YoursTitle:  yours,
			TheirsTitle: theirs,
		},
	}
	if desc := c.Describe(); desc != "" {
		p.Customizer.Describe = func(files []conflict.UnmergedFile) string {
			return desc + ": " + conflict.CountDescription(files)
		}
	}
	if s.ErrorTitle != "" {
		p.ErrorTitle = s.ErrorTitle
	}
	if s.ErrorDescription != "" {
		p.ErrorDescription = s.ErrorDescription
	}
	return p
}
