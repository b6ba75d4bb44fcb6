package conflict

import (
	"fmt"
	"strings"
)

// DialogCustomizer controls the text the merge tool shows for a file set.
type DialogCustomizer struct {
	// Title heads the merge tool. Empty means "Conflicts".
	Title string
	// Describe explains what is being merged. Nil means a count of files.
	Describe func(files []UnmergedFile) string
	// YoursTitle and TheirsTitle label the two sides from the user's point
	// of view. Empty means "Yours" and "Theirs".
	YoursTitle  string
	TheirsTitle string
}

// DialogTitle returns the title, falling back to the default.
func (c DialogCustomizer) DialogTitle() string {
	if c.Title == "" {
		return "Conflicts"
	}
	return c.Title
}

// Description returns the text describing files.
func (c DialogCustomizer) Description(files []UnmergedFile) string {
	if c.Describe != nil {
		return c.Describe(files)
	}
	return CountDescription(files)
}

// Yours returns the label for the user's own changes.
func (c DialogCustomizer) Yours() string {
	if c.YoursTitle == "" {
		return "Yours"
	}
	return c.YoursTitle
}

// Theirs returns the label for the incoming changes.
func (c DialogCustomizer) Theirs() string {
	if c.TheirsTitle == "" {
		return "Theirs"
	}
	return c.TheirsTitle
}

// CountDescription is the default description: how many files and roots.
func CountDescription(files []UnmergedFile) string {
	roots := make(map[Root]struct{})
	for _, f := range files {
		roots[f.Root] = struct{}{}
	}
	noun := "files"
	if len(files) == 1 {
		noun = "file"
	}
	if len(roots) > 1 {
		return fmt.Sprintf("%d conflicted %s in %d repositories", len(files), noun, len(roots))
	}
	return fmt.Sprintf("%d conflicted %s", len(files), noun)
}

// MergeRequest is everything the merge tool needs for one invocation.
type MergeRequest struct {
	Files []UnmergedFile
	// Reverse swaps which git side counts as the user's own changes. It is
	// set for rebase and stash, where git's "ours" is the upstream.
	Reverse    bool
	Customizer DialogCustomizer
}

// String summarizes the request for logs.
func (r MergeRequest) String() string {
	return fmt.Sprintf("%d files (reverse=%t): %s", len(r.Files), r.Reverse, strings.Join(Paths(r.Files), ", "))
}
