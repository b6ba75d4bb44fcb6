// Package conflict finds the files of a working tree that git reports as
// unmerged.
//
// Detection is never cached. Every call asks git again, because the user or
// the merge tool may have resolved files since the previous pass.
package conflict

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zhubert/mend/internal/git"
)

// Root is the top level directory of one git working tree.
type Root string

// UnmergedFile is a conflicted file, resolved to an absolute path.
type UnmergedFile struct {
	Root    Root
	RelPath string // literal path relative to Root, slash separated
	Path    string // absolute path on disk
	Exists  bool   // false when the conflict is a deletion on our side
}

// String returns the absolute path, which is also the sort key.
func (f UnmergedFile) String() string {
	return f.Path
}

// ParseUnmergedOutput extracts the distinct relative paths from the lines of
// `git ls-files --unmerged`. Each line is "<mode> <object> <stage>\t<path>";
// everything up to the first tab is discarded. Blank lines and lines without
// a tab are skipped. A file appears once per conflict stage, so duplicates
// collapse. The result is sorted.
func ParseUnmergedOutput(lines []string) []string {
	seen := make(map[string]struct{})
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		_, rel, ok := strings.Cut(line, "\t")
		if !ok || rel == "" {
			continue
		}
		seen[git.UnescapePath(rel)] = struct{}{}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// resolve joins rel to root and checks the file against the live filesystem.
func resolve(root Root, rel string) UnmergedFile {
	abs := filepath.Join(string(root), filepath.FromSlash(rel))
	_, err := os.Lstat(abs)
	return UnmergedFile{
		Root:    root,
		RelPath: rel,
		Path:    abs,
		Exists:  err == nil,
	}
}

// sortByPresentation orders files by their absolute path.
func sortByPresentation(files []UnmergedFile) {
	slices.SortFunc(files, func(a, b UnmergedFile) int {
		return strings.Compare(a.Path, b.Path)
	})
}

// Paths returns the absolute paths of files, in order.
func Paths(files []UnmergedFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}
