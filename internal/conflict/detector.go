package conflict

import (
	"context"
	"log/slog"

	merrors "github.com/zhubert/mend/internal/errors"
	"github.com/zhubert/mend/internal/logger"
)

// Backend lists the raw unmerged index entries of a working tree.
// *git.GitService implements it.
type Backend interface {
	ListUnmergedFiles(ctx context.Context, root string) ([]string, error)
}

// Detector turns backend output into UnmergedFiles.
type Detector struct {
	backend Backend
	log     *slog.Logger
}

// NewDetector returns a detector that queries backend.
func NewDetector(backend Backend) *Detector {
	return &Detector{
		backend: backend,
		log:     logger.ComponentLogger("Detector"),
	}
}

// DetectRoot returns the unmerged files of one working tree, sorted by path.
// A failing backend command yields a KindDetection error carrying git's
// error text.
func (d *Detector) DetectRoot(ctx context.Context, root Root) ([]UnmergedFile, error) {
	lines, err := d.backend.ListUnmergedFiles(ctx, string(root))
	if err != nil {
		return nil, merrors.DetectionFailed(string(root), err)
	}

	rels := ParseUnmergedOutput(lines)
	if len(rels) == 0 {
		d.log.Debug("no unmerged files", "root", root)
		return nil, nil
	}

	files := make([]UnmergedFile, 0, len(rels))
	for _, rel := range rels {
		files = append(files, resolve(root, rel))
	}
	sortByPresentation(files)
	d.log.Debug("unmerged files detected", "root", root, "count", len(files))
	return files, nil
}

// Detect runs detection for each root in turn and returns the union, sorted
// by path. The first failing root aborts detection.
func (d *Detector) Detect(ctx context.Context, roots []Root) ([]UnmergedFile, error) {
	var all []UnmergedFile
	seen := make(map[string]struct{})
	for _, root := range roots {
		files, err := d.DetectRoot(ctx, root)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if _, ok := seen[f.Path]; ok {
				continue
			}
			seen[f.Path] = struct{}{}
			all = append(all, f)
		}
	}
	sortByPresentation(all)
	return all, nil
}
