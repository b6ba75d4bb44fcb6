package mergetool

import (
	"context"
	"log/slog"
	"os"
	"slices"

	"github.com/zhubert/mend/internal/conflict"
	merrors "github.com/zhubert/mend/internal/errors"
	"github.com/zhubert/mend/internal/git"
	"github.com/zhubert/mend/internal/logger"
)

// Resolver performs the per-file actions of the merge tool.
type Resolver interface {
	AcceptYours(ctx context.Context, f conflict.UnmergedFile) error
	AcceptTheirs(ctx context.Context, f conflict.UnmergedFile) error
	// MarkResolved stages the working tree version. Unless force is set it
	// refuses while conflict markers remain.
	MarkResolved(ctx context.Context, f conflict.UnmergedFile, force bool) error
	// Content returns the text shown in the preview.
	Content(ctx context.Context, f conflict.UnmergedFile) (string, error)
	// StillUnmerged asks git whether f is still in the unmerged set, after an
	// external tool had a go at it.
	StillUnmerged(ctx context.Context, f conflict.UnmergedFile) (bool, error)
}

// Provider resolves files through git. With reverse set, "yours" and
// "theirs" swap git sides, because during a rebase or stash pop git's "ours"
// is the upstream the user's changes are being replayed onto.
type Provider struct {
	git     *git.GitService
	reverse bool
	log     *slog.Logger
}

// NewProvider returns a Provider backed by g.
func NewProvider(g *git.GitService, reverse bool) *Provider {
	return &Provider{
		git:     g,
		reverse: reverse,
		log:     logger.ComponentLogger("MergeTool"),
	}
}

// yoursSide maps the user's point of view onto git's.
func (p *Provider) yoursSide() git.Side {
	if p.reverse {
		return git.SideTheirs
	}
	return git.SideOurs
}

func (p *Provider) theirsSide() git.Side {
	if p.reverse {
		return git.SideOurs
	}
	return git.SideTheirs
}

func (p *Provider) AcceptYours(ctx context.Context, f conflict.UnmergedFile) error {
	p.log.Info("accepting yours", "path", f.Path, "side", p.yoursSide().String())
	return p.git.AcceptSide(ctx, string(f.Root), f.RelPath, p.yoursSide())
}

func (p *Provider) AcceptTheirs(ctx context.Context, f conflict.UnmergedFile) error {
	p.log.Info("accepting theirs", "path", f.Path, "side", p.theirsSide().String())
	return p.git.AcceptSide(ctx, string(f.Root), f.RelPath, p.theirsSide())
}

func (p *Provider) MarkResolved(ctx context.Context, f conflict.UnmergedFile, force bool) error {
	if !force {
		if data, err := os.ReadFile(f.Path); err == nil && HasConflictMarkers(string(data)) {
			return merrors.MarkersRemain(f.RelPath, CountConflicts(string(data)))
		}
	}
	p.log.Info("marking resolved", "path", f.Path, "force", force)
	return p.git.MarkResolved(ctx, string(f.Root), f.RelPath)
}

// Content reads the working tree file. When the file is gone, the version
// one of the index stages still holds is shown instead.
func (p *Provider) Content(ctx context.Context, f conflict.UnmergedFile) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err == nil {
		return string(data), nil
	}
	if !os.IsNotExist(err) {
		return "", merrors.PreviewFailed(f.Path, err)
	}
	for _, side := range []git.Side{p.yoursSide(), p.theirsSide()} {
		if out, serr := p.git.ShowStage(ctx, string(f.Root), f.RelPath, side.Stage()); serr == nil {
			return out, nil
		}
	}
	if out, serr := p.git.ShowStage(ctx, string(f.Root), f.RelPath, 1); serr == nil {
		return out, nil
	}
	return "", merrors.PreviewFailed(f.Path, err)
}

func (p *Provider) StillUnmerged(ctx context.Context, f conflict.UnmergedFile) (bool, error) {
	lines, err := p.git.ListUnmergedFiles(ctx, string(f.Root))
	if err != nil {
		return false, err
	}
	return slices.Contains(conflict.ParseUnmergedOutput(lines), f.RelPath), nil
}
