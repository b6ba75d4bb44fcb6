package operation

import (
	"context"
	"log/slog"
	"sync/atomic"

	merrors "github.com/zhubert/mend/internal/errors"
	"github.com/zhubert/mend/internal/git"
	"github.com/zhubert/mend/internal/logger"
	"github.com/zhubert/mend/internal/session"
)

// Hooks continues an operation once its conflicts are gone. It implements
// session.Hooks.
type Hooks struct {
	git      *git.GitService
	ctx      Context
	settings Settings
	log      *slog.Logger

	stopped atomic.Bool
}

var _ session.Hooks = (*Hooks)(nil)

// NewHooks returns the hooks for c.
func NewHooks(g *git.GitService, c Context, s Settings) *Hooks {
	return &Hooks{
		git:      g,
		ctx:      c,
		settings: s,
		log:      logger.ComponentLogger("Operation").With("kind", c.Kind.String()),
	}
}

// StoppedOnConflict reports whether the last continuation stopped on new
// conflicts, as a rebase does when a later commit conflicts too. The caller
// should run another session.
func (h *Hooks) StoppedOnConflict() bool {
	return h.stopped.Load()
}

// ProceedIfNothingToMerge finishes an operation whose conflicts were resolved
// outside mend, for example with git add by hand.
func (h *Hooks) ProceedIfNothingToMerge(ctx context.Context) (bool, error) {
	return h.proceed(ctx, "ProceedIfNothingToMerge")
}

// ProceedAfterAllMerged finishes the operation after the merge tool resolved
// every file.
func (h *Hooks) ProceedAfterAllMerged(ctx context.Context) (bool, error) {
	return h.proceed(ctx, "ProceedAfterAllMerged")
}

func (h *Hooks) proceed(ctx context.Context, hook string) (bool, error) {
	h.stopped.Store(false)
	h.log.Info("proceeding", "hook", hook)

	switch h.ctx.Kind {
	case KindMerge:
		return h.commitMerges(ctx)
	case KindRebase:
		return h.continueEach(ctx, h.git.RebaseInProgress, h.git.RebaseContinue)
	case KindCherryPick:
		return h.continueEach(ctx, h.git.CherryPickInProgress, h.git.CherryPickContinue)
	case KindStash:
		if hook == "ProceedAfterAllMerged" {
			return h.dropStash(ctx)
		}
	}
	return true, nil
}

func (h *Hooks) commitMerges(ctx context.Context) (bool, error) {
	if !h.settings.CommitAfterMerge {
		h.log.Info("leaving merge uncommitted")
		return true, nil
	}
	for _, root := range h.ctx.Roots {
		r := string(root)
		if !h.git.MergeInProgress(ctx, r) {
			continue
		}
		h.log.Info("committing merge", "root", r)
		if err := h.git.CommitMerge(ctx, r); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (h *Hooks) continueEach(
	ctx context.Context,
	inProgress func(context.Context, string) bool,
	cont func(context.Context, string) (git.OperationResult, error),
) (bool, error) {
	for _, root := range h.ctx.Roots {
		r := string(root)
		if !inProgress(ctx, r) {
			continue
		}
		h.log.Info("continuing", "root", r)
		res, err := cont(ctx, r)
		if err != nil {
			return false, err
		}
		if res.Conflicted {
			h.log.Info("stopped on new conflicts", "root", r)
			h.stopped.Store(true)
			return false, nil
		}
	}
	return true, nil
}

func (h *Hooks) dropStash(ctx context.Context) (bool, error) {
	if !h.settings.DropStashAfterResolve {
		return true, nil
	}
	if len(h.ctx.Roots) == 0 {
		return false, merrors.ConfigInvalid("no working tree to drop the stash from")
	}
	r := string(h.ctx.Roots[0])
	h.log.Info("dropping stash entry", "root", r, "stash", h.ctx.Target)
	if err := h.git.StashDrop(ctx, r, h.ctx.Target); err != nil {
		return false, err
	}
	return true, nil
}
