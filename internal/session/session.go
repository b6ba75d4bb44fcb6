package session

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/zhubert/mend/internal/conflict"
	merrors "github.com/zhubert/mend/internal/errors"
	"github.com/zhubert/mend/internal/logger"
	"github.com/zhubert/mend/internal/notification"
)

// Notification texts.
const (
	ResolveActionLabel     = "Resolve..."
	UnresolvedRemaining    = "Unresolved conflicts remaining in the project."
	UnresolvedRetryTitle   = "Unresolved Conflicts Remaining"
	DetectionErrorSentence = "Couldn't check the working tree for unmerged files because of an error."
)

// Detector finds the unmerged files across a set of roots.
type Detector interface {
	Detect(ctx context.Context, roots []conflict.Root) ([]conflict.UnmergedFile, error)
}

// MergeTool lets the user resolve conflicts. ShowMergeDialog blocks until the
// user closes the tool. A returned error is logged; the session rechecks the
// working tree either way.
type MergeTool interface {
	ShowMergeDialog(ctx context.Context, req conflict.MergeRequest) error
}

// Notifier publishes notifications and dismisses them.
type Notifier interface {
	Publish(n *notification.Notification)
	Expire(n *notification.Notification) bool
}

// Scheduler runs work in the background without blocking the caller.
type Scheduler interface {
	Go(ctx context.Context, name string, fn func(ctx context.Context) error)
}

// Session resolves the conflicts of a fixed set of roots. It keeps no state
// between passes and is safe to run from several goroutines at once.
type Session struct {
	detector Detector
	tool     MergeTool
	notifier Notifier
	runner   Scheduler
	roots    []conflict.Root
	params   Params
	hooks    Hooks
}

// Options wires a Session to its collaborators.
type Options struct {
	Detector Detector
	Tool     MergeTool
	Notifier Notifier
	Runner   Scheduler
	Roots    []conflict.Root
	Params   Params
	// Hooks defaults to NoopHooks.
	Hooks Hooks
}

// New returns a session for opts.
func New(opts Options) *Session {
	hooks := opts.Hooks
	if hooks == nil {
		hooks = NoopHooks{}
	}
	return &Session{
		detector: opts.Detector,
		tool:     opts.Tool,
		notifier: opts.Notifier,
		runner:   opts.Runner,
		roots:    append([]conflict.Root(nil), opts.Roots...),
		params:   opts.Params,
		hooks:    hooks,
	}
}

// Resolve runs a pass and, if the working tree ends up clean, lets the
// operation proceed through the hooks. It returns false when files remain
// unmerged or something failed.
func (s *Session) Resolve(ctx context.Context) bool {
	_, ok := s.Run(ctx, false)
	return ok
}

// ResolveNoProceed runs a pass without calling any hook. It returns true when
// nothing is left to merge.
func (s *Session) ResolveNoProceed(ctx context.Context) bool {
	_, ok := s.Run(ctx, true)
	return ok
}

// Run performs one pass. fromNotification marks a retry started from the
// "Resolve..." action: hooks are skipped and the warning wording changes.
func (s *Session) Run(ctx context.Context, fromNotification bool) (Outcome, bool) {
	log := logger.WithSession(uuid.New().String()).With(
		"component", "Session",
		"fromNotification", fromNotification,
		"reverse", s.params.Reverse,
	)
	log.Info("checking for unmerged files", "roots", len(s.roots))

	files, err := s.detector.Detect(ctx, s.roots)
	if err != nil {
		s.notifyError(log, err)
		return DetectionFailed, false
	}

	if len(files) == 0 {
		log.Info("no unmerged files")
		if fromNotification {
			return NothingToMerge, true
		}
		ok, err := s.hooks.ProceedIfNothingToMerge(ctx)
		if err != nil {
			s.notifyError(log, merrors.HookFailed("ProceedIfNothingToMerge", err))
			return DetectionFailed, false
		}
		return NothingToMerge, ok
	}

	req := conflict.MergeRequest{
		Files:      files,
		Reverse:    s.params.Reverse,
		Customizer: s.params.DialogCustomizer(),
	}
	log.Info("showing merge tool", "request", req.String())
	if err := s.tool.ShowMergeDialog(ctx, req); err != nil {
		log.Warn("merge tool returned an error", "error", err)
	}

	remaining, err := s.detector.Detect(ctx, s.roots)
	if err != nil {
		s.notifyError(log, err)
		return DetectionFailed, false
	}

	if len(remaining) == 0 {
		log.Info("no more unmerged files")
		if fromNotification {
			return Resolved, true
		}
		ok, err := s.hooks.ProceedAfterAllMerged(ctx)
		if err != nil {
			s.notifyError(log, merrors.HookFailed("ProceedAfterAllMerged", err))
			return DetectionFailed, false
		}
		return Resolved, ok
	}

	log.Info("unmerged files remain", "files", conflict.Paths(remaining))
	if fromNotification {
		s.notifyWarning(ctx, log, UnresolvedRetryTitle, s.params.ErrorDescription)
	} else {
		s.notifyWarning(ctx, log, s.params.ErrorTitle, UnresolvedRemaining+s.params.ErrorDescription)
	}
	return Unresolved, false
}

// notifyWarning publishes the retryable warning. Its action expires the
// notification and hands a new pass to the runner.
func (s *Session) notifyWarning(ctx context.Context, log *slog.Logger, title, body string) {
	action := notification.Action{
		Label: ResolveActionLabel,
		OnActivate: func(n *notification.Notification) {
			if !s.notifier.Expire(n) {
				log.Debug("resolve action ignored, notification already expired", "id", n.ID)
				return
			}
			log.Info("scheduling resolve from notification", "id", n.ID)
			s.runner.Go(ctx, "resolve-from-notification", func(ctx context.Context) error {
				s.ResolveNoProceed(ctx)
				return nil
			})
		},
	}
	s.notifier.Publish(notification.New(title, body, notification.SeverityWarning, action))
}

func (s *Session) notifyError(log *slog.Logger, err error) {
	log.Warn("cannot check for unmerged files", "error", err, "kind", merrors.GetKind(err).String())
	body := DetectionErrorSentence + s.params.ErrorDescription + "\n" + merrors.Cause(err)
	s.notifier.Publish(notification.New(s.params.ErrorTitle, body, notification.SeverityError))
}
