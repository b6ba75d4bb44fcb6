package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/sync/errgroup"

	"github.com/zhubert/mend/internal/background"
	"github.com/zhubert/mend/internal/clipboard"
	"github.com/zhubert/mend/internal/config"
	"github.com/zhubert/mend/internal/conflict"
	"github.com/zhubert/mend/internal/git"
	"github.com/zhubert/mend/internal/logger"
	"github.com/zhubert/mend/internal/notification"
	"github.com/zhubert/mend/internal/session"
	"github.com/zhubert/mend/internal/ui"
	"github.com/zhubert/mend/internal/ui/mergetool"
)

// app holds everything one command invocation shares: the git service, the
// UI dispatcher that owns the terminal, the background runner for retries
// and the notification center.
type app struct {
	cfg        *config.Config
	git        *git.GitService
	detector   *conflict.Detector
	tracker    *background.Tracker
	dispatcher *ui.Dispatcher
	runner     *background.Runner
	center     *notification.Center
	tool       session.MergeTool
	log        *slog.Logger
}

// appOptions lets tests swap the interactive pieces.
type appOptions struct {
	stderr   io.Writer
	tool     session.MergeTool
	confirm  ui.ConfirmFunc
	progOpts []tea.ProgramOption
}

func newApp(cfg *config.Config, g *git.GitService, opts appOptions) *app {
	if opts.stderr == nil {
		opts.stderr = os.Stderr
	}
	tracker := background.NewTracker()
	d := ui.NewDispatcher(tracker)
	a := &app{
		cfg:        cfg,
		git:        g,
		detector:   conflict.NewDetector(g),
		tracker:    tracker,
		dispatcher: d,
		runner:     background.NewRunner(cfg.GetMaxBackgroundSessions(), tracker),
		center:     notification.NewCenter(),
		log:        logger.ComponentLogger("App"),
	}

	a.center.AddSink(&notification.TerminalSink{W: opts.stderr})
	if cfg.GetNotificationsEnabled() {
		a.center.AddSink(notification.DesktopSink{MinSeverity: notification.SeverityWarning})
	}
	if cfg.GetPromptOnUnresolved() {
		a.center.AddSink(ui.NewPromptSink(d, a.center, opts.confirm))
	}

	a.tool = opts.tool
	if a.tool == nil {
		a.tool = mergetool.NewTool(d, g, mergetool.Options{
			Editor:          cfg.GetEditor(),
			UseGitMergetool: cfg.GetUseGitMergetool(),
			PreviewStyle:    cfg.GetPreviewStyle(),
			Copy:            clipboard.WriteText,
		}, opts.progOpts...)
	}
	return a
}

// newSession builds a session over roots.
func (a *app) newSession(roots []conflict.Root, params session.Params, hooks session.Hooks) *session.Session {
	return session.New(session.Options{
		Detector: a.detector,
		Tool:     a.tool,
		Notifier: a.center,
		Runner:   a.runner,
		Roots:    roots,
		Params:   params,
		Hooks:    hooks,
	})
}

// run calls fn off the UI goroutine while the calling goroutine serves the
// dispatcher. It returns once fn is done and all work fn started (retries
// from notifications and the prompts they show) has finished.
func (a *app) run(ctx context.Context, fn func(ctx context.Context) error) error {
	var g errgroup.Group
	g.Go(func() error {
		defer a.dispatcher.Close()
		err := fn(ctx)
		a.tracker.Wait()
		return err
	})

	serveErr := a.dispatcher.Serve(ctx)
	err := g.Wait()
	if rerr := a.runner.Wait(); rerr != nil {
		a.log.Warn("background task failed", "error", rerr)
	}
	if err != nil {
		return err
	}
	if serveErr != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// resolveRoots maps the --root flags (or args, or the current directory) to
// working tree top levels, dropping duplicates.
func resolveRoots(ctx context.Context, g *git.GitService, dirs []string) ([]conflict.Root, error) {
	if len(dirs) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dirs = []string{wd}
	}
	seen := make(map[string]bool)
	var roots []conflict.Root
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		top, err := g.GetGitRoot(ctx, abs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dir, err)
		}
		if !seen[top] {
			seen[top] = true
			roots = append(roots, conflict.Root(top))
		}
	}
	return roots, nil
}
