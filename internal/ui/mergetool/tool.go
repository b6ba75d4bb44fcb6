package mergetool

import (
	"context"
	"log/slog"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/mend/internal/conflict"
	"github.com/zhubert/mend/internal/git"
	"github.com/zhubert/mend/internal/logger"
)

// Invoker runs fn on the goroutine that owns the terminal and waits for it.
// ui.Dispatcher implements it.
type Invoker interface {
	InvokeAndWait(ctx context.Context, name string, fn func() error) error
}

// Tool shows the merge dialog on the UI goroutine. It is the session's
// MergeTool.
type Tool struct {
	ui          Invoker
	newResolver func(reverse bool) Resolver
	opts        Options
	progOpts    []tea.ProgramOption
	log         *slog.Logger
}

// NewTool returns a Tool that resolves files through g.
func NewTool(inv Invoker, g *git.GitService, opts Options, progOpts ...tea.ProgramOption) *Tool {
	return NewToolWithResolver(inv, func(reverse bool) Resolver {
		return NewProvider(g, reverse)
	}, opts, progOpts...)
}

// NewToolWithResolver returns a Tool that resolves files through whatever
// newResolver returns for a request's orientation.
func NewToolWithResolver(inv Invoker, newResolver func(reverse bool) Resolver, opts Options, progOpts ...tea.ProgramOption) *Tool {
	return &Tool{
		ui:          inv,
		newResolver: newResolver,
		opts:        opts,
		progOpts:    progOpts,
		log:         logger.ComponentLogger("MergeTool"),
	}
}

// ShowMergeDialog blocks until the user closes the dialog or every file in
// req is resolved. The caller re-detects afterwards, so files left unresolved
// are not an error.
func (t *Tool) ShowMergeDialog(ctx context.Context, req conflict.MergeRequest) error {
	if len(req.Files) == 0 {
		return nil
	}
	t.log.Info("showing merge dialog", "request", req.String())
	return t.ui.InvokeAndWait(ctx, "merge-tool", func() error {
		m := NewModel(ctx, req, t.newResolver(req.Reverse), t.opts)
		opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, t.progOpts...)
		final, err := tea.NewProgram(m, opts...).Run()
		if fm, ok := final.(Model); ok {
			t.log.Info("merge dialog closed", "resolved", len(fm.Resolutions()), "remaining", fm.Remaining())
		}
		return err
	})
}
