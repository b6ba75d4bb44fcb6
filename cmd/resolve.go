package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zhubert/mend/internal/config"
	"github.com/zhubert/mend/internal/git"
	"github.com/zhubert/mend/internal/logger"
	"github.com/zhubert/mend/internal/operation"
	"github.com/zhubert/mend/internal/session"
)

var continueOperation bool

var resolveCmd = &cobra.Command{
	Use:   "resolve [path...]",
	Short: "Resolve the unmerged files of one or more working trees",
	Long: `Detects unmerged files, opens the merge tool for them and checks again once
it is closed. Files that are still unmerged produce a warning offering to
resolve them again.

With --continue, the merge, rebase or cherry-pick in progress is finished
once every file is resolved.`,
	RunE: runResolve,
}

var mergeCmd = &cobra.Command{
	Use:   "merge <branch>",
	Short: "Merge a branch and resolve the conflicts it produces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, operation.KindMerge, args[0], rootDirs)
	},
}

var rebaseCmd = &cobra.Command{
	Use:   "rebase <upstream>",
	Short: "Rebase onto upstream, resolving conflicts commit by commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, operation.KindRebase, args[0], rootDirs)
	},
}

var cherryPickCmd = &cobra.Command{
	Use:   "cherry-pick <commit>",
	Short: "Cherry-pick a commit and resolve the conflicts it produces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, operation.KindCherryPick, args[0], rootDirs)
	},
}

var stashPopCmd = &cobra.Command{
	Use:   "stash-pop [stash]",
	Short: "Pop a stash entry and resolve the conflicts it produces",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		return runOperation(cmd, operation.KindStash, target, rootDirs)
	},
}

func init() {
	resolveCmd.Flags().BoolVar(&continueOperation, "continue", false, "Finish the operation in progress once everything is resolved")
	rootCmd.Flags().BoolVar(&continueOperation, "continue", false, "Finish the operation in progress once everything is resolved")
	rootCmd.AddCommand(resolveCmd, mergeCmd, rebaseCmd, cherryPickCmd, stashPopCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	return runOperation(cmd, operation.KindNone, "", append(append([]string(nil), rootDirs...), args...))
}

// runOperation starts kind (unless it is KindNone) and drives resolution
// sessions until the operation is finished or the user stops.
func runOperation(cmd *cobra.Command, kind operation.Kind, target string, dirs []string) error {
	defer logger.Close()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	return runOperationWith(cmd.Context(), cmd.OutOrStdout(), cfg, git.NewGitService(), appOptions{stderr: cmd.ErrOrStderr()}, kind, target, dirs)
}

func runOperationWith(ctx context.Context, out io.Writer, cfg *config.Config, g *git.GitService, opts appOptions, kind operation.Kind, target string, dirs []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	roots, err := resolveRoots(ctx, g, dirs)
	if err != nil {
		return err
	}
	repo, err := config.LoadRepo(string(roots[0]))
	if err != nil {
		return err
	}

	opCtx := operation.Context{Kind: kind, Roots: roots, Target: target}
	opCtx.Branch, _ = g.CurrentBranch(ctx, string(roots[0]))

	if kind == operation.KindNone && continueOperation {
		opCtx.Kind = operation.Detect(ctx, g, string(roots[0]))
		logger.Info("attaching to operation in progress: %s", opCtx.Kind)
	}

	if kind != operation.KindNone {
		result, err := operation.Start(ctx, g, opCtx)
		if err != nil {
			return err
		}
		if !result.Conflicted {
			if result.Output != "" {
				fmt.Fprintln(out, result.Output)
			}
			color.New(color.FgGreen).Fprintf(out, "%s finished without conflicts\n", kind)
			return nil
		}
		color.New(color.FgYellow).Fprintf(out, "%s stopped on conflicts\n", kind)
	}

	a := newApp(cfg, g, opts)
	var (
		outcome session.Outcome
		ok      bool
	)
	err = a.run(ctx, func(ctx context.Context) error {
		for {
			hooks := operation.NewHooks(g, opCtx, repo.Settings())
			s := a.newSession(roots, operation.Params(opCtx, repo.Settings()), hooks)
			outcome, ok = s.Run(ctx, false)
			if !hooks.StoppedOnConflict() {
				return nil
			}
			// The operation moved on and stopped again on the next commit,
			// whether the files were resolved here or by hand.
			color.New(color.FgYellow).Fprintf(out, "%s stopped on conflicts again\n", opCtx.Kind)
		}
	})
	if err != nil {
		return err
	}

	printOutcome(out, outcome)
	if proceedDeclined(outcome, ok) {
		color.New(color.FgRed).Fprintf(out, "%s was not finished\n", opCtx.Kind)
		return &ExitError{Code: 1}
	}
	if outcome == session.Unresolved {
		// A retry from the warning may have finished the job in the meantime.
		files, derr := a.detector.Detect(ctx, roots)
		if derr == nil && len(files) == 0 {
			color.New(color.FgGreen).Fprintln(out, "all conflicts resolved")
			if opCtx.Kind != operation.KindNone {
				color.New(color.FgCyan).Fprintf(out, "  (use \"mend resolve --continue\" to finish the %s)\n", opCtx.Kind)
			}
			return nil
		}
		return &ExitError{Code: 1}
	}
	if outcome == session.DetectionFailed {
		return &ExitError{Code: 2}
	}
	return nil
}

// proceedDeclined reports a pass that found nothing left to resolve but
// whose hook did not finish the operation.
func proceedDeclined(o session.Outcome, ok bool) bool {
	return !ok && (o == session.Resolved || o == session.NothingToMerge)
}

func printOutcome(out io.Writer, o session.Outcome) {
	switch o {
	case session.Resolved:
		color.New(color.FgGreen).Fprintln(out, o.String())
	case session.NothingToMerge:
		color.New(color.FgCyan).Fprintln(out, o.String())
	case session.Unresolved:
		color.New(color.FgYellow).Fprintln(out, o.String())
	default:
		color.New(color.FgRed).Fprintln(out, o.String())
	}
}
