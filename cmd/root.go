package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zhubert/mend/internal/logger"
)

var (
	debugMode             bool
	quietMode             bool
	logFile               string
	rootDirs              []string
	version, commit, date string
)

// ExitError carries a process exit code out of a command without an error
// message, e.g. `mend status` with unmerged files.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode returns the exit code err asks for: 0 for nil, the carried code for
// an ExitError and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "mend",
	Short: "Resolve git merge conflicts until none are left",
	Long: `mend finds the files git reports as unmerged, opens a merge tool for them,
checks again once the tool is closed, and keeps offering to resolve whatever is
left. It can start the operation that produces the conflicts (merge, rebase,
cherry-pick, stash pop) and continue it once everything is resolved.

Without a subcommand mend behaves like "mend resolve".`,
	RunE:          runResolve,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", true, "Enable debug logging (on by default)")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write the debug log here instead of "+logger.DefaultLogPath)
	rootCmd.PersistentFlags().StringSliceVarP(&rootDirs, "root", "C", nil, "Working tree to operate on (repeatable, default: current directory)")
}

func initConfig() {
	if logFile != "" {
		if err := logger.Init(logFile); err != nil {
			fmt.Fprintf(rootCmd.ErrOrStderr(), "Warning: %v\n", err)
		}
	}
	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("mend %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("mend %s\n", version)
}
