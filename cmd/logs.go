package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhubert/mend/internal/logger"
)

var clearLogs bool

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show where the debug log is written, or remove log files",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !clearLogs {
			p := logger.Path()
			if p == "" {
				p = logger.DefaultLogPath
			}
			fmt.Fprintln(out, p)
			return nil
		}
		n, err := logger.ClearLogs()
		if err != nil {
			return fmt.Errorf("error clearing logs: %w", err)
		}
		fmt.Fprintf(out, "Removed %d log file(s).\n", n)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), versionTemplate())
	},
}

func init() {
	logsCmd.Flags().BoolVar(&clearLogs, "clear", false, "Remove all mend log files")
	rootCmd.AddCommand(logsCmd, versionCmd)
}
