package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zhubert/mend/internal/config"
	"github.com/zhubert/mend/internal/conflict"
	"github.com/zhubert/mend/internal/git"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status [path...]",
	Short: "List unmerged files",
	Long: `Prints the files git reports as unmerged in each working tree. Exits with
status 1 when there are any, so scripts can wait for a clean tree.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dirs := append(append([]string(nil), rootDirs...), args...)
		return runStatus(cmd.Context(), cmd.OutOrStdout(), git.NewGitService(), dirs, statusFormat)
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "text", "Output format: text, json or yaml")
	rootCmd.AddCommand(statusCmd)
}

// statusFile is one unmerged file in json and yaml output.
type statusFile struct {
	Root   string `json:"root" yaml:"root"`
	Path   string `json:"path" yaml:"path"`
	Exists bool   `json:"exists" yaml:"exists"`
}

type statusReport struct {
	Roots    []string     `json:"roots" yaml:"roots"`
	Unmerged []statusFile `json:"unmerged" yaml:"unmerged"`
}

func runStatus(ctx context.Context, out io.Writer, g *git.GitService, dirs []string, format string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	roots, err := resolveRoots(ctx, g, dirs)
	if err != nil {
		return err
	}
	files, err := conflict.NewDetector(g).Detect(ctx, roots)
	if err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case "", "text":
		printStatusText(out, roots, files)
	case config.FormatJSON, config.FormatYAML, "yml":
		report := statusReport{Unmerged: []statusFile{}}
		for _, r := range roots {
			report.Roots = append(report.Roots, string(r))
		}
		for _, f := range files {
			report.Unmerged = append(report.Unmerged, statusFile{Root: string(f.Root), Path: f.RelPath, Exists: f.Exists})
		}
		data, err := config.Marshal(report, format)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}

	if len(files) > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}

func printStatusText(out io.Writer, roots []conflict.Root, files []conflict.UnmergedFile) {
	if len(files) == 0 {
		fmt.Fprintln(out, "No unmerged files")
		return
	}

	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)
	fmt.Fprintln(out, conflict.CountDescription(files)+":")
	cyan.Fprintln(out, "  (use \"mend resolve\" to resolve them)")
	fmt.Fprintln(out)

	var last conflict.Root
	for _, f := range files {
		if len(roots) > 1 && f.Root != last {
			last = f.Root
			fmt.Fprintf(out, "  %s\n", last)
		}
		label := "both modified:"
		if !f.Exists {
			label = "deleted here: "
		}
		red.Fprintf(out, "        %s  %s\n", label, f.RelPath)
	}
}
