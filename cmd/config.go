package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zhubert/mend/internal/config"
	"github.com/zhubert/mend/internal/git"
)

var configFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration in effect",
	Long: `Prints the user configuration (~/.mend/config.json) merged with the
overrides of the working tree (.mend.toml at its root).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		roots, err := resolveRoots(cmd.Context(), git.NewGitService(), rootDirs)
		if err != nil {
			// Outside a repository only the user config applies.
			return printConfig(cmd.OutOrStdout(), cfg, config.DefaultRepoConfig(), configFormat)
		}
		repo, err := config.LoadRepo(string(roots[0]))
		if err != nil {
			return err
		}
		return printConfig(cmd.OutOrStdout(), cfg, repo, configFormat)
	},
}

func init() {
	configCmd.Flags().StringVar(&configFormat, "format", config.FormatYAML, "Output format: yaml, json or toml")
	rootCmd.AddCommand(configCmd)
}

func printConfig(out io.Writer, cfg *config.Config, repo config.RepoConfig, format string) error {
	data, err := config.Marshal(config.NewEffective(cfg, repo), format)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
