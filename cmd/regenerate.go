package cmd

import (
	"github.com/spf13/cobra"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate <barrel-file...>",
	Short: "Rewrite existing barrel files from their directories",
	Long: `Rewrite each barrel file from the current contents of its directory,
whether or not it is stale. Barrel files that no longer exist are skipped.

Examples:
  barrel regenerate lib/models/models.dart
  barrel regenerate lib/*/index.dart`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRegenerate,
}

func init() {
	rootCmd.AddCommand(regenerateCmd)
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	_, settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	gen, _ := newGenerator(cmd, settings)
	results, err := gen.BatchRegenerate(commandContext(cmd), args)
	for _, r := range results {
		switch {
		case r.Err != nil:
		case r.File == nil:
			printf(cmd, "%s: no barrel to regenerate\n", r.Target)
		default:
			printf(cmd, "updated %s\n", r.File.Path)
		}
	}
	return err
}
