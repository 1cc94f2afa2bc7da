package cmd

import (
	"github.com/spf13/cobra"

	"github.com/conneroisu/barrel/internal/config"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"i"},
	Short:   "Write a barrel configuration file",
	Long: `Write .barrel.yml in the current directory (or the file named by
--config) holding the default configuration. With --interactive a short
wizard asks for each option first.

Examples:
  barrel init                  # Write the defaults
  barrel init --interactive    # Answer a few questions first
  barrel init --force          # Overwrite an existing file`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initForce       bool
	initInteractive bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Run the configuration wizard")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if initInteractive {
		wizard := config.NewConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout())
		var err error
		if cfg, err = wizard.Run(); err != nil {
			return err
		}
	}

	path := cfgFile
	if path == "" {
		path = config.DefaultFileName
	}

	if err := cfg.WriteFile(path, initForce); err != nil {
		return err
	}

	printf(cmd, "Wrote %s\n", path)
	return nil
}
