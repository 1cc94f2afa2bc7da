package cmd

import (
	"github.com/spf13/cobra"

	"github.com/conneroisu/barrel/internal/types"
)

var previewCmd = &cobra.Command{
	Use:     "preview <dir>",
	Aliases: []string{"p"},
	Short:   "Print the barrel a directory would get without writing it",
	Long: `Print the content generate would write for a directory. Nothing is
written. An empty result means the directory has nothing to export.

Examples:
  barrel preview lib/models                  # Scan as generate would
  barrel preview lib/models --subdirs        # Include the whole subtree
  barrel preview lib --only a.dart,b.dart    # Exactly these files`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

var (
	previewOnly    string
	previewSubdirs bool
)

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVar(&previewOnly, "only", "", "Comma separated files to export instead of scanning")
	previewCmd.Flags().BoolVar(&previewSubdirs, "subdirs", false, "Export files of all subdirectories")
}

func runPreview(cmd *cobra.Command, args []string) error {
	_, settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if previewSubdirs {
		settings = withSubdirectories(settings)
	}

	var units []types.SourceUnit
	if previewOnly != "" {
		if units, err = selectedUnits(args[0], splitList(previewOnly)); err != nil {
			return err
		}
	}

	gen, _ := newGenerator(cmd, settings)
	text, err := gen.Preview(commandContext(cmd), args[0], units)
	if err != nil {
		return err
	}

	printf(cmd, "%s", text)
	return nil
}
