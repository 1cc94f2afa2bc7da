package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/barrel/internal/inspect"
)

// errFindings makes check exit non-zero when anything was found.
var errFindings = errors.New("barrel check found issues")

var checkCmd = &cobra.Command{
	Use:   "check [dir|glob...]",
	Short: "Report missing and outdated barrel files",
	Long: `Inspect directory trees for barrels that are missing or out of date.
The command exits non-zero when anything is found, so it can gate CI.

A barrel is missing when a directory has more than one exportable file and
no barrel among its files. A barrel is outdated when its exports no longer
match its directory.

Examples:
  barrel check                     # Check the configured watch paths
  barrel check lib -f json         # Machine readable output
  barrel check lib --fix           # Generate and regenerate what is found`,
	RunE: runCheck,
}

var (
	checkFormat string
	checkFix    bool
)

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "table", "Output format (table, json, yaml)")
	checkCmd.Flags().BoolVar(&checkFix, "fix", false, "Fix every finding that can be fixed automatically")
	AddFlagValidation(checkCmd.Flags(), "format", ValidateChoice("table", "json", "yaml"))
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	cfg, settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	dirs, err := expandDirs(defaultDirs(cfg, args))
	if err != nil {
		return err
	}

	gen, src := newGenerator(cmd, settings)
	inspector := inspect.New(src, gen, newLogger(cmd))

	report, err := inspector.Inspect(ctx, dirs...)
	if err != nil {
		return err
	}

	if checkFix && report.HasFindings() {
		fixed, err := inspector.Fix(ctx, report.Findings)
		if err != nil {
			return err
		}
		printf(cmd, "Fixed %d barrel file(s)\n", fixed)

		if report, err = inspector.Inspect(ctx, dirs...); err != nil {
			return err
		}
	}

	if err := writeReport(cmd.OutOrStdout(), report, checkFormat); err != nil {
		return err
	}

	if report.HasFindings() {
		return errFindings
	}
	return nil
}

func writeReport(w io.Writer, report *inspect.Report, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(report)
	case "table", "":
		return writeReportTable(w, report)
	default:
		return fmt.Errorf("unsupported format: %s (supported: table, json, yaml)", format)
	}
}

func writeReportTable(w io.Writer, report *inspect.Report) error {
	if !report.HasFindings() {
		_, err := fmt.Fprintf(w, "No issues in %d director(ies)\n", report.Directories)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tDIRECTORY\tBARREL\tMESSAGE")
	for _, f := range report.Findings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Rule, f.Directory, f.Barrel, f.Message)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d missing, %d outdated\n",
		report.Count(inspect.RuleMissingBarrel), report.Count(inspect.RuleOutdatedBarrel))
	return err
}
