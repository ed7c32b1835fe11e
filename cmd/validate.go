package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finstmt/fsg/pkg/report"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	validateReportsDir string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate report definitions",
	Long: `Checks every report definition in a directory: YAML structure,
variable filters and aggregates, expression syntax, row references and
reference cycles. All problems are reported, not just the first.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateReportsDir, "reports", "reports", "report definitions directory")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	paths, err := report.Discover(validateReportsDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no report definitions found in %s", validateReportsDir)
	}

	invalid := 0
	for _, path := range paths {
		def, loadErr := report.Load(path)
		if loadErr != nil {
			invalid++
			fmt.Printf("FAIL %s\n     %v\n", path, loadErr)
			continue
		}
		fmt.Printf("OK   %s (%s, %d rows, %d variables)\n", path, def.ID, len(def.Rows), len(def.Variables))
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d definitions invalid", invalid, len(paths))
	}

	logger.WithField("reports", len(paths)).Info("All definitions valid")
	return nil
}
