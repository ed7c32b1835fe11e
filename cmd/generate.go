package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/finstmt/fsg/pkg/export"
	"github.com/finstmt/fsg/pkg/ingest"
	"github.com/finstmt/fsg/pkg/report"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	generateReportsDir string
	generateDataFile   string
	generateReportIDs  []string
	generateOutput     string
	generateFormat     string
	generateLTM        bool
)

//nolint:gochecknoglobals // Cobra commands are typically global
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render reports to a workbook or JSON",
	Long: `Renders report definitions over a trial balance file and writes the
result as an xlsx workbook (one sheet per report) or as JSON.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&generateReportsDir, "reports", "reports", "report definitions directory")
	generateCmd.Flags().StringVar(&generateDataFile, "data", "", "trial balance file (csv or xlsx)")
	generateCmd.Flags().StringSliceVar(&generateReportIDs, "report", nil, "report ids to render (default all)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "report.xlsx", "output file (\"-\" for stdout with json)")
	generateCmd.Flags().StringVar(&generateFormat, "format", "xlsx", "output format (xlsx, json)")
	generateCmd.Flags().BoolVar(&generateLTM, "ltm", false, "render over the trailing twelve-month window")

	_ = generateCmd.MarkFlagRequired("data")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	if generateFormat != "xlsx" && generateFormat != "json" {
		return fmt.Errorf("unknown output format %q, expected xlsx or json", generateFormat)
	}

	d, err := ingest.ReadFile(generateDataFile)
	if err != nil {
		return err
	}

	definitions, err := report.LoadDir(generateReportsDir, logger)
	if err != nil {
		return err
	}
	if len(definitions) == 0 {
		return fmt.Errorf("no report definitions found in %s", generateReportsDir)
	}

	ids := generateReportIDs
	if len(ids) == 0 {
		for id := range definitions {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}

	renderer := report.NewRenderer(logger)
	rendered := make([]*report.Rendered, 0, len(ids))
	for _, id := range ids {
		def, ok := definitions[id]
		if !ok {
			return fmt.Errorf("%w: %q", report.ErrReportNotFound, id)
		}
		if generateLTM && !def.LTM.Enabled {
			clone := *def
			clone.LTM.Enabled = true
			def = &clone
		}

		result, renderErr := renderer.Render(def, d)
		if renderErr != nil {
			return fmt.Errorf("failed to render %q: %w", id, renderErr)
		}
		if result.Warning != "" {
			logger.WithField("report", id).Warn(result.Warning)
		}
		rendered = append(rendered, result)
	}

	if generateFormat == "json" {
		return writeJSON(rendered)
	}
	return writeWorkbook(rendered)
}

func writeJSON(rendered []*report.Rendered) error {
	data, err := json.MarshalIndent(rendered, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if generateOutput == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(generateOutput, data, 0o600)
}

func writeWorkbook(rendered []*report.Rendered) error {
	writer, err := export.NewWriter()
	if err != nil {
		return err
	}

	for _, result := range rendered {
		if err := writer.AddReport(result); err != nil {
			return err
		}
	}

	if err := writer.Save(generateOutput); err != nil {
		return err
	}

	logger.WithField("output", generateOutput).
		WithField("reports", len(rendered)).
		Info("Workbook written")

	return nil
}
