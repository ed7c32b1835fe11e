package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/finstmt/fsg/pkg/ingest"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	datasetsDataDir string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List datasets in a data directory",
	Long:  `Loads every trial balance file in a directory and prints its name, row count, fiscal years and fingerprint.`,
	RunE:  runDatasets,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
	datasetsCmd.Flags().StringVar(&datasetsDataDir, "data", "data", "dataset directory")
}

func runDatasets(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	datasets, err := ingest.LoadDir(datasetsDataDir, logger)
	if err != nil {
		return err
	}
	if len(datasets) == 0 {
		return fmt.Errorf("no datasets found in %s", datasetsDataDir)
	}

	names := make([]string, 0, len(datasets))
	for name := range datasets {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tROWS\tYEARS\tFINGERPRINT")
	for _, name := range names {
		d := datasets[name]
		fmt.Fprintf(w, "%s\t%d\t%v\t%.12s\n", name, d.Len(), d.Years(), d.Fingerprint())
	}
	return w.Flush()
}
