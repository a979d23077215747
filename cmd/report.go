package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/movie-stats/internal/analysis"
	"github.com/ademuri/movie-stats/internal/dataset"
)

var reportFilters filterFlags

var reportCmd = &cobra.Command{
	Use:   "report [start] [end (optional)]",
	Short: "Generates a YAML report of the rating statistics",
	Long: `Runs the filter and both summaries and writes the result, with an overview
of the matching ratings, as a YAML document.`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ds, err := loadFromViper(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
		if err := runReport(os.Stdout, ds, reportFilters, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addFilterFlags(reportCmd, &reportFilters)
}

func runReport(out io.Writer, ds *dataset.Dataset, ff filterFlags, args []string) error {
	_, report, err := runReportFromArgs(ds, ff, args, analysis.Options{})
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	err = encoder.Encode(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	return encoder.Close()
}
