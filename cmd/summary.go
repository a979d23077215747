/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ademuri/movie-stats/internal/analysis"
	"github.com/ademuri/movie-stats/internal/dataset"
	"github.com/ademuri/movie-stats/internal/filter"
)

var (
	summaryFilters filterFlags
	summaryLimit   int
)

var summaryCmd = &cobra.Command{
	Use:   "summary [start] [end (optional)]",
	Short: "Per-movie rating statistics",
	Long: `Prints the number of ratings and the mean, median and standard deviation
of the user rating of each movie, most rated first.`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ds, err := loadFromViper(context.Background())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := printSummary(os.Stdout, ds, summaryFilters, args, summaryLimit); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	addFilterFlags(summaryCmd, &summaryFilters)
	summaryCmd.Flags().IntVarP(&summaryLimit, "number", "n", 20, "Number of movies to show, 0 for all")
}

func printSummary(out io.Writer, ds *dataset.Dataset, ff filterFlags, args []string, n int) error {
	spec, report, err := runReportFromArgs(ds, ff, args, analysis.Options{})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Movies from %s\n", describeSpec(spec))
	fmt.Fprint(out, summaryAnalysis(report, n))
	return nil
}

// runReportFromArgs parses the filter and runs the pipeline.
func runReportFromArgs(ds *dataset.Dataset, ff filterFlags, args []string, opts analysis.Options) (filter.Spec, *analysis.Report, error) {
	spec, err := ff.spec(ds, args)
	if err != nil {
		return spec, nil, err
	}
	report, err := analysis.Run(ds, spec, opts)
	if errors.Is(err, filter.ErrInvalidRange) {
		return spec, nil, fmt.Errorf("Warning: %w", err)
	}
	return spec, report, err
}
