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
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ademuri/movie-stats/internal/analysis"
	"github.com/ademuri/movie-stats/internal/dataset"
)

var (
	sampleFilters filterFlags
	sampleSize    int
)

var sampleCmd = &cobra.Command{
	Use:   "sample [start] [end (optional)]",
	Short: "Prints the first matching records",
	Long: `Prints the first matching records. When nothing matches, the first records
of the whole data set are shown instead.`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ds, err := loadFromViper(context.Background())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := printSample(os.Stdout, ds, sampleFilters, args, sampleSize); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	addFilterFlags(sampleCmd, &sampleFilters)
	sampleCmd.Flags().IntVarP(&sampleSize, "number", "n", analysis.DefaultSampleSize, "Number of records to show")
}

func printSample(out io.Writer, ds *dataset.Dataset, ff filterFlags, args []string, n int) error {
	_, report, err := runReportFromArgs(ds, ff, args, analysis.Options{SampleSize: n})
	if err != nil {
		return err
	}
	fmt.Fprint(out, sampleAnalysis(report))
	return nil
}
