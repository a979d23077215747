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

var genresFilters filterFlags

var genresCmd = &cobra.Command{
	Use:   "genres [start] [end (optional)]",
	Short: "Mean rating per genre and year",
	Long: `Prints the mean user rating of each genre in each release year. With
--genre only the selected genres are shown. Empty cells have no ratings.`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ds, err := loadFromViper(context.Background())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := printGenres(os.Stdout, ds, genresFilters, args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(genresCmd)
	addFilterFlags(genresCmd, &genresFilters)
}

func printGenres(out io.Writer, ds *dataset.Dataset, ff filterFlags, args []string) error {
	spec, report, err := runReportFromArgs(ds, ff, args, analysis.Options{})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Average rating by genre and year, %s\n", describeSpec(spec))
	fmt.Fprint(out, genreAnalysis(report))
	return nil
}
