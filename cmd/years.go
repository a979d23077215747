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

	"github.com/ademuri/movie-stats/internal/dataset"
)

var yearsCmd = &cobra.Command{
	Use:   "years [start] [end (optional)]",
	Short: "Lists the release years and ratings present in the data",
	Long: `Lists each release year with its number of ratings, marks the years that
may start a range, and lists the distinct user ratings given to movies released
within the given years (all years by default).`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ds, err := loadFromViper(context.Background())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := printYears(os.Stdout, ds, args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(yearsCmd)
}

func printYears(out io.Writer, ds *dataset.Dataset, args []string) error {
	spec, err := parseYearRangeFromArgs(ds, args)
	if err != nil {
		return err
	}
	result, err := yearsAnalysis(ds, spec)
	if err != nil {
		return err
	}
	fmt.Fprint(out, result)
	return nil
}
