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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ademuri/movie-stats/internal/aggregate"
	"github.com/ademuri/movie-stats/internal/analysis"
	"github.com/ademuri/movie-stats/internal/dataset"
)

const (
	dataFileName    = "Data.csv"
	summaryFileName = "Movie_Statistical_Summary.csv"
	genresFileName  = "Genre_Year_Summary.csv"
)

var (
	exportFilters filterFlags
	exportDir     string
)

var exportCmd = &cobra.Command{
	Use:   "export [start] [end (optional)]",
	Short: "Writes the data and summaries as CSV files",
	Long: `Writes three files to --dir: Data.csv holds every cleaned record regardless
of the filter, Movie_Statistical_Summary.csv the per-movie summary and
Genre_Year_Summary.csv the genre by year means of the filtered records.`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ds, err := loadFromViper(context.Background())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := exportFiles(os.Stdout, ds, exportFilters, args, exportDir); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addFilterFlags(exportCmd, &exportFilters)
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "Directory to write the files to")
}

func exportFiles(out io.Writer, ds *dataset.Dataset, ff filterFlags, args []string, dir string) error {
	_, report, err := runReportFromArgs(ds, ff, args, analysis.Options{})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{dataFileName, func(w io.Writer) error { return dataset.WriteCSV(w, ds) }},
		{summaryFileName, func(w io.Writer) error { return aggregate.WriteSummaryCSV(w, report.Movies) }},
		{genresFileName, func(w io.Writer) error { return aggregate.WriteGenreYearCSV(w, report.GenreTable) }},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := writeFile(path, f.write); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
