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
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ademuri/movie-stats/internal/aggregate"
	"github.com/ademuri/movie-stats/internal/analysis"
	"github.com/ademuri/movie-stats/internal/dataset"
	"github.com/ademuri/movie-stats/internal/filter"
)

// Analysis is a table with a header row, followed by a one-line summary.
type Analysis struct {
	results [][]string
	summary string
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	if len(a.results) > 1 {
		table := tablewriter.NewWriter(out)
		table.Header(a.results[0])
		for _, row := range a.results[1:] {
			if err := table.Append(row); err != nil {
				return fmt.Sprintf("Error rendering table: %v", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	fmt.Fprintf(out, "%s\n", a.summary)
	return out.String()
}

// HTML renders the analysis for an email body.
func (a Analysis) HTML() string {
	var out strings.Builder
	if len(a.results) > 1 {
		out.WriteString("<table>\n<thead><tr>")
		for _, header := range a.results[0] {
			fmt.Fprintf(&out, "<th>%s</th>", html.EscapeString(header))
		}
		out.WriteString("</tr></thead>\n<tbody>\n")
		for _, row := range a.results[1:] {
			out.WriteString("<tr>")
			for _, column := range row {
				fmt.Fprintf(&out, "<td>%s</td>", html.EscapeString(column))
			}
			out.WriteString("</tr>\n")
		}
		out.WriteString("</tbody>\n</table>\n")
	}
	fmt.Fprintf(&out, "<div>%s</div>\n", html.EscapeString(a.summary))
	return out.String()
}

func describeSpec(spec filter.Spec) string {
	desc := fmt.Sprintf("%d to %d", spec.StartYear, spec.EndYear)
	if len(spec.Ratings) > 0 {
		var ratings []string
		for _, r := range spec.Ratings {
			ratings = append(ratings, dataset.FormatFloat(r))
		}
		desc += ", ratings " + strings.Join(ratings, ", ")
	}
	if len(spec.Genres) > 0 {
		var genres []string
		for _, g := range spec.Genres {
			genres = append(genres, g.String())
		}
		desc += ", genres " + strings.Join(genres, ", ")
	}
	return desc
}

// summaryAnalysis lists the n most rated movies; n <= 0 lists all of them.
func summaryAnalysis(report *analysis.Report, n int) Analysis {
	rows := report.Movies
	if n > 0 && n < len(rows) {
		rows = rows[:n]
	}
	results := append([][]string{aggregate.SummaryHeader}, aggregate.SummaryRows(rows, 2, "NaN")...)
	return Analysis{
		results: results,
		summary: fmt.Sprintf("%d of %d movies, %d ratings", len(rows), len(report.Movies), report.Metadata.FilteredRecords),
	}
}

func genreAnalysis(report *analysis.Report) Analysis {
	results := aggregate.PivotRows(report.GenreTable, 2, "")
	return Analysis{
		results: results,
		summary: fmt.Sprintf("%d genres over %d years", len(report.GenreTable.Genres()), len(report.GenreTable.Years())),
	}
}

func sampleAnalysis(report *analysis.Report) Analysis {
	sample := report.Sample
	results := [][]string{sample.Header()}
	for i := 0; i < sample.Len(); i++ {
		results = append(results, sample.Row(i))
	}
	summary := fmt.Sprintf("First %d of %d matching records", sample.Len(), report.Metadata.FilteredRecords)
	if report.Metadata.SampleIsFallback {
		summary = fmt.Sprintf("No records match, showing the first %d of %d records", sample.Len(), report.Metadata.TotalRecords)
	}
	return Analysis{results: results, summary: summary}
}

// yearsAnalysis counts the ratings per release year and lists the year
// choices. The rating choices are limited to the years in spec.
func yearsAnalysis(ds *dataset.Dataset, spec filter.Spec) (Analysis, error) {
	options, err := filter.RatingOptions(ds, spec)
	if err != nil {
		return Analysis{}, fmt.Errorf("Warning: %w", err)
	}

	counts := make(map[int]int)
	for i := 0; i < ds.Len(); i++ {
		counts[ds.At(i).Year]++
	}
	start, _ := filter.YearOptions(ds)
	isStart := make(map[int]bool, len(start))
	for _, y := range start {
		isStart[y] = true
	}

	results := [][]string{{"Year", "Ratings", "Start Option"}}
	for _, y := range ds.Years() {
		option := ""
		if isStart[y] {
			option = "yes"
		}
		results = append(results, []string{strconv.Itoa(y), strconv.Itoa(counts[y]), option})
	}

	var ratings []string
	for _, r := range options {
		ratings = append(ratings, dataset.FormatFloat(r))
	}
	return Analysis{
		results: results,
		summary: fmt.Sprintf("Ratings (%s): %s", describeSpec(spec), strings.Join(ratings, ", ")),
	}, nil
}
