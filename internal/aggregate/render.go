package aggregate

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// SummaryHeader names the per-movie summary columns.
var SummaryHeader = []string{
	"Movie Title",
	"Release Year",
	"Total Ratings",
	"Mean User Rating",
	"Median User Rating",
	"User Rating Std Dev",
	"Avg Rating",
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// SummaryRows formats rows in SummaryHeader order with prec decimals (-1 for
// the shortest exact form). An undefined std dev is written as undefined.
func SummaryRows(rows []MovieSummary, prec int, undefined string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		std := undefined
		if r.StdDev.Valid {
			std = r.StdDev.Format(prec)
		}
		out = append(out, []string{
			r.Title,
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Count),
			formatFloat(r.Mean, prec),
			formatFloat(r.Median, prec),
			std,
			formatFloat(r.AvgRating, prec),
		})
	}
	return out
}

// PivotRows formats the table with one row per genre and one column per year.
// The first row is the header. Missing cells are written as missing.
func PivotRows(t *GenreYearTable, prec int, missing string) [][]string {
	header := []string{"Genre"}
	for _, y := range t.years {
		header = append(header, strconv.Itoa(y))
	}
	out := [][]string{header}
	for _, g := range t.genres {
		row := []string{g.String()}
		for _, y := range t.years {
			if m, ok := t.Mean(g, y); ok {
				row = append(row, formatFloat(m, prec))
			} else {
				row = append(row, missing)
			}
		}
		out = append(out, row)
	}
	return out
}

// WriteSummaryCSV writes the per-movie summary with a header row. Undefined
// values are empty cells.
func WriteSummaryCSV(w io.Writer, rows []MovieSummary) error {
	return writeCSV(w, append([][]string{SummaryHeader}, SummaryRows(rows, -1, "")...))
}

// WriteGenreYearCSV writes the genre-year pivot with a header row.
func WriteGenreYearCSV(w io.Writer, t *GenreYearTable) error {
	return writeCSV(w, PivotRows(t, -1, ""))
}

func writeCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
