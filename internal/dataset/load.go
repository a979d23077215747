package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	ColumnTitle      = "movie_title"
	ColumnYear       = "movie_year"
	ColumnUserRating = "user_rating"
	ColumnAvgRating  = "movies_avg_rating"
)

// DefaultRowLimit is the number of data rows read from the source.
const DefaultRowLimit = 5000

var (
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrMalformedCSV reports a row whose quoting swallows the lines after it.
	ErrMalformedCSV = errors.New("malformed csv")
)

// SchemaError lists the required columns absent from a file header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch: missing columns %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// RawRecord is a parsed row before sanitization.
type RawRecord struct {
	Title string
	// Year is only meaningful when HasYear is set. It may be fractional.
	Year       float64
	HasYear    bool
	UserRating float64
	AvgRating  float64
	Genres     GenreSet
	Extra      []string
}

type RawDataset struct {
	ExtraColumns []string
	Records      []RawRecord
}

type LoadStats struct {
	// Read counts data rows consumed, including skipped ones.
	Read    int
	Skipped int
}

type columnMap struct {
	title, year, userRating, avgRating int
	genres                             [GenreCount]int
	extra                              []int
}

// Load parses CSV content into raw records. At most limit data rows are read;
// limit <= 0 reads everything. Rows with unparseable ratings or genre flags are
// skipped and counted, as are rows with the wrong number of fields. A row with
// an unterminated quote that runs over the following lines fails the load.
func Load(r io.Reader, limit int) (*RawDataset, LoadStats, error) {
	var stats LoadStats
	reader := csv.NewReader(r)
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, stats, &SchemaError{Missing: Columns()}
	}
	if err != nil {
		return nil, stats, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	cols, extraNames, err := mapColumns(header)
	if err != nil {
		return nil, stats, err
	}

	raw := &RawDataset{ExtraColumns: extraNames}
	for limit <= 0 || stats.Read < limit {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				if errors.Is(parseErr.Err, csv.ErrQuote) || spansLines(row) {
					return nil, stats, fmt.Errorf("%w: row starting on line %d: unterminated quoted field", ErrMalformedCSV, parseErr.StartLine)
				}
				stats.Read++
				stats.Skipped++
				continue
			}
			return nil, stats, fmt.Errorf("reading row %d: %w", stats.Read+1, err)
		}
		stats.Read++

		rec, ok := parseRow(row, cols)
		if !ok {
			stats.Skipped++
			continue
		}
		raw.Records = append(raw.Records, rec)
	}

	return raw, stats, nil
}

// Columns returns the required header of a ratings file, genres in vocabulary
// order.
func Columns() []string {
	cols := []string{ColumnTitle, ColumnYear, ColumnUserRating, ColumnAvgRating}
	for _, g := range AllGenres() {
		cols = append(cols, g.String())
	}
	return cols
}

func mapColumns(header []string) (columnMap, []string, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	var cols columnMap
	cols.title = lookup(ColumnTitle)
	cols.year = lookup(ColumnYear)
	cols.userRating = lookup(ColumnUserRating)
	cols.avgRating = lookup(ColumnAvgRating)
	used := map[int]bool{cols.title: true, cols.year: true, cols.userRating: true, cols.avgRating: true}
	for _, g := range AllGenres() {
		cols.genres[g] = lookup(g.String())
		used[cols.genres[g]] = true
	}
	if len(missing) > 0 {
		return cols, nil, &SchemaError{Missing: missing}
	}

	var extraNames []string
	for i, name := range header {
		if used[i] {
			continue
		}
		cols.extra = append(cols.extra, i)
		extraNames = append(extraNames, strings.TrimSpace(name))
	}
	return cols, extraNames, nil
}

func spansLines(row []string) bool {
	for _, field := range row {
		if strings.ContainsAny(field, "\r\n") {
			return true
		}
	}
	return false
}

func parseRow(row []string, cols columnMap) (RawRecord, bool) {
	rec := RawRecord{Title: row[cols.title]}

	rec.Year, rec.HasYear = parseYear(row[cols.year])

	var ok bool
	if rec.UserRating, ok = parseRating(row[cols.userRating]); !ok {
		return rec, false
	}
	if rec.AvgRating, ok = parseRating(row[cols.avgRating]); !ok {
		return rec, false
	}

	for g, i := range cols.genres {
		set, ok := parseFlag(row[i])
		if !ok {
			return rec, false
		}
		if set {
			rec.Genres = rec.Genres.With(Genre(g))
		}
	}

	if len(cols.extra) > 0 {
		rec.Extra = make([]string, len(cols.extra))
		for j, i := range cols.extra {
			rec.Extra[j] = row[i]
		}
	}
	return rec, true
}

// parseYear treats empty, NaN, infinite and unparseable cells as missing.
func parseYear(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseRating(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseFlag reads a genre indicator. Empty and NaN cells are unset; any other
// non-zero number is set.
func parseFlag(s string) (bool, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false, false
	}
	if math.IsNaN(v) {
		return false, true
	}
	return v != 0, true
}
