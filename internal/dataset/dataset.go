// Package dataset holds the movie-ratings records, the CSV loader that builds
// them and the sanitizer that makes them usable for filtering.
package dataset

import (
	"sort"
	"strconv"
)

// Record is one user rating event.
type Record struct {
	Title      string
	Year       int
	UserRating float64
	// AvgRating is the movie's average rating across the whole corpus.
	AvgRating float64
	Genres    GenreSet
	// Extra carries the values of non-schema columns, aligned with
	// Dataset.ExtraColumns.
	Extra []string
}

// Dataset is an immutable, ordered set of sanitized records. Every derived
// view is a new Dataset.
type Dataset struct {
	extra   []string
	records []Record
}

func New(extraColumns []string, records []Record) *Dataset {
	d := &Dataset{
		extra:   append([]string(nil), extraColumns...),
		records: make([]Record, len(records)),
	}
	copy(d.records, records)
	return d
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns a copy of the records.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return append([]Record(nil), d.records...)
}

func (d *Dataset) ExtraColumns() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.extra...)
}

// Filter returns a new Dataset with the records for which keep is true.
func (d *Dataset) Filter(keep func(Record) bool) *Dataset {
	out := &Dataset{}
	if d == nil {
		return out
	}
	out.extra = d.extra
	for _, rec := range d.records {
		if keep(rec) {
			out.records = append(out.records, rec)
		}
	}
	return out
}

// Head returns the first n records, or all of them if there are fewer.
func (d *Dataset) Head(n int) *Dataset {
	if d == nil {
		return &Dataset{}
	}
	if n < 0 || n > len(d.records) {
		n = len(d.records)
	}
	return New(d.extra, d.records[:n])
}

// Years returns the distinct release years in ascending order.
func (d *Dataset) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for i := 0; i < d.Len(); i++ {
		y := d.records[i].Year
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// Ratings returns the distinct user ratings in ascending order.
func (d *Dataset) Ratings() []float64 {
	seen := make(map[float64]bool)
	var ratings []float64
	for i := 0; i < d.Len(); i++ {
		r := d.records[i].UserRating
		if !seen[r] {
			seen[r] = true
			ratings = append(ratings, r)
		}
	}
	sort.Float64s(ratings)
	return ratings
}

// YearBounds returns the smallest and largest release year. ok is false for an
// empty dataset.
func (d *Dataset) YearBounds() (min, max int, ok bool) {
	years := d.Years()
	if len(years) == 0 {
		return 0, 0, false
	}
	return years[0], years[len(years)-1], true
}

// Header returns the export column names: the schema columns in source order
// followed by the extra columns.
func (d *Dataset) Header() []string {
	header := []string{ColumnTitle, ColumnYear, ColumnUserRating, ColumnAvgRating}
	for _, g := range AllGenres() {
		header = append(header, g.String())
	}
	if d != nil {
		header = append(header, d.extra...)
	}
	return header
}

// Row formats record i in Header order.
func (d *Dataset) Row(i int) []string {
	rec := d.records[i]
	row := make([]string, 0, 4+GenreCount+len(d.extra))
	row = append(row,
		rec.Title,
		strconv.Itoa(rec.Year),
		FormatFloat(rec.UserRating),
		FormatFloat(rec.AvgRating),
	)
	for _, g := range AllGenres() {
		if rec.Genres.Has(g) {
			row = append(row, "1")
		} else {
			row = append(row, "0")
		}
	}
	for j := range d.extra {
		if j < len(rec.Extra) {
			row = append(row, rec.Extra[j])
		} else {
			row = append(row, "")
		}
	}
	return row
}

// FormatFloat uses the shortest representation that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
