package analysis

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ademuri/movie-stats/internal/aggregate"
	"github.com/ademuri/movie-stats/internal/dataset"
	"github.com/ademuri/movie-stats/internal/filter"
)

func testDataset() *dataset.Dataset {
	return dataset.New(nil, []dataset.Record{
		{Title: "A", Year: 2000, UserRating: 4, AvgRating: 4.2, Genres: dataset.NewGenreSet(dataset.Comedy)},
		{Title: "A", Year: 2000, UserRating: 5, AvgRating: 4.2, Genres: dataset.NewGenreSet(dataset.Comedy)},
		{Title: "B", Year: 2001, UserRating: 3, AvgRating: 3.1, Genres: dataset.NewGenreSet(dataset.Action, dataset.Comedy)},
		{Title: "C", Year: 2005, UserRating: 2, AvgRating: 2.5, Genres: dataset.NewGenreSet(dataset.Drama)},
	})
}

// ratingsCSV renders rows of title, year, rating and average with only the
// Comedy flag set.
func ratingsCSV(rows ...[4]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(dataset.Columns(), ","))
	b.WriteString("\n")
	for _, r := range rows {
		fields := r[:]
		for _, g := range dataset.AllGenres() {
			if g == dataset.Comedy {
				fields = append(fields, "1")
			} else {
				fields = append(fields, "0")
			}
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteString("\n")
	}
	return b.String()
}

func TestPrepare(t *testing.T) {
	in := ratingsCSV(
		[4]string{"A", "2000", "4", "4.2"},
		[4]string{"B", "", "3", "3.1"},
		[4]string{"C", "1999.7", "2", "2.5"},
		[4]string{"D", "-5", "2", "2.5"},
	)
	ds, stats, err := Prepare(strings.NewReader(in), dataset.DefaultRowLimit)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if stats.Read != 4 {
		t.Errorf("stats.Read = %d, want 4", stats.Read)
	}
	if ds.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ds.Len())
	}
	if got := ds.At(1).Year; got != 1999 {
		t.Errorf("truncated year = %d, want 1999", got)
	}
}

func TestPrepareSchemaMismatch(t *testing.T) {
	_, _, err := Prepare(strings.NewReader("title,year\nA,2000\n"), 10)
	if !errors.Is(err, dataset.ErrSchemaMismatch) {
		t.Errorf("Prepare() error = %v, want ErrSchemaMismatch", err)
	}
}

func TestRun(t *testing.T) {
	ds := testDataset()
	spec := filter.Spec{StartYear: 2000, EndYear: 2001, Genres: []dataset.Genre{dataset.Comedy}}
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	report, err := Run(ds, spec, Options{SampleSize: 2, Now: now})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Filtered.Len() != 3 {
		t.Errorf("filtered = %d, want 3", report.Filtered.Len())
	}
	if len(report.Movies) != 2 || report.Movies[0].Title != "A" || report.Movies[0].Count != 2 {
		t.Errorf("Movies = %+v", report.Movies)
	}
	if got := aggregate.TotalCount(report.Movies); got != report.Filtered.Len() {
		t.Errorf("TotalCount() = %d, want %d", got, report.Filtered.Len())
	}
	// Only the selected genre is pivoted.
	if got := report.GenreTable.Genres(); len(got) != 1 || got[0] != dataset.Comedy {
		t.Errorf("pivot genres = %v, want [Comedy]", got)
	}
	if mean, ok := report.GenreTable.Mean(dataset.Comedy, 2000); !ok || mean != 4.5 {
		t.Errorf("Comedy/2000 = %v, %v, want 4.5", mean, ok)
	}
	if report.Sample.Len() != 2 || report.Metadata.SampleIsFallback {
		t.Errorf("sample = %d rows, fallback %v", report.Sample.Len(), report.Metadata.SampleIsFallback)
	}

	md := report.Metadata
	if md.GeneratedDate != "2024-05-01" || md.TotalRecords != 4 || md.FilteredRecords != 3 || md.DistinctMovies != 2 {
		t.Errorf("Metadata = %+v", md)
	}
	if len(md.Genres) != 1 || md.Genres[0] != "Comedy" {
		t.Errorf("Metadata.Genres = %v", md.Genres)
	}
	if report.Overview.MostRated != "A (2000)" {
		t.Errorf("MostRated = %q", report.Overview.MostRated)
	}
	if !report.Overview.MeanRating.Valid || report.Overview.MeanRating.Value != 4 {
		t.Errorf("MeanRating = %v, want 4", report.Overview.MeanRating)
	}
	if len(report.Overview.TopGenres) != 2 || report.Overview.TopGenres[0].Genre != "Comedy" {
		t.Errorf("TopGenres = %+v", report.Overview.TopGenres)
	}
}

func TestRunNoMatchFallsBack(t *testing.T) {
	ds := testDataset()
	spec := filter.Spec{StartYear: 2000, EndYear: 2005, Ratings: []float64{1}}

	report, err := Run(ds, spec, Options{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if report.Filtered.Len() != 0 || len(report.Movies) != 0 || len(report.GenreYears) != 0 {
		t.Errorf("expected empty aggregates, got %+v", report)
	}
	if !report.Metadata.SampleIsFallback || report.Sample.Len() != ds.Len() {
		t.Errorf("sample = %d rows, fallback %v, want full dataset", report.Sample.Len(), report.Metadata.SampleIsFallback)
	}
	if report.Overview.MeanRating.Valid {
		t.Errorf("MeanRating = %v, want undefined", report.Overview.MeanRating)
	}
}

func TestRunInvalidRange(t *testing.T) {
	report, err := Run(testDataset(), filter.Spec{StartYear: 2005, EndYear: 2000}, Options{})
	if !errors.Is(err, filter.ErrInvalidRange) {
		t.Errorf("Run() error = %v, want ErrInvalidRange", err)
	}
	if report != nil {
		t.Errorf("Run() returned a report for an invalid range")
	}
}
