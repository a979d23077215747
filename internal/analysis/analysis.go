// Package analysis runs the load, filter and aggregate pipeline and assembles
// the result into a single report.
package analysis

import (
	"fmt"
	"io"
	"time"

	"github.com/ademuri/movie-stats/internal/aggregate"
	"github.com/ademuri/movie-stats/internal/dataset"
	"github.com/ademuri/movie-stats/internal/filter"
)

// DefaultSampleSize is the number of rows shown from the filtered data.
const DefaultSampleSize = 500

// topGenres bounds the genres listed in the overview.
const topGenres = 5

type Options struct {
	// SampleSize is the number of rows kept in Report.Sample. Zero means
	// DefaultSampleSize.
	SampleSize int
	// Now is used for the generated date; zero means time.Now().
	Now time.Time
}

// Prepare loads at most limit rows from r and sanitizes them.
func Prepare(r io.Reader, limit int) (*dataset.Dataset, dataset.LoadStats, error) {
	raw, stats, err := dataset.Load(r, limit)
	if err != nil {
		return nil, stats, fmt.Errorf("loading ratings: %w", err)
	}
	return dataset.Sanitize(raw), stats, nil
}

// Run filters ds with spec and aggregates the result. An invalid spec returns
// filter.ErrInvalidRange and no report. When nothing matches, the aggregates
// are empty and the sample falls back to the head of the full dataset.
func Run(ds *dataset.Dataset, spec filter.Spec, opts Options) (*Report, error) {
	filtered, err := filter.Apply(ds, spec)
	if err != nil {
		return nil, err
	}

	size := opts.SampleSize
	if size <= 0 {
		size = DefaultSampleSize
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	report := &Report{Filtered: filtered}

	// 1. Aggregates
	report.Movies = aggregate.Summarize(filtered)
	report.GenreTable = aggregate.GenreYears(filtered, spec.Genres)
	report.GenreYears = report.GenreTable.Cells()

	// 2. Sample
	fallback := filtered.Len() == 0
	if fallback {
		report.Sample = ds.Head(size)
	} else {
		report.Sample = filtered.Head(size)
	}

	// 3. Overview
	report.Overview.MeanRating, report.Overview.MedianRating = aggregate.Overall(filtered)
	if len(report.Movies) > 0 {
		report.Overview.MostRated = fmt.Sprintf("%s (%d)", report.Movies[0].Title, report.Movies[0].Year)
	}
	for i, gc := range aggregate.GenreCounts(filtered) {
		if i == topGenres {
			break
		}
		report.Overview.TopGenres = append(report.Overview.TopGenres, GenreCount{Genre: gc.Genre.String(), Ratings: gc.Count})
	}

	// 4. Metadata
	var genres []string
	for _, g := range spec.Genres {
		genres = append(genres, g.String())
	}
	report.Metadata = ReportMetadata{
		GeneratedDate:    now.Format("2006-01-02"),
		StartYear:        spec.StartYear,
		EndYear:          spec.EndYear,
		Ratings:          append([]float64(nil), spec.Ratings...),
		Genres:           genres,
		TotalRecords:     ds.Len(),
		FilteredRecords:  filtered.Len(),
		DistinctMovies:   len(report.Movies),
		SampleIsFallback: fallback,
	}

	return report, nil
}
