// Package filter narrows a dataset by release year, user rating and genre.
package filter

import (
	"errors"
	"fmt"

	"github.com/ademuri/movie-stats/internal/dataset"
)

var ErrInvalidRange = errors.New("start year must be less than or equal to end year")

// Spec describes one filter request. Empty Ratings or Genres mean no
// restriction on that axis.
type Spec struct {
	StartYear int
	EndYear   int
	Ratings   []float64
	Genres    []dataset.Genre
}

func (s Spec) Validate() error {
	if s.StartYear > s.EndYear {
		return fmt.Errorf("%w (got %d > %d)", ErrInvalidRange, s.StartYear, s.EndYear)
	}
	for _, g := range s.Genres {
		if !g.Valid() {
			return fmt.Errorf("%w: %v", dataset.ErrUnknownGenre, g)
		}
	}
	return nil
}

// Matches reports whether rec passes all three axes. Ratings match by exact
// equality; genres match if any selected flag is set.
func (s Spec) Matches(rec dataset.Record) bool {
	if rec.Year < s.StartYear || rec.Year > s.EndYear {
		return false
	}
	if len(s.Ratings) > 0 && !containsRating(s.Ratings, rec.UserRating) {
		return false
	}
	if len(s.Genres) > 0 && !rec.Genres.Any(s.Genres) {
		return false
	}
	return true
}

func containsRating(ratings []float64, r float64) bool {
	for _, v := range ratings {
		if v == r {
			return true
		}
	}
	return false
}

// Apply returns a new dataset holding the records that match spec. An invalid
// range is reported before any record is looked at.
func Apply(ds *dataset.Dataset, spec Spec) (*dataset.Dataset, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return ds.Filter(spec.Matches), nil
}

// FullRange returns a spec covering every year present in ds with no rating or
// genre restriction. For an empty dataset the range is empty but valid.
func FullRange(ds *dataset.Dataset) Spec {
	min, max, ok := ds.YearBounds()
	if !ok {
		return Spec{}
	}
	return Spec{StartYear: min, EndYear: max}
}

// YearOptions returns the choices offered for the start year (every year but
// the latest) and the end year (every year).
func YearOptions(ds *dataset.Dataset) (start []int, end []int) {
	end = ds.Years()
	if len(end) > 0 {
		start = end[:len(end)-1]
	}
	return start, end
}

// RatingOptions returns the distinct ratings given to movies released within
// the year range of spec. Rating and genre restrictions in spec are ignored.
func RatingOptions(ds *dataset.Dataset, spec Spec) ([]float64, error) {
	inRange, err := Apply(ds, Spec{StartYear: spec.StartYear, EndYear: spec.EndYear})
	if err != nil {
		return nil, err
	}
	return inRange.Ratings(), nil
}
