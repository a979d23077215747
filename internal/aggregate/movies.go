// Package aggregate computes the per-movie and per-genre-per-year rating
// summaries of a filtered dataset.
package aggregate

import (
	"sort"

	"github.com/ademuri/movie-stats/internal/dataset"
)

// MovieSummary holds the rating statistics of one (title, year) pair.
type MovieSummary struct {
	Title     string   `yaml:"title" json:"title"`
	Year      int      `yaml:"year" json:"year"`
	Count     int      `yaml:"total_ratings" json:"totalRatings"`
	Mean      float64  `yaml:"mean_user_rating" json:"meanUserRating"`
	Median    float64  `yaml:"median_user_rating" json:"medianUserRating"`
	StdDev    Optional `yaml:"user_rating_std_dev" json:"userRatingStdDev"`
	AvgRating float64  `yaml:"avg_rating" json:"avgRating"`
}

type movieKey struct {
	title string
	year  int
}

type movieGroup struct {
	ratings []float64
	avg     []float64
}

// Summarize groups ds by (title, year). Groups are emitted in key order and
// then stably sorted by count, largest first. The counts sum to ds.Len().
func Summarize(ds *dataset.Dataset) []MovieSummary {
	groups := make(map[movieKey]*movieGroup)
	var keys []movieKey
	for i := 0; i < ds.Len(); i++ {
		rec := ds.At(i)
		k := movieKey{rec.Title, rec.Year}
		g, ok := groups[k]
		if !ok {
			g = &movieGroup{}
			groups[k] = g
			keys = append(keys, k)
		}
		g.ratings = append(g.ratings, rec.UserRating)
		g.avg = append(g.avg, rec.AvgRating)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].title != keys[j].title {
			return keys[i].title < keys[j].title
		}
		return keys[i].year < keys[j].year
	})

	out := make([]MovieSummary, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		out = append(out, MovieSummary{
			Title:     k.title,
			Year:      k.year,
			Count:     len(g.ratings),
			Mean:      mean(g.ratings),
			Median:    median(g.ratings),
			StdDev:    sampleStdDev(g.ratings),
			AvgRating: mean(g.avg),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// TotalCount sums the group sizes.
func TotalCount(rows []MovieSummary) int {
	total := 0
	for _, r := range rows {
		total += r.Count
	}
	return total
}
