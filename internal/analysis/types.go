package analysis

import (
	"github.com/ademuri/movie-stats/internal/aggregate"
	"github.com/ademuri/movie-stats/internal/dataset"
)

// Report is the result of one pass of the pipeline over a dataset.
type Report struct {
	Metadata   ReportMetadata            `yaml:"metadata" json:"metadata"`
	Overview   RatingOverview            `yaml:"overview" json:"overview"`
	Movies     []aggregate.MovieSummary  `yaml:"movies" json:"movies"`
	GenreYears []aggregate.GenreYearCell `yaml:"genre_years" json:"genreYears"`

	// Filtered is the subset matching the request.
	Filtered *dataset.Dataset `yaml:"-" json:"-"`
	// GenreTable is the pivot behind GenreYears.
	GenreTable *aggregate.GenreYearTable `yaml:"-" json:"-"`
	// Sample holds the rows to display: the head of Filtered, or of the full
	// dataset when nothing matched.
	Sample *dataset.Dataset `yaml:"-" json:"-"`
}

type ReportMetadata struct {
	GeneratedDate    string    `yaml:"generated_date" json:"generatedDate"`
	StartYear        int       `yaml:"start_year" json:"startYear"`
	EndYear          int       `yaml:"end_year" json:"endYear"`
	Ratings          []float64 `yaml:"ratings,omitempty" json:"ratings,omitempty"`
	Genres           []string  `yaml:"genres,omitempty" json:"genres,omitempty"`
	TotalRecords     int       `yaml:"total_records" json:"totalRecords"`
	FilteredRecords  int       `yaml:"filtered_records" json:"filteredRecords"`
	DistinctMovies   int       `yaml:"distinct_movies" json:"distinctMovies"`
	SampleIsFallback bool      `yaml:"sample_is_fallback" json:"sampleIsFallback"`
}

// RatingOverview describes the filtered ratings as a whole.
type RatingOverview struct {
	MeanRating   aggregate.Optional `yaml:"mean_rating" json:"meanRating"`
	MedianRating aggregate.Optional `yaml:"median_rating" json:"medianRating"`
	MostRated    string             `yaml:"most_rated,omitempty" json:"mostRated,omitempty"`
	TopGenres    []GenreCount       `yaml:"top_genres,omitempty" json:"topGenres,omitempty"`
}

type GenreCount struct {
	Genre   string `yaml:"genre" json:"genre"`
	Ratings int    `yaml:"ratings" json:"ratings"`
}
