package aggregate

import (
	"sort"

	"github.com/ademuri/movie-stats/internal/dataset"
)

// GenreYearCell is the mean user rating of one genre in one release year.
type GenreYearCell struct {
	Genre dataset.Genre `yaml:"-" json:"-"`
	Label string        `yaml:"genre" json:"genre"`
	Year  int           `yaml:"year" json:"year"`
	Mean  float64       `yaml:"mean_user_rating" json:"meanUserRating"`
	Count int           `yaml:"ratings" json:"ratings"`
}

type genreYear struct {
	genre dataset.Genre
	year  int
}

// GenreYearTable is a sparse genre x year pivot. Cells without contributing
// records are absent.
type GenreYearTable struct {
	cells  map[genreYear]GenreYearCell
	genres []dataset.Genre
	years  []int
}

// GenreYears reshapes every record into one (year, rating, genre) tuple per
// selected genre whose flag is set, and averages the ratings per genre and
// year. With no genres selected all genres are used. A record carrying several
// selected genres contributes to each of them.
func GenreYears(ds *dataset.Dataset, genres []dataset.Genre) *GenreYearTable {
	if len(genres) == 0 {
		genres = dataset.AllGenres()
	}

	type acc struct {
		sum   float64
		count int
	}
	sums := make(map[genreYear]*acc)
	for i := 0; i < ds.Len(); i++ {
		rec := ds.At(i)
		for _, g := range genres {
			if !rec.Genres.Has(g) {
				continue
			}
			k := genreYear{g, rec.Year}
			a, ok := sums[k]
			if !ok {
				a = &acc{}
				sums[k] = a
			}
			a.sum += rec.UserRating
			a.count++
		}
	}

	t := &GenreYearTable{cells: make(map[genreYear]GenreYearCell, len(sums))}
	seenGenre := make(map[dataset.Genre]bool)
	seenYear := make(map[int]bool)
	for k, a := range sums {
		t.cells[k] = GenreYearCell{
			Genre: k.genre,
			Label: k.genre.String(),
			Year:  k.year,
			Mean:  a.sum / float64(a.count),
			Count: a.count,
		}
		if !seenGenre[k.genre] {
			seenGenre[k.genre] = true
			t.genres = append(t.genres, k.genre)
		}
		if !seenYear[k.year] {
			seenYear[k.year] = true
			t.years = append(t.years, k.year)
		}
	}
	sort.Slice(t.genres, func(i, j int) bool {
		return t.genres[i].String() < t.genres[j].String()
	})
	sort.Ints(t.years)
	return t
}

// Genres returns the rows that hold at least one cell, sorted by label.
func (t *GenreYearTable) Genres() []dataset.Genre {
	return append([]dataset.Genre(nil), t.genres...)
}

// Years returns the columns that hold at least one cell, ascending.
func (t *GenreYearTable) Years() []int {
	return append([]int(nil), t.years...)
}

func (t *GenreYearTable) Mean(g dataset.Genre, year int) (float64, bool) {
	c, ok := t.cells[genreYear{g, year}]
	return c.Mean, ok
}

func (t *GenreYearTable) Len() int {
	return len(t.cells)
}

// Cells returns the table in long format, ordered by genre row then year.
func (t *GenreYearTable) Cells() []GenreYearCell {
	out := make([]GenreYearCell, 0, len(t.cells))
	for _, g := range t.genres {
		for _, y := range t.years {
			if c, ok := t.cells[genreYear{g, y}]; ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// GenreCounts returns the number of ratings carrying each genre, for genres
// with at least one rating. Larger counts come first, ties in label order.
func GenreCounts(ds *dataset.Dataset) []GenreTotal {
	counts := make([]int, dataset.GenreCount)
	for i := 0; i < ds.Len(); i++ {
		for _, g := range ds.At(i).Genres.Genres() {
			counts[g]++
		}
	}
	var out []GenreTotal
	for _, g := range dataset.AllGenres() {
		if counts[g] > 0 {
			out = append(out, GenreTotal{Genre: g, Count: counts[g]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Genre.String() < out[j].Genre.String()
	})
	return out
}

type GenreTotal struct {
	Genre dataset.Genre
	Count int
}
