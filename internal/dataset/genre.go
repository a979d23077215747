package dataset

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

var ErrUnknownGenre = errors.New("unknown genre")

// Genre is one of the fixed genre indicator columns of the ratings file.
type Genre int

const (
	NoGenresListed Genre = iota
	Action
	Adventure
	Animation
	Children
	Comedy
	Crime
	Documentary
	Drama
	Fantasy
	FilmNoir
	Horror
	IMAX
	Musical
	Mystery
	Romance
	SciFi
	Thriller
	War
	Western

	GenreCount = int(Western) + 1
)

// Column labels, in the order the columns appear in the source file.
var genreLabels = [GenreCount]string{
	"(no genres listed)",
	"Action",
	"Adventure",
	"Animation",
	"Children",
	"Comedy",
	"Crime",
	"Documentary",
	"Drama",
	"Fantasy",
	"Film-Noir",
	"Horror",
	"IMAX",
	"Musical",
	"Mystery",
	"Romance",
	"Sci-Fi",
	"Thriller",
	"War",
	"Western",
}

// AllGenres returns every genre in column order.
func AllGenres() []Genre {
	genres := make([]Genre, GenreCount)
	for i := range genres {
		genres[i] = Genre(i)
	}
	return genres
}

func (g Genre) String() string {
	if !g.Valid() {
		return fmt.Sprintf("Genre(%d)", int(g))
	}
	return genreLabels[g]
}

func (g Genre) Valid() bool {
	return g >= 0 && int(g) < GenreCount
}

// ParseGenre resolves a column label, ignoring case.
func ParseGenre(name string) (Genre, error) {
	name = strings.TrimSpace(name)
	for i, label := range genreLabels {
		if strings.EqualFold(label, name) {
			return Genre(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGenre, name)
}

// ParseGenres resolves a list of labels, dropping duplicates.
func ParseGenres(names []string) ([]Genre, error) {
	var set GenreSet
	genres := make([]Genre, 0, len(names))
	for _, name := range names {
		g, err := ParseGenre(name)
		if err != nil {
			return nil, err
		}
		if set.Has(g) {
			continue
		}
		set = set.With(g)
		genres = append(genres, g)
	}
	return genres, nil
}

// GenreSet holds the genre flags of one record. Flags are independent.
type GenreSet uint32

func NewGenreSet(genres ...Genre) GenreSet {
	var s GenreSet
	for _, g := range genres {
		s = s.With(g)
	}
	return s
}

func (s GenreSet) Has(g Genre) bool {
	return g.Valid() && s&(1<<uint(g)) != 0
}

func (s GenreSet) With(g Genre) GenreSet {
	if !g.Valid() {
		return s
	}
	return s | 1<<uint(g)
}

// Any reports whether at least one of the given genres is set.
func (s GenreSet) Any(genres []Genre) bool {
	return s&NewGenreSet(genres...) != 0
}

func (s GenreSet) Len() int {
	return bits.OnesCount32(uint32(s))
}

// Genres lists the set flags in column order.
func (s GenreSet) Genres() []Genre {
	var genres []Genre
	for i := 0; i < GenreCount; i++ {
		if s.Has(Genre(i)) {
			genres = append(genres, Genre(i))
		}
	}
	return genres
}

func (s GenreSet) String() string {
	labels := make([]string, 0, s.Len())
	for _, g := range s.Genres() {
		labels = append(labels, g.String())
	}
	return strings.Join(labels, "|")
}
