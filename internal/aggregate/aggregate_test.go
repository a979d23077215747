package aggregate

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/ademuri/movie-stats/internal/dataset"
)

const epsilon = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func rec(title string, year int, rating float64, genres ...dataset.Genre) dataset.Record {
	return dataset.Record{Title: title, Year: year, UserRating: rating, AvgRating: rating, Genres: dataset.NewGenreSet(genres...)}
}

func TestSummarizeTwoRatings(t *testing.T) {
	ds := dataset.New(nil, []dataset.Record{
		{Title: "A", Year: 2000, UserRating: 4.0, AvgRating: 3.5, Genres: dataset.NewGenreSet(dataset.Comedy)},
		{Title: "A", Year: 2000, UserRating: 5.0, AvgRating: 3.5, Genres: dataset.NewGenreSet(dataset.Comedy)},
	})

	rows := Summarize(ds)
	if len(rows) != 1 {
		t.Fatalf("Summarize() returned %d rows, want 1", len(rows))
	}
	got := rows[0]
	if got.Title != "A" || got.Year != 2000 || got.Count != 2 {
		t.Errorf("row = %+v", got)
	}
	if !approx(got.Mean, 4.5) || !approx(got.Median, 4.5) {
		t.Errorf("mean/median = %v/%v, want 4.5/4.5", got.Mean, got.Median)
	}
	if !got.StdDev.Valid || !approx(got.StdDev.Value, 1/math.Sqrt2) {
		t.Errorf("std dev = %+v, want %v", got.StdDev, 1/math.Sqrt2)
	}
	if !approx(got.AvgRating, 3.5) {
		t.Errorf("avg rating = %v, want 3.5", got.AvgRating)
	}
}

func TestSummarizeSingleRecordHasUndefinedStdDev(t *testing.T) {
	rows := Summarize(dataset.New(nil, []dataset.Record{rec("B", 2010, 3.0)}))
	if len(rows) != 1 {
		t.Fatalf("Summarize() returned %d rows, want 1", len(rows))
	}
	if rows[0].Count != 1 || rows[0].Mean != 3.0 || rows[0].Median != 3.0 {
		t.Errorf("row = %+v", rows[0])
	}
	if rows[0].StdDev.Valid {
		t.Errorf("std dev = %v, want undefined", rows[0].StdDev.Value)
	}
	if got := rows[0].StdDev.String(); got != "NaN" {
		t.Errorf("StdDev.String() = %q, want NaN", got)
	}
}

func TestSummarizeOrdering(t *testing.T) {
	ds := dataset.New(nil, []dataset.Record{
		rec("Zed", 1990, 1),
		rec("Alpha", 2001, 2),
		rec("Mid", 1980, 3),
		rec("Mid", 1980, 4),
		rec("Alpha", 2000, 5),
		rec("Mid", 1980, 1),
		rec("Zed", 1990, 2),
	})

	rows := Summarize(ds)
	want := []struct {
		title string
		year  int
		count int
	}{
		{"Mid", 1980, 3},
		{"Zed", 1990, 2},
		{"Alpha", 2000, 1},
		{"Alpha", 2001, 1},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, w := range want {
		if rows[i].Title != w.title || rows[i].Year != w.year || rows[i].Count != w.count {
			t.Errorf("rows[%d] = %s/%d/%d, want %s/%d/%d", i, rows[i].Title, rows[i].Year, rows[i].Count, w.title, w.year, w.count)
		}
	}
	if got := TotalCount(rows); got != ds.Len() {
		t.Errorf("TotalCount() = %d, want %d", got, ds.Len())
	}
	if !approx(rows[0].Median, 3) {
		t.Errorf("median of 3,4,1 = %v, want 3", rows[0].Median)
	}
}

func TestSummarizeSameTitleDifferentYears(t *testing.T) {
	rows := Summarize(dataset.New(nil, []dataset.Record{
		rec("Hamlet", 1948, 4),
		rec("Hamlet", 1996, 3),
	}))
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want one per (title, year)", len(rows))
	}
	if rows[0].Year != 1948 || rows[1].Year != 1996 {
		t.Errorf("years = %d, %d", rows[0].Year, rows[1].Year)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if rows := Summarize(dataset.New(nil, nil)); len(rows) != 0 {
		t.Errorf("Summarize(empty) = %v", rows)
	}
}

func TestGenreYears(t *testing.T) {
	ds := dataset.New(nil, []dataset.Record{
		rec("A", 2000, 4.0, dataset.Comedy),
		rec("A", 2000, 5.0, dataset.Comedy),
		rec("B", 2000, 2.0, dataset.Action, dataset.Comedy),
		rec("C", 2001, 3.0, dataset.Action),
		rec("D", 2002, 1.0),
	})

	table := GenreYears(ds, nil)
	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 cells: %+v", table.Len(), table.Cells())
	}
	if m, ok := table.Mean(dataset.Comedy, 2000); !ok || !approx(m, 11.0/3) {
		t.Errorf("Comedy/2000 = %v, %v; want %v", m, ok, 11.0/3)
	}
	if m, ok := table.Mean(dataset.Action, 2000); !ok || !approx(m, 2) {
		t.Errorf("Action/2000 = %v, %v; want 2", m, ok)
	}
	if m, ok := table.Mean(dataset.Action, 2001); !ok || !approx(m, 3) {
		t.Errorf("Action/2001 = %v, %v; want 3", m, ok)
	}
	if _, ok := table.Mean(dataset.Comedy, 2001); ok {
		t.Errorf("Comedy/2001 should be absent")
	}

	genres := table.Genres()
	if len(genres) != 2 || genres[0] != dataset.Action || genres[1] != dataset.Comedy {
		t.Errorf("Genres() = %v", genres)
	}
	years := table.Years()
	if len(years) != 2 || years[0] != 2000 || years[1] != 2001 {
		t.Errorf("Years() = %v, want [2000 2001]", years)
	}
}

func TestGenreYearsRestricted(t *testing.T) {
	ds := dataset.New(nil, []dataset.Record{
		rec("B", 2000, 2.0, dataset.Action, dataset.Comedy),
		rec("C", 2001, 3.0, dataset.Drama),
	})

	table := GenreYears(ds, []dataset.Genre{dataset.Comedy})
	cells := table.Cells()
	if len(cells) != 1 || cells[0].Genre != dataset.Comedy || cells[0].Year != 2000 || cells[0].Label != "Comedy" {
		t.Errorf("Cells() = %+v", cells)
	}
}

func TestGenreYearsLabelOrder(t *testing.T) {
	ds := dataset.New(nil, []dataset.Record{
		rec("A", 2000, 2, dataset.Western, dataset.FilmNoir, dataset.Fantasy, dataset.NoGenresListed),
	})
	genres := GenreYears(ds, nil).Genres()
	want := []dataset.Genre{dataset.NoGenresListed, dataset.Fantasy, dataset.FilmNoir, dataset.Western}
	if len(genres) != len(want) {
		t.Fatalf("Genres() = %v", genres)
	}
	for i := range want {
		if genres[i] != want[i] {
			t.Errorf("Genres()[%d] = %v, want %v", i, genres[i], want[i])
		}
	}
}

func TestGenreYearsEmpty(t *testing.T) {
	table := GenreYears(dataset.New(nil, nil), nil)
	if table.Len() != 0 || len(table.Genres()) != 0 || len(table.Years()) != 0 {
		t.Errorf("GenreYears(empty) not empty")
	}
	rows := PivotRows(table, 2, "")
	if len(rows) != 1 || rows[0][0] != "Genre" {
		t.Errorf("PivotRows(empty) = %v", rows)
	}
}

func TestWriteSummaryCSV(t *testing.T) {
	rows := Summarize(dataset.New(nil, []dataset.Record{
		rec("A", 2000, 4),
		rec("A", 2000, 5),
		rec("B", 2010, 3),
	}))

	var out bytes.Buffer
	if err := WriteSummaryCSV(&out, rows); err != nil {
		t.Fatalf("WriteSummaryCSV() error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out.String())
	}
	if lines[0] != strings.Join(SummaryHeader, ",") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "A,2000,2,4.5,4.5,0.7071") {
		t.Errorf("first row = %q", lines[1])
	}
	if lines[2] != "B,2010,1,3,3,,3" {
		t.Errorf("single record row = %q, want empty std dev cell", lines[2])
	}
}

func TestWriteGenreYearCSV(t *testing.T) {
	table := GenreYears(dataset.New(nil, []dataset.Record{
		rec("A", 2000, 4, dataset.Comedy),
		rec("B", 2001, 2, dataset.Action),
	}), nil)

	var out bytes.Buffer
	if err := WriteGenreYearCSV(&out, table); err != nil {
		t.Fatalf("WriteGenreYearCSV() error: %v", err)
	}
	want := "Genre,2000,2001\nAction,,2\nComedy,4,\n"
	if out.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestOptionalJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Optional `json:"a"`
		B Optional `json:"b"`
	}{Defined(1.5), Optional{}})
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}
	if string(b) != `{"a":1.5,"b":null}` {
		t.Errorf("json = %s", b)
	}
}

func TestOverall(t *testing.T) {
	m, med := Overall(dataset.New(nil, []dataset.Record{
		rec("A", 2000, 4, dataset.Comedy),
		rec("A", 2000, 4, dataset.Comedy),
		rec("B", 2001, 1, dataset.Action),
	}))
	if !m.Valid || !approx(m.Value, 3) {
		t.Errorf("mean = %v, want 3", m)
	}
	if !med.Valid || med.Value != 4 {
		t.Errorf("median = %v, want 4", med)
	}

	m, med = Overall(dataset.New(nil, nil))
	if m.Valid || med.Valid {
		t.Errorf("Overall(empty) = %v, %v, want undefined", m, med)
	}
}

func TestGenreCounts(t *testing.T) {
	got := GenreCounts(dataset.New(nil, []dataset.Record{
		rec("A", 2000, 4, dataset.Comedy, dataset.Drama),
		rec("B", 2001, 2, dataset.Drama),
		rec("C", 2001, 2, dataset.Action),
	}))
	want := []GenreTotal{{dataset.Drama, 2}, {dataset.Action, 1}, {dataset.Comedy, 1}}
	if len(got) != len(want) {
		t.Fatalf("GenreCounts() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GenreCounts()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
