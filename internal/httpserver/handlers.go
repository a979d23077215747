package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ademuri/movie-stats/internal/aggregate"
	"github.com/ademuri/movie-stats/internal/analysis"
	"github.com/ademuri/movie-stats/internal/dataset"
	"github.com/ademuri/movie-stats/internal/filter"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type optionsResponse struct {
	StartYears []int     `json:"startYears"`
	EndYears   []int     `json:"endYears"`
	Ratings    []float64 `json:"ratings"`
	Genres     []string  `json:"genres"`
}

type moviesResponse struct {
	Metadata analysis.ReportMetadata  `json:"metadata"`
	Overview analysis.RatingOverview  `json:"overview"`
	Items    []aggregate.MovieSummary `json:"items"`
}

type genresResponse struct {
	Genres []string                  `json:"genres"`
	Years  []int                     `json:"years"`
	Cells  []aggregate.GenreYearCell `json:"cells"`
}

type sampleResponse struct {
	Fallback bool       `json:"fallback"`
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
}

// handleOptions lists the filter choices. Year choices cover the whole
// dataset; ratings are those given within the optional start and end years.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	spec, err := buildFilterSpec(s.ds, r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	ratings, err := filter.RatingOptions(s.ds, spec)
	if errors.Is(err, filter.ErrInvalidRange) {
		s.respondError(w, http.StatusBadRequest, "INVALID_RANGE", "Start year must be less than or equal to end year.")
		return
	}

	start, end := filter.YearOptions(s.ds)
	resp := optionsResponse{
		StartYears: nonNilInts(start),
		EndYears:   nonNilInts(end),
		Ratings:    ratings,
	}
	if resp.Ratings == nil {
		resp.Ratings = []float64{}
	}
	for _, g := range dataset.AllGenres() {
		resp.Genres = append(resp.Genres, g.String())
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMovies(w http.ResponseWriter, r *http.Request) {
	report, ok := s.run(w, r)
	if !ok {
		return
	}
	items := report.Movies
	if items == nil {
		items = []aggregate.MovieSummary{}
	}
	s.respondJSON(w, http.StatusOK, moviesResponse{
		Metadata: report.Metadata,
		Overview: report.Overview,
		Items:    items,
	})
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	report, ok := s.run(w, r)
	if !ok {
		return
	}
	resp := genresResponse{
		Genres: []string{},
		Years:  nonNilInts(report.GenreTable.Years()),
		Cells:  report.GenreYears,
	}
	for _, g := range report.GenreTable.Genres() {
		resp.Genres = append(resp.Genres, g.String())
	}
	if resp.Cells == nil {
		resp.Cells = []aggregate.GenreYearCell{}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	report, ok := s.run(w, r)
	if !ok {
		return
	}
	resp := sampleResponse{
		Fallback: report.Metadata.SampleIsFallback,
		Columns:  report.Sample.Header(),
		Rows:     [][]string{},
	}
	for i := 0; i < report.Sample.Len(); i++ {
		resp.Rows = append(resp.Rows, report.Sample.Row(i))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleExportData serves the full cleaned dataset. Filters do not apply.
func (s *Server) handleExportData(w http.ResponseWriter, r *http.Request) {
	s.respondCSV(w, "Data.csv", func(out io.Writer) error {
		return dataset.WriteCSV(out, s.ds)
	})
}

func (s *Server) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	report, ok := s.run(w, r)
	if !ok {
		return
	}
	s.respondCSV(w, "Movie_Statistical_Summary.csv", func(out io.Writer) error {
		return aggregate.WriteSummaryCSV(out, report.Movies)
	})
}

func (s *Server) handleExportGenres(w http.ResponseWriter, r *http.Request) {
	report, ok := s.run(w, r)
	if !ok {
		return
	}
	s.respondCSV(w, "Genre_Year_Summary.csv", func(out io.Writer) error {
		return aggregate.WriteGenreYearCSV(out, report.GenreTable)
	})
}

// run parses the filter parameters and runs the pipeline, writing an error
// response and returning false when the request cannot be served.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (*analysis.Report, bool) {
	spec, err := buildFilterSpec(s.ds, r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return nil, false
	}
	report, err := analysis.Run(s.ds, spec, analysis.Options{SampleSize: s.cfg.SampleSize})
	switch {
	case errors.Is(err, filter.ErrInvalidRange):
		s.respondError(w, http.StatusBadRequest, "INVALID_RANGE", "Start year must be less than or equal to end year.")
		return nil, false
	case errors.Is(err, dataset.ErrUnknownGenre):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return nil, false
	case err != nil:
		s.logger.Printf("running pipeline: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute statistics")
		return nil, false
	}
	return report, true
}

// buildFilterSpec reads start, end, rating and genre from the query. Missing
// years default to the bounds of ds. rating and genre may repeat, and each
// value may hold a comma-separated list.
func buildFilterSpec(ds *dataset.Dataset, query url.Values) (filter.Spec, error) {
	spec := filter.FullRange(ds)

	if val := strings.TrimSpace(query.Get("start")); val != "" {
		year, err := strconv.Atoi(val)
		if err != nil {
			return spec, fmt.Errorf("invalid start value")
		}
		spec.StartYear = year
	}
	if val := strings.TrimSpace(query.Get("end")); val != "" {
		year, err := strconv.Atoi(val)
		if err != nil {
			return spec, fmt.Errorf("invalid end value")
		}
		spec.EndYear = year
	}
	for _, val := range splitValues(query["rating"]) {
		rating, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return spec, fmt.Errorf("invalid rating value %q", val)
		}
		spec.Ratings = append(spec.Ratings, rating)
	}
	genres, err := dataset.ParseGenres(splitValues(query["genre"]))
	if err != nil {
		return spec, err
	}
	spec.Genres = genres
	return spec, nil
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// respondCSV renders into a buffer first so a failure can still produce an
// error status.
func (s *Server) respondCSV(w http.ResponseWriter, filename string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		s.logger.Printf("writing %s: %v", filename, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render CSV")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
