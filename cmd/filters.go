/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ademuri/movie-stats/internal/dataset"
	"github.com/ademuri/movie-stats/internal/filter"
)

// filterFlags holds the rating and genre selections of one command.
type filterFlags struct {
	ratings []float64
	genres  []string
}

func addFilterFlags(cmd *cobra.Command, ff *filterFlags) {
	cmd.Flags().Float64SliceVarP(&ff.ratings, "rating", "r", nil, "Only include these user ratings (repeatable)")
	cmd.Flags().StringSliceVarP(&ff.genres, "genre", "g", nil, "Only include movies with any of these genres (repeatable)")
}

// spec builds a filter from the positional year arguments and the flags.
func (ff filterFlags) spec(ds *dataset.Dataset, args []string) (filter.Spec, error) {
	spec, err := parseYearRangeFromArgs(ds, args)
	if err != nil {
		return spec, err
	}
	spec.Ratings = append([]float64(nil), ff.ratings...)
	spec.Genres, err = dataset.ParseGenres(ff.genres)
	if err != nil {
		return spec, err
	}
	return spec, nil
}

// parseYearRangeFromArgs reads [start] [end]. No arguments select every year
// of ds and a single argument selects that year only.
func parseYearRangeFromArgs(ds *dataset.Dataset, args []string) (spec filter.Spec, err error) {
	switch len(args) {
	case 0:
		spec = filter.FullRange(ds)

	case 1:
		spec.StartYear, err = parseYear(args[0])
		spec.EndYear = spec.StartYear

	case 2:
		if spec.StartYear, err = parseYear(args[0]); err != nil {
			return
		}
		spec.EndYear, err = parseYear(args[1])

	default:
		err = fmt.Errorf("Expected at most two year arguments")
	}
	return
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("Invalid year: %q", s)
	}
	return year, nil
}
