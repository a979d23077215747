package aggregate

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/ademuri/movie-stats/internal/dataset"
)

// Optional is a statistic that may be undefined, such as the sample standard
// deviation of a single value. An undefined value is never reported as zero.
type Optional struct {
	Value float64
	Valid bool
}

func Defined(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

func (o Optional) String() string {
	return o.Format(-1)
}

// Format renders the value with prec decimals (-1 for the shortest exact
// form). Undefined values render as "NaN".
func (o Optional) Format(prec int) string {
	if !o.Valid {
		return "NaN"
	}
	return strconv.FormatFloat(o.Value, 'f', prec, 64)
}

func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Optional) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = Optional{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Defined(v)
	return nil
}

func (o Optional) MarshalYAML() (interface{}, error) {
	if !o.Valid {
		return nil, nil
	}
	return o.Value, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// sampleStdDev uses n-1 degrees of freedom and is undefined below two values.
func sampleStdDev(values []float64) Optional {
	if len(values) < 2 {
		return Optional{}
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return Defined(math.Sqrt(sq / float64(len(values)-1)))
}

// Overall returns the mean and median of every user rating in ds. Both are
// undefined for an empty dataset.
func Overall(ds *dataset.Dataset) (meanRating, medianRating Optional) {
	ratings := make([]float64, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		ratings = append(ratings, ds.At(i).UserRating)
	}
	if len(ratings) == 0 {
		return Optional{}, Optional{}
	}
	return Defined(mean(ratings)), Defined(median(ratings))
}
