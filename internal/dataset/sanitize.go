package dataset

import "math"

// Sanitize drops records without a release year, truncates the year to an
// integer and then drops records whose year is not positive. The raw dataset
// is not modified. An empty result is valid.
func Sanitize(raw *RawDataset) *Dataset {
	if raw == nil {
		return &Dataset{}
	}

	out := &Dataset{extra: append([]string(nil), raw.ExtraColumns...)}
	for _, r := range raw.Records {
		if !r.HasYear {
			continue
		}
		// Values beyond int32 are not years and would not survive the cast.
		if math.Abs(r.Year) >= math.MaxInt32 {
			continue
		}
		year := int(r.Year)
		if year <= 0 {
			continue
		}
		out.records = append(out.records, Record{
			Title:      r.Title,
			Year:       year,
			UserRating: r.UserRating,
			AvgRating:  r.AvgRating,
			Genres:     r.Genres,
			Extra:      r.Extra,
		})
	}
	return out
}
