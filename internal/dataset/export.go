package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the dataset with a header row, comma-delimited.
func WriteCSV(w io.Writer, d *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := 0; i < d.Len(); i++ {
		if err := cw.Write(d.Row(i)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
