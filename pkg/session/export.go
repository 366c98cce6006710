package session

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// ExportFilenameLayout is the timestamp portion of the export filename.
const ExportFilenameLayout = "20060102_1504"

// csvHeader matches the column names of the original export format.
var csvHeader = []string{"timestamp", "personas", "densidad_pers_m2"}

// ExportFilename returns the download filename for an export taken at t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("conteo_personas_densidad_%s.csv", t.Format(ExportFilenameLayout))
}

// WriteCSV writes the full sample sequence as CSV.
// One row per sample, plus a header row.
func (s *Session) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, sample := range s.Samples() {
		row := []string{
			sample.Timestamp(),
			fmt.Sprintf("%d", sample.Count),
			fmt.Sprintf("%.4f", sample.Density),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
