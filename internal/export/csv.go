// Package export renders progress reports as CSV and publishes them to a blob
// store.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"

	"nutritrack/pkg/domain"
)

// ErrNoReports is returned when there is nothing to export.
var ErrNoReports = errors.New("export: no reports")

var csvHeader = []string{"fecha", "peso", "imc", "calorias"}

// ReportsCSV renders reports in the given order with a header row. Lines end in
// \n and the last line has no terminator.
func ReportsCSV(reports []domain.Report) ([]byte, error) {
	if len(reports) == 0 {
		return nil, ErrNoReports
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range reports {
		row := []string{r.Date, formatNumber(r.Weight), formatNumber(r.BMI), strconv.Itoa(r.Calories)}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// formatNumber prints the shortest decimal that round-trips, so 68.0 is "68".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
