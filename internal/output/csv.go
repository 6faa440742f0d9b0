/*
PURPOSE:
  Writes measurement results to a CSV file.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Output to CSV.
  - Keep file handle open for flushing (long measurement runs must survive
    a killed process with the rows collected so far intact).

  Implementation-discovered:
  - Overwrite semantics: a new run starts a fresh file.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Measurement

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Use Mutex in case writes ever become concurrent.

USAGE:
  w, err := output.NewCSVWriter("measurements.csv")
  w.Write(m)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when Measurement struct changes.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/shar0486/ForLCRmeter/internal/model"
)

// CSVWriter handles writing measurements to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)

	// Write Header
	header := []string{
		"resource", "timestamp", "frequency_hz",
		"primary_param", "secondary_param",
		"primary", "secondary", "units",
		"duration_s", "raw", "error",
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single measurement to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(m model.Measurement) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	secondary := ""
	if v, ok := m.SecondaryValue(); ok {
		secondary = fmt.Sprintf("%g", v)
	}

	record := []string{
		m.Resource,
		m.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		fmt.Sprintf("%g", m.FrequencyHz),
		m.PrimaryParam,
		m.SecondaryParam,
		fmt.Sprintf("%g", m.Primary),
		secondary,
		m.Units,
		fmt.Sprintf("%.4f", m.Duration.Seconds()),
		m.Raw,
		m.Error,
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
