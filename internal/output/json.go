/*
PURPOSE:
  Writes measurement results to a JSON Lines file (NDJSON).
  Optimized for machine parsing (jq, plotting scripts).

REQUIREMENTS:
  User-specified:
  - JSON output for easier parsing.

  Implementation-discovered:
  - JSON Lines is better for streaming/logging than a single large array
    (append-friendly).

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Measurement

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.
  - One object per line.

USAGE:
  w, err := output.NewJSONWriter("measurements.json")
  w.Write(m)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If field names change, downstream jq filters must be updated too.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - None beyond struct changes.
*/

package output

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/shar0486/ForLCRmeter/internal/model"
)

// JSONWriter handles writing measurements to a JSON Lines file.
type JSONWriter struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter creates a new JSONWriter.
func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &JSONWriter{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Write writes a single measurement as a JSON line.
func (jw *JSONWriter) Write(m model.Measurement) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(m)
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	return jw.file.Close()
}
