/*
PURPOSE:
  Defines the core data structures used throughout lcr-runner.
  These models represent measurement results read back from the QT-7600.

REQUIREMENTS:
  User-specified:
  - Record primary/secondary values, units, and the raw instrument reply.
  - Track the resource string and configuration used for the reading.

  Implementation-discovered:
  - Need JSON tags for the JSON-lines output.
  - Secondary value can be absent (one-field reply), so it must be a pointer.

ARCHITECTURE INTEGRATION:
  - Used by: internal/qt7600, internal/engine, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Use time.Time and time.Duration for high precision.

USAGE:
  m := model.Measurement{...}

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add field and update CSV/JSON writers.

RELATED FILES:
  - internal/output/csv.go
  - internal/output/json.go

MAINTENANCE:
  - Update when capturing new readings from the instrument.
*/

package model

import (
	"time"
)

// Measurement represents a single reading fetched from the LCR meter.
// It is produced fresh per measurement and never mutated afterwards.
type Measurement struct {
	Resource       string    `json:"resource,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	FrequencyHz    float64   `json:"frequency_hz,omitempty"`
	PrimaryParam   string    `json:"primary_param,omitempty"`
	SecondaryParam string    `json:"secondary_param,omitempty"`

	// Primary is the first numeric field of the FETC? reply.
	Primary float64 `json:"primary"`

	// Secondary is nil when the instrument returned a single field.
	Secondary *float64 `json:"secondary,omitempty"`

	// Units of the primary value. Either reported by the instrument
	// (tab-delimited reply) or derived from the primary parameter.
	Units string `json:"units,omitempty"`

	// Raw is the unparsed reply line, kept for post-processing.
	Raw string `json:"raw,omitempty"`

	// Duration is the client-side time for the trigger+fetch exchange.
	Duration time.Duration `json:"duration"`

	Error string `json:"error,omitempty"` // If the reading failed
}

// SecondaryValue returns the secondary reading and whether it was present.
func (m Measurement) SecondaryValue() (float64, bool) {
	if m.Secondary == nil {
		return 0, false
	}
	return *m.Secondary, true
}
