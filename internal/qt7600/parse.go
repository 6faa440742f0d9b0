/*
PURPOSE:
  Parses FETC? reply lines into Measurement values.

REQUIREMENTS:
  User-specified:
  - Comma-format replies: first field primary, second (if present)
    secondary, units from the primary-parameter lookup. A missing
    second field is NOT an error.
  - Tab-format replies (the instrument's verbose mode) carry parameter
    names and units inline:
      <name> \t <value> \t <units> \t <name> \t <value> \t <units>

  Implementation-discovered:
  - The verbose format is detected by the presence of a tab character.
  - A secondary field that fails to parse in the verbose format is
    reported absent, matching the instrument's occasional "----"
    placeholder for an invalid secondary reading.

ARCHITECTURE INTEGRATION:
  - Called by: Instrument.Measure

ERROR HANDLING:
  - Empty or un-parsable primary fields are *ProtocolError.

IMPLEMENTATION RULES:
  - Never guess a delimiter beyond tab-then-comma.

USAGE:
  m, err := parseFetch("1.23E-6,0.015", ParamCS)

SELF-HEALING INSTRUCTIONS:
  - A new firmware reply shape needs a new branch here, nothing else.

RELATED FILES:
  - internal/qt7600/qt7600.go

MAINTENANCE:
  - Keep in sync with the FETC? section of the manual.
*/

package qt7600

import (
	"strconv"
	"strings"

	"github.com/shar0486/ForLCRmeter/internal/model"
)

// parseFetch parses a FETC? reply. primary supplies the units for the
// comma format, which carries bare numbers.
func parseFetch(raw string, primary Parameter) (model.Measurement, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Measurement{}, &ProtocolError{Command: "FETC?", Reply: raw, Reason: "empty reply"}
	}

	if strings.Contains(raw, "\t") {
		return parseVerboseFetch(raw)
	}
	return parseNumericFetch(raw, primary)
}

// parseNumericFetch handles the delimiter-separated bare-number format:
// "<primary>[,<secondary>]".
func parseNumericFetch(raw string, primary Parameter) (model.Measurement, error) {
	fields := strings.Split(raw, ",")

	p, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return model.Measurement{}, &ProtocolError{
			Command: "FETC?", Reply: raw, Reason: "primary field is not a number"}
	}

	m := model.Measurement{
		Primary: p,
		Units:   primary.Units(),
		Raw:     raw,
	}

	if len(fields) >= 2 {
		s, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return model.Measurement{}, &ProtocolError{
				Command: "FETC?", Reply: raw, Reason: "secondary field is not a number"}
		}
		m.Secondary = &s
	}
	return m, nil
}

// parseVerboseFetch handles the tab-delimited verbose format with
// inline parameter names and units.
func parseVerboseFetch(raw string) (model.Measurement, error) {
	parts := strings.Split(raw, "\t")
	if len(parts) < 3 {
		return model.Measurement{}, &ProtocolError{
			Command: "FETC?", Reply: raw, Reason: "verbose reply needs at least name, value, units"}
	}

	p, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return model.Measurement{}, &ProtocolError{
			Command: "FETC?", Reply: raw, Reason: "primary field is not a number"}
	}

	m := model.Measurement{
		PrimaryParam: strings.TrimSpace(parts[0]),
		Primary:      p,
		Units:        strings.TrimSpace(parts[2]),
		Raw:          raw,
	}

	if len(parts) >= 5 {
		m.SecondaryParam = strings.TrimSpace(parts[3])
		// Invalid secondary readings show a placeholder; report absent.
		if s, err := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64); err == nil {
			m.Secondary = &s
		}
	}
	return m, nil
}
