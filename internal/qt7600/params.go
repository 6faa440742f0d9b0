/*
PURPOSE:
  Enumerations for the QT-7600 configuration commands: measurement
  parameters (with their display units), bias modes and accuracy levels.

REQUIREMENTS:
  User-specified:
  - Parameter codes must match the instrument's SCPI tokens verbatim.
  - Units for a reading are a fixed lookup keyed by the primary parameter.

  Implementation-discovered:
  - The secondary parameter additionally accepts "N" (none).

ARCHITECTURE INTEGRATION:
  - Used by: internal/qt7600 facade, internal/cli flag validation.

ERROR HANDLING:
  - Valid()/ParseParameter reject unknown tokens before anything is sent.

IMPLEMENTATION RULES:
  - String-typed enums; the token IS the wire representation.

USAGE:
  p, err := qt7600.ParseParameter("CS")
  p.Units() // "F"

SELF-HEALING INSTRUCTIONS:
  - New firmware parameters: add the constant and its units entry.

RELATED FILES:
  - internal/qt7600/qt7600.go

MAINTENANCE:
  - Keep the units table in sync with the QT-7600 manual.
*/

package qt7600

import (
	"fmt"
	"strings"
)

// Parameter is a QT-7600 measurement parameter code, sent verbatim in
// CONF:PPAR / CONF:SPAR commands.
type Parameter string

const (
	ParamRS  Parameter = "RS"  // series resistance
	ParamRP  Parameter = "RP"  // parallel resistance
	ParamLS  Parameter = "LS"  // series inductance
	ParamLP  Parameter = "LP"  // parallel inductance
	ParamCS  Parameter = "CS"  // series capacitance
	ParamCP  Parameter = "CP"  // parallel capacitance
	ParamDF  Parameter = "DF"  // dissipation factor
	ParamQ   Parameter = "Q"   // quality factor
	ParamZ   Parameter = "Z"   // impedance
	ParamY   Parameter = "Y"   // admittance
	ParamP   Parameter = "P"   // phase angle
	ParamESR Parameter = "ESR" // equivalent series resistance
	ParamGP  Parameter = "GP"  // parallel conductance
	ParamXS  Parameter = "XS"  // series reactance
	ParamBP  Parameter = "BP"  // parallel susceptance

	// ParamNone disables the secondary display. Valid only as a
	// secondary parameter.
	ParamNone Parameter = "N"
)

// paramUnits maps each parameter to the units of its reading.
// DF and Q are dimensionless.
var paramUnits = map[Parameter]string{
	ParamRS:  "Ohm",
	ParamRP:  "Ohm",
	ParamLS:  "H",
	ParamLP:  "H",
	ParamCS:  "F",
	ParamCP:  "F",
	ParamDF:  "",
	ParamQ:   "",
	ParamZ:   "Ohm",
	ParamY:   "S",
	ParamP:   "deg",
	ParamESR: "Ohm",
	ParamGP:  "S",
	ParamXS:  "Ohm",
	ParamBP:  "S",
}

// Valid reports whether p is a measurable parameter code.
// ParamNone is not measurable and reports false.
func (p Parameter) Valid() bool {
	_, ok := paramUnits[p]
	return ok
}

// Units returns the display units for readings of this parameter,
// or "" for dimensionless parameters.
func (p Parameter) Units() string {
	return paramUnits[p]
}

func (p Parameter) String() string { return string(p) }

// ParseParameter converts a user-supplied token into a Parameter.
func ParseParameter(s string) (Parameter, error) {
	p := Parameter(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown measurement parameter %q", s)
	}
	return p, nil
}

// Bias is a DC bias source mode for the CONF:BIAS command.
type Bias string

const (
	BiasOff      Bias = "OFF"
	BiasInternal Bias = "INT"
	BiasExternal Bias = "EXT"
)

// Valid reports whether b is an accepted bias mode.
func (b Bias) Valid() bool {
	switch b {
	case BiasOff, BiasInternal, BiasExternal:
		return true
	}
	return false
}

// ParseBias converts a user-supplied token into a Bias mode.
func ParseBias(s string) (Bias, error) {
	b := Bias(strings.ToUpper(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", fmt.Errorf("bias must be OFF, INT or EXT, got %q", s)
	}
	return b, nil
}

// Accuracy is a measurement accuracy/speed level for CONF:SPEED.
type Accuracy string

const (
	AccuracyFast   Accuracy = "FAST"
	AccuracyMedium Accuracy = "MEDIUM"
	AccuracySlow   Accuracy = "SLOW"
)

// Valid reports whether a is an accepted accuracy level.
func (a Accuracy) Valid() bool {
	switch a {
	case AccuracyFast, AccuracyMedium, AccuracySlow:
		return true
	}
	return false
}

// ParseAccuracy converts a user-supplied token into an Accuracy level.
func ParseAccuracy(s string) (Accuracy, error) {
	a := Accuracy(strings.ToUpper(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("accuracy must be FAST, MEDIUM or SLOW, got %q", s)
	}
	return a, nil
}
