/*
PURPOSE:
  Command facade for the QuadTech QT-7600 LCR meter.
  Each method formats one SCPI ASCII command, sends it over the injected
  transport, and (for queries) parses the single-line reply.

REQUIREMENTS:
  User-specified:
  - Command tokens must match the QT-7600 SCPI command set verbatim.
  - No client-side validation of instrument limits: raw values are
    forwarded and the instrument reports its own errors. The only local
    checks are enum-token checks that the original driver also made.
  - No retries. One failed exchange is reported immediately.

  Implementation-discovered:
  - The last commanded primary parameter must be remembered client-side:
    the comma-format FETC? reply carries no units, so they come from a
    fixed per-parameter lookup.
  - Trigger (MEAS:) does not block for settling; the instrument's own
    configured delay governs that.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/cli
  - Uses: internal/visa (Transport), internal/model (Measurement)
  - Dependencies: github.com/pkg/errors for context wrapping.

ERROR HANDLING:
  - Transport failures propagate as *visa.TransportError; malformed
    replies as *ProtocolError. pkg/errors.Wrap adds the operation
    context without hiding the typed error from errors.As.
  - Any command on a closed instrument fails with visa.ErrNotOpen.

IMPLEMENTATION RULES:
  - Two-state lifecycle: Closed -> Open -> Closed. Close is idempotent.
  - Not safe for concurrent use; callers serialize access.

USAGE:
  inst := qt7600.New("TCPIP::192.168.1.5::5555::SOCKET", visa.Options{})
  if err := inst.Open(); err != nil { ... }
  defer inst.Close()
  m, err := inst.Measure()

SELF-HEALING INSTRUCTIONS:
  - Unknown-command errors from the instrument: check the token against
    the QT-7600 IEEE-488 manual before touching this file.

RELATED FILES:
  - internal/qt7600/params.go
  - internal/qt7600/parse.go
  - internal/visa/visa.go

MAINTENANCE:
  - New commands follow the one-method-one-command pattern.
*/

package qt7600

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shar0486/ForLCRmeter/internal/model"
	"github.com/shar0486/ForLCRmeter/internal/visa"
)

// Instrument drives a QT-7600 LCR meter over a VISA-style transport.
// The zero value is not usable; construct with New.
type Instrument struct {
	resource string
	opts     visa.Options
	tr       visa.Transport

	// primary is the last commanded primary parameter. It exists only
	// to resolve units for comma-format FETC? replies; the instrument
	// remains the source of truth for all settings.
	primary Parameter
}

// New returns an unopened Instrument for the given resource string.
func New(resource string, opts visa.Options) *Instrument {
	return &Instrument{resource: resource, opts: opts}
}

// Open dials the resource string and binds the session.
func (i *Instrument) Open() error {
	if i.tr != nil {
		return errors.New("qt7600: already open")
	}
	tr, err := visa.Dial(i.resource, i.opts)
	if err != nil {
		return err
	}
	i.tr = tr
	return nil
}

// OpenWith binds an already-constructed transport instead of dialing.
// Used by tests and by callers that manage the connection themselves.
func (i *Instrument) OpenWith(tr visa.Transport) {
	i.tr = tr
}

// Close releases the session. Calling Close on a closed instrument is
// a no-op.
func (i *Instrument) Close() error {
	if i.tr == nil {
		return nil
	}
	tr := i.tr
	i.tr = nil
	return tr.Close()
}

// Resource returns the resource string the instrument was created with.
func (i *Instrument) Resource() string { return i.resource }

func (i *Instrument) write(cmd string) error {
	if i.tr == nil {
		return &visa.TransportError{Op: "write", Resource: i.resource, Err: visa.ErrNotOpen}
	}
	return i.tr.Write(cmd)
}

func (i *Instrument) query(cmd string) (string, error) {
	if i.tr == nil {
		return "", &visa.TransportError{Op: "query", Resource: i.resource, Err: visa.ErrNotOpen}
	}
	reply, err := i.tr.Query(cmd)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// ---------- IEEE 488.2 common commands ----------

// Identify returns the *IDN? reply verbatim,
// e.g. "QuadTech,7600modelb,<serial>,<version>".
func (i *Instrument) Identify() (string, error) {
	idn, err := i.query("*IDN?")
	return idn, errors.Wrap(err, "identify failed")
}

// Reset restores the instrument to its default state.
func (i *Instrument) Reset() error {
	return errors.Wrap(i.write("*RST"), "reset failed")
}

// ClearStatus clears the standard event status register.
func (i *Instrument) ClearStatus() error {
	return errors.Wrap(i.write("*CLS"), "clear status failed")
}

// StatusByte reads the status byte register.
func (i *Instrument) StatusByte() (int, error) {
	return i.queryInt("*STB?")
}

// EventStatus reads the event status register. The read is destructive:
// the instrument clears the register afterwards.
func (i *Instrument) EventStatus() (int, error) {
	return i.queryInt("*ESR?")
}

// SelfTest runs the instrument self-test and returns its result string.
func (i *Instrument) SelfTest() (string, error) {
	res, err := i.query("*TST?")
	return res, errors.Wrap(err, "self test failed")
}

func (i *Instrument) queryInt(cmd string) (int, error) {
	reply, err := i.query(cmd)
	if err != nil {
		return 0, errors.Wrapf(err, "%s failed", cmd)
	}
	n, err := strconv.Atoi(reply)
	if err != nil {
		return 0, &ProtocolError{Command: cmd, Reply: reply, Reason: "expected integer"}
	}
	return n, nil
}

// ---------- Configuration commands ----------

// SetFrequency sets the test frequency in Hz. The value is forwarded
// as-is; the instrument enforces its own 10 Hz .. 2 MHz range.
func (i *Instrument) SetFrequency(hz float64) error {
	return errors.Wrap(i.write(fmt.Sprintf("CONF:FREQ %.2f", hz)), "set frequency failed")
}

// Frequency reads back the configured test frequency in Hz.
func (i *Instrument) Frequency() (float64, error) {
	reply, err := i.query("CONF:FREQ?")
	if err != nil {
		return 0, errors.Wrap(err, "query frequency failed")
	}
	hz, err := strconv.ParseFloat(reply, 64)
	if err != nil {
		return 0, &ProtocolError{Command: "CONF:FREQ?", Reply: reply, Reason: "expected number"}
	}
	return hz, nil
}

// SetPrimaryParameter selects the primary measurement parameter.
func (i *Instrument) SetPrimaryParameter(p Parameter) error {
	if !p.Valid() {
		return errors.Errorf("invalid primary parameter %q", p)
	}
	if err := i.write(fmt.Sprintf("CONF:PPAR %s", p)); err != nil {
		return errors.Wrap(err, "set primary parameter failed")
	}
	i.primary = p
	return nil
}

// PrimaryParameter reads back the configured primary parameter.
func (i *Instrument) PrimaryParameter() (Parameter, error) {
	reply, err := i.query("CONF:PPAR?")
	if err != nil {
		return "", errors.Wrap(err, "query primary parameter failed")
	}
	p := Parameter(strings.ToUpper(reply))
	if !p.Valid() {
		return "", &ProtocolError{Command: "CONF:PPAR?", Reply: reply, Reason: "unknown parameter code"}
	}
	return p, nil
}

// SetSecondaryParameter selects the secondary measurement parameter.
// ParamNone disables the secondary display.
func (i *Instrument) SetSecondaryParameter(p Parameter) error {
	if p != ParamNone && !p.Valid() {
		return errors.Errorf("invalid secondary parameter %q", p)
	}
	return errors.Wrap(i.write(fmt.Sprintf("CONF:SPAR %s", p)), "set secondary parameter failed")
}

// SecondaryParameter reads back the configured secondary parameter.
func (i *Instrument) SecondaryParameter() (Parameter, error) {
	reply, err := i.query("CONF:SPAR?")
	if err != nil {
		return "", errors.Wrap(err, "query secondary parameter failed")
	}
	p := Parameter(strings.ToUpper(reply))
	if p != ParamNone && !p.Valid() {
		return "", &ProtocolError{Command: "CONF:SPAR?", Reply: reply, Reason: "unknown parameter code"}
	}
	return p, nil
}

// SetACLevel sets the AC test signal voltage.
func (i *Instrument) SetACLevel(volts float64) error {
	return errors.Wrap(i.write(fmt.Sprintf("CONF:ACVALUE %g", volts)), "set AC level failed")
}

// SetACCurrent sets the AC test signal current. The instrument uses the
// same command for both source modes.
func (i *Instrument) SetACCurrent(amps float64) error {
	return errors.Wrap(i.write(fmt.Sprintf("CONF:ACVALUE %g", amps)), "set AC current failed")
}

// SetBias selects the DC bias source.
func (i *Instrument) SetBias(b Bias) error {
	if !b.Valid() {
		return errors.Errorf("invalid bias mode %q", b)
	}
	return errors.Wrap(i.write(fmt.Sprintf("CONF:BIAS %s", b)), "set bias failed")
}

// SetAutoRange enables or disables auto-ranging.
func (i *Instrument) SetAutoRange(on bool) error {
	val := "OFF"
	if on {
		val = "ON"
	}
	return errors.Wrap(i.write(fmt.Sprintf("CONF:RANGE %s", val)), "set auto range failed")
}

// SetMeasurementDelay sets the post-trigger delay in milliseconds.
func (i *Instrument) SetMeasurementDelay(ms int) error {
	return errors.Wrap(i.write(fmt.Sprintf("CONF:TDELAY %d", ms)), "set measurement delay failed")
}

// SetAccuracy selects the measurement accuracy/speed trade-off.
func (i *Instrument) SetAccuracy(a Accuracy) error {
	if !a.Valid() {
		return errors.Errorf("invalid accuracy level %q", a)
	}
	return errors.Wrap(i.write(fmt.Sprintf("CONF:SPEED %s", a)), "set accuracy failed")
}

// RecallSetup recalls a saved setup from instrument RAM. Setup names
// are at most 8 characters.
func (i *Instrument) RecallSetup(name string) error {
	if name == "" || len(name) > 8 {
		return errors.Errorf("setup name must be 1-8 characters, got %q", name)
	}
	return errors.Wrap(i.write(fmt.Sprintf("CONF:REC %s", name)), "recall setup failed")
}

// ---------- Measurement commands ----------

// Trigger starts a measurement. If a sequence or sweep is enabled on
// the instrument, this triggers those as well. It does not wait for
// settling; the configured measurement delay governs that.
func (i *Instrument) Trigger() error {
	return errors.Wrap(i.write("MEAS:"), "trigger failed")
}

// FetchRaw reads back the most recent measurement as the unparsed
// reply line.
func (i *Instrument) FetchRaw() (string, error) {
	raw, err := i.query("FETC?")
	return raw, errors.Wrap(err, "fetch failed")
}

// Measure triggers a measurement, fetches the result and parses it.
// Units are taken from the reply when the instrument includes them,
// otherwise derived from the configured primary parameter.
func (i *Instrument) Measure() (model.Measurement, error) {
	start := time.Now()

	if err := i.Trigger(); err != nil {
		return model.Measurement{}, err
	}
	raw, err := i.FetchRaw()
	if err != nil {
		return model.Measurement{}, err
	}

	m, err := parseFetch(raw, i.primary)
	if err != nil {
		return model.Measurement{}, err
	}
	m.Timestamp = start
	m.Duration = time.Since(start)
	if m.PrimaryParam == "" {
		m.PrimaryParam = string(i.primary)
	}
	return m, nil
}

// ---------- Calibration commands ----------

// CalibrateOpen starts an open-circuit calibration. The instrument runs
// it on its own; success is reflected in its status, not locally.
func (i *Instrument) CalibrateOpen() error {
	return errors.Wrap(i.write("CALIBRATE:OPEN"), "open calibration failed")
}

// CalibrateShort starts a short-circuit calibration.
func (i *Instrument) CalibrateShort() error {
	return errors.Wrap(i.write("CALIBRATE:SHORT"), "short calibration failed")
}

// CalibrateQuickOpenShort starts the combined quick open/short calibration.
func (i *Instrument) CalibrateQuickOpenShort() error {
	return errors.Wrap(i.write("CALIBRATE:QUICKOS"), "quick open/short calibration failed")
}

// ---------- Load correction ----------

// LoadCorrectionOn enables load correction. Requires a prior load
// correction measurement.
func (i *Instrument) LoadCorrectionOn() error {
	return errors.Wrap(i.write("LOADCOR:ON"), "load correction on failed")
}

// LoadCorrectionOff disables load correction.
func (i *Instrument) LoadCorrectionOff() error {
	return errors.Wrap(i.write("LOADCOR:OFF"), "load correction off failed")
}

// LoadCorrectionNominals sets the nominal primary/secondary values for
// the correction measurement. Write-only; the instrument does not echo
// them back.
func (i *Instrument) LoadCorrectionNominals(primary, secondary float64) error {
	cmd := fmt.Sprintf("LOADCOR:NOMINALS %g %g", primary, secondary)
	return errors.Wrap(i.write(cmd), "load correction nominals failed")
}

// LoadCorrectionMeasure performs the load correction measurement.
func (i *Instrument) LoadCorrectionMeasure() error {
	return errors.Wrap(i.write("LOADCOR:MEASURE"), "load correction measure failed")
}

// LoadCorrectionFetch reads the load correction status (Valid/Invalid)
// and measured values as the raw reply line.
func (i *Instrument) LoadCorrectionFetch() (string, error) {
	res, err := i.query("LOADFETCH?")
	return res, errors.Wrap(err, "load correction fetch failed")
}
