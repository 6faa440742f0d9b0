package qt7600

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shar0486/ForLCRmeter/internal/visa"
)

// mockTransport emulates the instrument: setters are remembered so the
// matching query command echoes the last-set state, and canned replies
// can be installed per query command.
type mockTransport struct {
	state      map[string]string // command header -> last written value
	replies    map[string]string // query command -> canned reply
	writes     []string
	queries    []string
	queryErr   error
	closeCalls int
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		state:   make(map[string]string),
		replies: make(map[string]string),
	}
}

func (m *mockTransport) Write(cmd string) error {
	m.writes = append(m.writes, cmd)
	if header, value, ok := strings.Cut(cmd, " "); ok {
		m.state[header] = value
	}
	return nil
}

func (m *mockTransport) Query(cmd string) (string, error) {
	m.queries = append(m.queries, cmd)
	if m.queryErr != nil {
		return "", m.queryErr
	}
	if reply, ok := m.replies[cmd]; ok {
		return reply, nil
	}
	// Echo the last-set value for read-back queries like CONF:PPAR?.
	if header, ok := strings.CutSuffix(cmd, "?"); ok {
		if value, found := m.state[header]; found {
			return value, nil
		}
	}
	return "", nil
}

func (m *mockTransport) Close() error {
	m.closeCalls++
	return nil
}

func openTestInstrument() (*Instrument, *mockTransport) {
	tr := newMockTransport()
	inst := New("MOCK::0", visa.Options{})
	inst.OpenWith(tr)
	return inst, tr
}

func TestPrimaryParameterRoundTrip(t *testing.T) {
	params := []Parameter{
		ParamRS, ParamRP, ParamLS, ParamLP, ParamCS, ParamCP, ParamDF,
		ParamQ, ParamZ, ParamY, ParamP, ParamESR, ParamGP, ParamXS, ParamBP,
	}

	inst, _ := openTestInstrument()
	for _, p := range params {
		if err := inst.SetPrimaryParameter(p); err != nil {
			t.Fatalf("SetPrimaryParameter(%s): %v", p, err)
		}
		got, err := inst.PrimaryParameter()
		if err != nil {
			t.Fatalf("PrimaryParameter after %s: %v", p, err)
		}
		if got != p {
			t.Errorf("round trip %s: got %s", p, got)
		}
	}
}

func TestSetPrimaryParameterCommand(t *testing.T) {
	inst, tr := openTestInstrument()
	if err := inst.SetPrimaryParameter(ParamCS); err != nil {
		t.Fatal(err)
	}
	if len(tr.writes) != 1 || tr.writes[0] != "CONF:PPAR CS" {
		t.Errorf("writes = %v, want [CONF:PPAR CS]", tr.writes)
	}
}

func TestSetPrimaryParameterInvalid(t *testing.T) {
	inst, tr := openTestInstrument()
	if err := inst.SetPrimaryParameter(Parameter("XX")); err == nil {
		t.Fatal("expected error for invalid parameter")
	}
	if len(tr.writes) != 0 {
		t.Errorf("invalid parameter must not reach the wire, wrote %v", tr.writes)
	}
}

func TestMeasureTwoFieldReply(t *testing.T) {
	inst, tr := openTestInstrument()
	if err := inst.SetPrimaryParameter(ParamCS); err != nil {
		t.Fatal(err)
	}
	tr.replies["FETC?"] = "1.23E-6,0.015"

	m, err := inst.Measure()
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if m.Primary != 1.23e-6 {
		t.Errorf("primary = %g, want 1.23e-6", m.Primary)
	}
	s, ok := m.SecondaryValue()
	if !ok {
		t.Fatal("secondary should be present")
	}
	if s != 0.015 {
		t.Errorf("secondary = %g, want 0.015", s)
	}
	if m.Units != "F" {
		t.Errorf("units = %q, want F", m.Units)
	}
	// Trigger must precede the fetch.
	if tr.writes[len(tr.writes)-1] != "MEAS:" {
		t.Errorf("last write = %q, want MEAS:", tr.writes[len(tr.writes)-1])
	}
	if tr.queries[len(tr.queries)-1] != "FETC?" {
		t.Errorf("last query = %q, want FETC?", tr.queries[len(tr.queries)-1])
	}
}

func TestMeasureOneFieldReply(t *testing.T) {
	inst, tr := openTestInstrument()
	if err := inst.SetPrimaryParameter(ParamCS); err != nil {
		t.Fatal(err)
	}
	tr.replies["FETC?"] = "1.23E-6"

	m, err := inst.Measure()
	if err != nil {
		t.Fatalf("one-field reply must not be an error, got %v", err)
	}
	if m.Primary != 1.23e-6 {
		t.Errorf("primary = %g, want 1.23e-6", m.Primary)
	}
	if _, ok := m.SecondaryValue(); ok {
		t.Error("secondary should be absent")
	}
}

func TestMeasureVerboseReply(t *testing.T) {
	inst, tr := openTestInstrument()
	tr.replies["FETC?"] = "Cs\t1.23E-6\tF\tDF\t0.015\t"

	m, err := inst.Measure()
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if m.Primary != 1.23e-6 {
		t.Errorf("primary = %g, want 1.23e-6", m.Primary)
	}
	if m.Units != "F" {
		t.Errorf("units = %q, want F", m.Units)
	}
	if s, ok := m.SecondaryValue(); !ok || s != 0.015 {
		t.Errorf("secondary = %v %v, want 0.015 true", s, ok)
	}
}

func TestMeasureGarbageReply(t *testing.T) {
	inst, tr := openTestInstrument()
	tr.replies["FETC?"] = "not-a-number"

	_, err := inst.Measure()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !IsProtocolError(err) {
		t.Errorf("want ProtocolError, got %T: %v", err, err)
	}
	if visa.IsTransportError(err) {
		t.Error("parse failure must not look like a transport error")
	}
}

func TestCommandsBeforeOpen(t *testing.T) {
	inst := New("MOCK::0", visa.Options{})

	if err := inst.Trigger(); err == nil {
		t.Fatal("expected error on closed instrument")
	} else if !errors.Is(err, visa.ErrNotOpen) {
		t.Errorf("want ErrNotOpen, got %v", err)
	}

	if _, err := inst.StatusByte(); !visa.IsTransportError(err) {
		t.Errorf("want TransportError, got %v", err)
	}
	if _, err := inst.Measure(); !errors.Is(err, visa.ErrNotOpen) {
		t.Errorf("want ErrNotOpen, got %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	inst, tr := openTestInstrument()

	if err := inst.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := inst.Close(); err != nil {
		t.Fatalf("second Close must be a no-op, got %v", err)
	}
	if tr.closeCalls != 1 {
		t.Errorf("transport Close called %d times, want 1", tr.closeCalls)
	}
}

func TestQueryTimeoutPropagates(t *testing.T) {
	inst, tr := openTestInstrument()
	timeout := &visa.TransportError{Op: "query", Resource: "MOCK::0", Err: visa.ErrTimeout}
	tr.queryErr = timeout

	_, err := inst.StatusByte()
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, visa.ErrTimeout) {
		t.Errorf("want ErrTimeout in chain, got %v", err)
	}
	var te *visa.TransportError
	if !errors.As(err, &te) || te != timeout {
		t.Errorf("TransportError must propagate unchanged, got %v", err)
	}
	// No retry: exactly one exchange attempted.
	if len(tr.queries) != 1 {
		t.Errorf("query attempted %d times, want 1 (no retries)", len(tr.queries))
	}
}

func TestStatusByte(t *testing.T) {
	inst, tr := openTestInstrument()
	tr.replies["*STB?"] = "68"

	stb, err := inst.StatusByte()
	if err != nil {
		t.Fatalf("StatusByte: %v", err)
	}
	if stb != 68 {
		t.Errorf("stb = %d, want 68", stb)
	}

	tr.replies["*STB?"] = "garbage"
	if _, err := inst.StatusByte(); !IsProtocolError(err) {
		t.Errorf("want ProtocolError for non-integer reply, got %v", err)
	}
}

func TestConfigurationCommands(t *testing.T) {
	cases := []struct {
		name string
		call func(*Instrument) error
		want string
	}{
		{"frequency", func(i *Instrument) error { return i.SetFrequency(1000) }, "CONF:FREQ 1000.00"},
		{"secondary", func(i *Instrument) error { return i.SetSecondaryParameter(ParamDF) }, "CONF:SPAR DF"},
		{"secondary none", func(i *Instrument) error { return i.SetSecondaryParameter(ParamNone) }, "CONF:SPAR N"},
		{"ac level", func(i *Instrument) error { return i.SetACLevel(0.25) }, "CONF:ACVALUE 0.25"},
		{"bias", func(i *Instrument) error { return i.SetBias(BiasInternal) }, "CONF:BIAS INT"},
		{"auto range on", func(i *Instrument) error { return i.SetAutoRange(true) }, "CONF:RANGE ON"},
		{"auto range off", func(i *Instrument) error { return i.SetAutoRange(false) }, "CONF:RANGE OFF"},
		{"delay", func(i *Instrument) error { return i.SetMeasurementDelay(250) }, "CONF:TDELAY 250"},
		{"accuracy", func(i *Instrument) error { return i.SetAccuracy(AccuracySlow) }, "CONF:SPEED SLOW"},
		{"recall", func(i *Instrument) error { return i.RecallSetup("CAPSWEEP") }, "CONF:REC CAPSWEEP"},
		{"reset", func(i *Instrument) error { return i.Reset() }, "*RST"},
		{"clear status", func(i *Instrument) error { return i.ClearStatus() }, "*CLS"},
		{"trigger", func(i *Instrument) error { return i.Trigger() }, "MEAS:"},
		{"cal open", func(i *Instrument) error { return i.CalibrateOpen() }, "CALIBRATE:OPEN"},
		{"cal short", func(i *Instrument) error { return i.CalibrateShort() }, "CALIBRATE:SHORT"},
		{"cal quick", func(i *Instrument) error { return i.CalibrateQuickOpenShort() }, "CALIBRATE:QUICKOS"},
		{"loadcor on", func(i *Instrument) error { return i.LoadCorrectionOn() }, "LOADCOR:ON"},
		{"loadcor off", func(i *Instrument) error { return i.LoadCorrectionOff() }, "LOADCOR:OFF"},
		{"loadcor measure", func(i *Instrument) error { return i.LoadCorrectionMeasure() }, "LOADCOR:MEASURE"},
		{"loadcor nominals", func(i *Instrument) error { return i.LoadCorrectionNominals(100, 0.5) }, "LOADCOR:NOMINALS 100 0.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inst, tr := openTestInstrument()
			if err := tc.call(inst); err != nil {
				t.Fatalf("%s: %v", tc.name, err)
			}
			if len(tr.writes) != 1 || tr.writes[0] != tc.want {
				t.Errorf("writes = %v, want [%s]", tr.writes, tc.want)
			}
		})
	}
}

func TestInvalidEnumsRejectedLocally(t *testing.T) {
	inst, tr := openTestInstrument()

	if err := inst.SetBias(Bias("WEIRD")); err == nil {
		t.Error("expected error for invalid bias")
	}
	if err := inst.SetAccuracy(Accuracy("TURBO")); err == nil {
		t.Error("expected error for invalid accuracy")
	}
	if err := inst.RecallSetup("MUCHTOOLONGNAME"); err == nil {
		t.Error("expected error for over-long setup name")
	}
	if len(tr.writes) != 0 {
		t.Errorf("rejected values must not reach the wire, wrote %v", tr.writes)
	}
}

func TestIdentify(t *testing.T) {
	inst, tr := openTestInstrument()
	tr.replies["*IDN?"] = "QuadTech,7600modelb,1234567,V1.23"

	idn, err := inst.Identify()
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if idn != "QuadTech,7600modelb,1234567,V1.23" {
		t.Errorf("idn = %q", idn)
	}
}

func TestFrequencyReadBack(t *testing.T) {
	inst, _ := openTestInstrument()
	if err := inst.SetFrequency(2e6); err != nil {
		t.Fatal(err)
	}
	hz, err := inst.Frequency()
	if err != nil {
		t.Fatalf("Frequency: %v", err)
	}
	if hz != 2e6 {
		t.Errorf("frequency = %g, want 2e6", hz)
	}
}

func ExampleInstrument_Measure() {
	tr := newMockTransport()
	tr.replies["FETC?"] = "4.70E-9,0.002"

	inst := New("MOCK::0", visa.Options{})
	inst.OpenWith(tr)
	defer inst.Close()

	_ = inst.SetPrimaryParameter(ParamCP)
	m, _ := inst.Measure()
	fmt.Printf("%g %s\n", m.Primary, m.Units)
	// Output: 4.7e-09 F
}
