/*
PURPOSE:
  High-level runner that orchestrates a measurement session.
  Opens the instrument, applies the configured setup, then loops
  trigger+fetch and records every reading.

REQUIREMENTS:
  User-specified:
  - Configure the meter from the config, then take N readings at a
    fixed interval (N < 0: run until interrupted).
  - Log results to CSV/JSON.

  Implementation-discovered:
  - Needs to report progress to CLI.
  - A failed reading is logged and recorded, and the loop continues;
    the single exchange itself is never retried.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/qt7600, internal/config, internal/output

ERROR HANDLING:
  - Setup failures abort the run (a misconfigured sweep is worthless).
  - Per-reading failures are resilient: log, record, continue.

IMPLEMENTATION RULES:
  - Guaranteed close on all exit paths (defer).
  - Validate enum tokens before dialing; don't waste a session on a typo.

USAGE:
  engine.Run(cfg)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/qt7600/qt7600.go

MAINTENANCE:
  - Update iteration logic if sweeps are introduced.
*/

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shar0486/ForLCRmeter/internal/config"
	"github.com/shar0486/ForLCRmeter/internal/output"
	"github.com/shar0486/ForLCRmeter/internal/qt7600"
	"github.com/shar0486/ForLCRmeter/internal/visa"
)

// setup is the validated measurement configuration.
type setup struct {
	primary   qt7600.Parameter
	secondary qt7600.Parameter
	bias      qt7600.Bias
	accuracy  qt7600.Accuracy
}

// Run executes a full measurement session against the configured resource.
func Run(cfg *config.Config) error {
	st, err := validate(cfg)
	if err != nil {
		return err
	}

	inst := qt7600.New(cfg.Resource, visa.Options{
		Timeout:    cfg.Timeout,
		SerialBaud: cfg.SerialBaud,
	})
	if err := inst.Open(); err != nil {
		return fmt.Errorf("failed to open %s: %w", cfg.Resource, err)
	}
	defer inst.Close()

	return run(inst, cfg, st)
}

// validate checks the enum tokens before any I/O happens.
func validate(cfg *config.Config) (setup, error) {
	var st setup
	var err error

	if st.primary, err = qt7600.ParseParameter(cfg.PrimaryParam); err != nil {
		return st, err
	}
	if cfg.SecondaryParam == "" || cfg.SecondaryParam == string(qt7600.ParamNone) {
		st.secondary = qt7600.ParamNone
	} else if st.secondary, err = qt7600.ParseParameter(cfg.SecondaryParam); err != nil {
		return st, err
	}
	if st.bias, err = qt7600.ParseBias(cfg.Bias); err != nil {
		return st, err
	}
	if st.accuracy, err = qt7600.ParseAccuracy(cfg.Accuracy); err != nil {
		return st, err
	}
	return st, nil
}

// run drives an already-open instrument. Split from Run so tests can
// inject a mock transport.
func run(inst *qt7600.Instrument, cfg *config.Config, st setup) error {
	// Ensure output directory exists
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	// Setup Outputs
	csvPath := filepath.Join(cfg.OutputDir, cfg.OutputFile)
	csvWriter, err := output.NewCSVWriter(csvPath)
	if err != nil {
		return fmt.Errorf("failed to init CSV writer at %s: %w", csvPath, err)
	}
	defer csvWriter.Close()

	jsonPath := filepath.Join(cfg.OutputDir, "measurements.json")
	jsonWriter, err := output.NewJSONWriter(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to init JSON writer at %s: %w", jsonPath, err)
	}
	defer jsonWriter.Close()

	// 1. Identify + configure
	idn, err := inst.Identify()
	if err != nil {
		return fmt.Errorf("identify failed: %w", err)
	}
	output.Logger.Info("Connected", "resource", cfg.Resource, "idn", idn)

	if err := configure(inst, cfg, st); err != nil {
		return err
	}

	// Allow the instrument to settle on the new setup before triggering.
	if cfg.SettleTime > 0 {
		time.Sleep(cfg.SettleTime)
	}

	// 2. Measurement loop
	taken := 0
	for n := cfg.Count; n != 0; n-- {
		if taken > 0 && cfg.Interval > 0 {
			time.Sleep(cfg.Interval)
		}

		m, err := inst.Measure()
		if err != nil {
			output.Logger.Error("Measurement failed", "reading", taken+1, "error", err)
			m.Timestamp = time.Now()
			m.Error = err.Error()
		} else {
			output.Logger.Info("Reading",
				"n", taken+1,
				"primary", m.Primary,
				"units", m.Units,
				"raw", m.Raw,
			)
		}

		m.Resource = cfg.Resource
		m.FrequencyHz = cfg.FrequencyHz
		m.PrimaryParam = string(st.primary)
		if st.secondary != qt7600.ParamNone {
			m.SecondaryParam = string(st.secondary)
		}

		if err := csvWriter.Write(m); err != nil {
			output.Logger.Error("Failed to write result to CSV", "error", err)
		}
		if err := jsonWriter.Write(m); err != nil {
			output.Logger.Error("Failed to write result to JSON", "error", err)
		}
		taken++
	}

	output.Logger.Info("Run complete", "readings", taken, "csv", csvPath, "json", jsonPath)
	return nil
}

// configure applies the measurement setup to the instrument.
func configure(inst *qt7600.Instrument, cfg *config.Config, st setup) error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"frequency", func() error { return inst.SetFrequency(cfg.FrequencyHz) }},
		{"primary parameter", func() error { return inst.SetPrimaryParameter(st.primary) }},
		{"secondary parameter", func() error { return inst.SetSecondaryParameter(st.secondary) }},
		{"AC level", func() error { return inst.SetACLevel(cfg.ACLevel) }},
		{"bias", func() error { return inst.SetBias(st.bias) }},
		{"auto range", func() error { return inst.SetAutoRange(cfg.AutoRange) }},
		{"measurement delay", func() error { return inst.SetMeasurementDelay(cfg.DelayMS) }},
		{"accuracy", func() error { return inst.SetAccuracy(st.accuracy) }},
	}

	for _, s := range steps {
		if err := s.fn(); err != nil {
			return fmt.Errorf("configure %s: %w", s.name, err)
		}
	}

	output.Logger.Info("Configured",
		"frequency_hz", cfg.FrequencyHz,
		"primary", st.primary,
		"secondary", st.secondary,
		"ac_level", cfg.ACLevel,
		"bias", st.bias,
		"auto_range", cfg.AutoRange,
		"accuracy", st.accuracy,
	)
	return nil
}
