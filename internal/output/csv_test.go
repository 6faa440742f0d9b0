package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shar0486/ForLCRmeter/internal/model"
)

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatal(err)
	}

	secondary := 0.015
	m := model.Measurement{
		Resource:       "TCPIP::lcr::5555::SOCKET",
		Timestamp:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		FrequencyHz:    1000,
		PrimaryParam:   "CS",
		SecondaryParam: "DF",
		Primary:        1.23e-6,
		Secondary:      &secondary,
		Units:          "F",
		Raw:            "1.23E-6,0.015",
		Duration:       42 * time.Millisecond,
	}
	if err := w.Write(m); err != nil {
		t.Fatal(err)
	}
	// A row with no secondary leaves the column empty.
	m.Secondary = nil
	if err := w.Write(m); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	header := rows[0]
	if header[0] != "resource" || header[len(header)-1] != "error" {
		t.Errorf("unexpected header: %v", header)
	}
	if rows[1][5] != "1.23e-06" {
		t.Errorf("primary cell = %q", rows[1][5])
	}
	if rows[1][6] != "0.015" {
		t.Errorf("secondary cell = %q", rows[1][6])
	}
	if rows[2][6] != "" {
		t.Errorf("absent secondary should be empty, got %q", rows[2][6])
	}
}

func TestJSONWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	w, err := NewJSONWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(model.Measurement{Primary: 1, Units: "F"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(model.Measurement{Primary: 2, Units: "F"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Errorf("got %d JSON lines, want 2", lines)
	}
}
