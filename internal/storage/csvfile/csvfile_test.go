package csvfile

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/airshed/airshed/internal/types"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}

func TestStoreReadingWritesHeaderAndRow(t *testing.T) {
	s, err := New(t.TempDir(), "node1", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	defer s.closeFile()

	r := types.Reading{
		Timestamp:    time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		NodeID:       "node1",
		PM25PMS1:     types.Float(12.5),
		PM25PairFlag: "OK",
	}
	if err := s.StoreReading(r); err != nil {
		t.Fatal(err)
	}

	rows := readAll(t, s.Path("2026-03-14"))
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	if rows[0][0] != "timestamp_utc" {
		t.Errorf("header[0] = %q, want timestamp_utc", rows[0][0])
	}
	if len(rows[1]) != len(types.CSVHeader()) {
		t.Errorf("row width = %d, want %d", len(rows[1]), len(types.CSVHeader()))
	}
	// Absent values land as the sentinel, not empty cells
	if rows[1][3] != types.NoData {
		t.Errorf("temp_c = %q, want %q", rows[1][3], types.NoData)
	}
}

func TestStoreReadingAppendsWithoutDuplicateHeader(t *testing.T) {
	s, err := New(t.TempDir(), "node1", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	defer s.closeFile()

	ts := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := s.StoreReading(types.Reading{Timestamp: ts.Add(time.Duration(i) * time.Second), NodeID: "node1"}); err != nil {
			t.Fatal(err)
		}
	}

	rows := readAll(t, s.Path("2026-03-14"))
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}
}

func TestStoreReadingRotatesAtLocalDateChange(t *testing.T) {
	s, err := New(t.TempDir(), "node1", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	defer s.closeFile()

	if err := s.StoreReading(types.Reading{Timestamp: time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC)}); err != nil {
		t.Fatal(err)
	}
	if err := s.StoreReading(types.Reading{Timestamp: time.Date(2026, 3, 15, 0, 0, 1, 0, time.UTC)}); err != nil {
		t.Fatal(err)
	}

	for _, date := range []string{"2026-03-14", "2026-03-15"} {
		rows := readAll(t, s.Path(date))
		if len(rows) != 2 {
			t.Errorf("%s: rows = %d, want header + 1", date, len(rows))
		}
	}
}

func TestRotationRespectsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	s, err := New(t.TempDir(), "node1", loc)
	if err != nil {
		t.Fatal(err)
	}
	defer s.closeFile()

	// 2026-03-14T22:00Z is already the 15th at UTC+10
	if err := s.StoreReading(types.Reading{Timestamp: time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.Path("2026-03-15")); err != nil {
		t.Errorf("expected file for local date 2026-03-15: %v", err)
	}
}
