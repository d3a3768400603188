package types

import (
	"testing"
	"time"
)

func TestCSVRowMatchesHeader(t *testing.T) {
	r := &Reading{
		Timestamp: time.Date(2026, time.January, 2, 15, 4, 5, 0, time.UTC),
		NodeID:    "Node1",
	}
	header := CSVHeader()
	row := r.CSVRow(time.UTC)
	if len(row) != len(header) {
		t.Fatalf("row has %d cells, header has %d columns", len(row), len(header))
	}
}

func TestCSVRowSentinels(t *testing.T) {
	r := &Reading{
		Timestamp:  time.Date(2026, time.January, 2, 15, 4, 5, 0, time.UTC),
		NodeID:     "Node1",
		PM25PMS1:   Float(12),
		PMS1Status: "ok",
	}
	row := r.CSVRow(time.UTC)
	cells := make(map[string]string)
	for i, name := range CSVHeader() {
		cells[name] = row[i]
	}

	if cells["timestamp_utc"] != "2026-01-02T15:04:05Z" {
		t.Errorf("timestamp_utc: got %q", cells["timestamp_utc"])
	}
	if cells["pm25_atm_pms1"] != "12" {
		t.Errorf("pm25_atm_pms1: got %q", cells["pm25_atm_pms1"])
	}
	if cells["pms1_status"] != "ok" {
		t.Errorf("pms1_status: got %q", cells["pms1_status"])
	}
	// Absent values become the sentinel, never empty cells
	for _, col := range []string{"pm25_atm_pms2", "pms2_status", "so2_ppm", "pm25_pair_flag", "temp_c"} {
		if cells[col] != NoData {
			t.Errorf("%s: got %q, want %q", col, cells[col], NoData)
		}
	}
}

func TestFormatFloat(t *testing.T) {
	if got := FormatFloat(nil); got != NoData {
		t.Errorf("nil: got %q", got)
	}
	if got := FormatFloat(Float(0.0488)); got != "0.0488" {
		t.Errorf("0.0488: got %q", got)
	}
	if got := FormatFloat(Float(13)); got != "13" {
		t.Errorf("13: got %q", got)
	}
}
