package timeutil

import (
	"testing"
	"time"
)

func TestISOUTCZ(t *testing.T) {
	ts := time.Date(2026, time.March, 5, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	if got := ISOUTCZ(ts); got != "2026-03-06T04:30:00Z" {
		t.Errorf("ISOUTCZ: got %q", got)
	}
}

func TestLocalDateCrossesMidnight(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	// 03:30 UTC is still the previous day in EST
	ts := time.Date(2026, time.March, 6, 3, 30, 0, 0, time.UTC)
	if got := LocalDate(ts, est); got != "2026-03-05" {
		t.Errorf("LocalDate: got %q", got)
	}
	if got := LocalDate(ts, time.UTC); got != "2026-03-06" {
		t.Errorf("LocalDate UTC: got %q", got)
	}
}

func TestLoadLocationFallback(t *testing.T) {
	if loc := LoadLocation(""); loc != time.UTC {
		t.Error("empty name should fall back to UTC")
	}
	if loc := LoadLocation("Not/AZone"); loc != time.UTC {
		t.Error("unknown name should fall back to UTC")
	}
	if loc := LoadLocation("America/Toronto"); loc == time.UTC {
		t.Skip("tzdata unavailable")
	}
}
