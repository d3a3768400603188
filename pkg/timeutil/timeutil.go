// Package timeutil provides the timestamp formats used in reading
// records and data file names.
package timeutil

import "time"

// ISOUTCZ formats a time as ISO-8601 UTC with a trailing Z and second
// precision, e.g. 2026-08-25T14:03:07Z.
func ISOUTCZ(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// ISOLocal formats a time in the given location with its UTC offset,
// e.g. 2026-08-25T10:03:07-04:00.
func ISOLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02T15:04:05-07:00")
}

// LocalDate returns the YYYY-MM-DD date string for t in the given
// location. Daily data files are named by local date.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// LoadLocation resolves an IANA timezone name, falling back to UTC for
// an empty or unknown name.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
