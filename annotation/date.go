package annotation

import (
	"fmt"
	"time"
)

// Date is an annotation date. Time keeps any time-of-day suffix from a GPAD
// 2.0 date (e.g. "T10:22:00") so it can be written back unchanged.
type Date struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
	Time  string `json:"time,omitempty"`
}

// DateFromTime truncates t to a calendar Date.
func DateFromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// YMD renders the GAF form, YYYYMMDD.
func (d Date) YMD() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

// ISO renders the GPAD 2.0 form, YYYY-MM-DD plus any time suffix.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d%s", d.Year, d.Month, d.Day, d.Time)
}

// ToTime returns midnight UTC of the date.
func (d Date) ToTime() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}
