package ledger

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Civil calendar date (no time of day, no zone)
// =============================================================================

const DateLayout = "2006-01-02"

// Date is a calendar day. Internally it is midnight UTC of that day, so two
// Dates compare correctly regardless of where they were derived from.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// DateOf returns the calendar day of instant t as observed in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return NewDate(local.Year(), local.Month(), local.Day())
}

// Comparison
func (d Date) Before(other Date) bool     { return d.t.Before(other.t) }
func (d Date) After(other Date) bool      { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool      { return d.t.Equal(other.t) }
func (d Date) OnOrBefore(other Date) bool { return !d.t.After(other.t) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
