package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateOnly is a calendar date without a time component. It is stored as
// "YYYY-MM-DD", which keeps comparisons lexicographic == chronological on
// both the postgres DATE column and the sqlite test database.
type DateOnly struct{ time.Time }

func NewDate(year int, month time.Month, day int) DateOnly {
	return DateOnly{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) DateOnly {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (DateOnly, error) {
	var d DateOnly
	return d, d.parse(s)
}

func (d *DateOnly) parse(s string) error {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d *DateOnly) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		*d = DateOf(x)
		return nil
	case []byte:
		return d.parse(string(x))
	case string:
		return d.parse(x)
	case nil:
		d.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("dateonly: unsupported Scan type %T", v)
	}
}

func (d DateOnly) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d DateOnly) String() string {
	return d.Format("2006-01-02")
}

func (d DateOnly) AddDays(n int) DateOnly {
	return DateOf(d.AddDate(0, 0, n))
}

// Before/After/Equal compare the date component only.
func (d DateOnly) BeforeDate(o DateOnly) bool { return d.String() < o.String() }
func (d DateOnly) AfterDate(o DateOnly) bool  { return d.String() > o.String() }
func (d DateOnly) EqualDate(o DateOnly) bool  { return d.String() == o.String() }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.parse(s)
}

// TimeOfDay is a wall-clock time stored as "HH:MM:SS".
type TimeOfDay struct{ time.Time }

func TimeOf(t time.Time) TimeOfDay {
	return TimeOfDay{time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

func NewTime(hour, minute int) TimeOfDay {
	return TimeOfDay{time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC)}
}

func ParseTime(s string) (TimeOfDay, error) {
	var t TimeOfDay
	return t, t.parse(s)
}

func (t *TimeOfDay) parse(s string) error {
	s = strings.TrimSpace(s)
	if len(s) == 5 { // "HH:MM"
		s += ":00"
	}
	tt, err := time.Parse("15:04:05", s)
	if err != nil {
		return err
	}
	t.Time = tt
	return nil
}

func (t *TimeOfDay) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		*t = TimeOf(x)
		return nil
	case []byte:
		return t.parse(string(x))
	case string:
		return t.parse(x)
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("timeofday: unsupported Scan type %T", v)
	}
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t TimeOfDay) String() string {
	return t.Format("15:04:05")
}

func (t TimeOfDay) BeforeClock(o TimeOfDay) bool { return t.String() < o.String() }

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return t.parse(s)
}
