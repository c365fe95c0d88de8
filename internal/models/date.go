package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for session dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day component.
type Date struct {
	time.Time
}

// NewDate returns the given year/month/day as a Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.Parse(s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateLayout))
}

// Parse parses a YYYY-MM-DD date string.
func (d *Date) Parse(s string) error {
	parsed, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("cannot parse date %q: %w", s, err)
	}
	d.Time = parsed
	return nil
}

// Value implements driver.Valuer so dates are stored as YYYY-MM-DD text.
func (d Date) Value() (driver.Value, error) {
	return d.Format(DateLayout), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return d.Parse(v)
	case []byte:
		return d.Parse(string(v))
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}
