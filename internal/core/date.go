package core

import (
	"errors"
	"strings"
	"time"
)

// ISODate is the storage and export layout for calendar dates.
const ISODate = "2006-01-02"

// Date is a calendar date held at midnight UTC.
type Date struct {
	time.Time
}

var ErrInvalidDate = errors.New("invalid date")

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseISODate parses YYYY-MM-DD only.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(ISODate, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	return d.Format(ISODate)
}

// MarshalText makes dates render as YYYY-MM-DD in JSON.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseISODate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON shadows the promoted time.Time encoder.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	return d.UnmarshalText([]byte(strings.Trim(string(b), `"`)))
}

// DateLayout is one strategy tried by ParseDate.
type DateLayout struct {
	Name   string // as users know it, e.g. "MM/DD/YYYY"
	Layout string // Go reference layout
}

// Parse reports whether s matches this layout exactly.
func (l DateLayout) Parse(s string) (Date, bool) {
	t, err := time.Parse(l.Layout, s)
	if err != nil {
		return Date{}, false
	}
	return Date{Time: t}, true
}

// dateLayouts is tried in order and the first match wins. US forms come before
// their EU twins, so "03/05/2024" is March 5th. Reordering changes results for
// ambiguous input.
var dateLayouts = []DateLayout{
	{Name: "YYYY-MM-DD", Layout: "2006-1-2"},
	{Name: "YYYY/MM/DD", Layout: "2006/1/2"},
	{Name: "MM/DD/YYYY", Layout: "1/2/2006"},
	{Name: "DD/MM/YYYY", Layout: "2/1/2006"},
	{Name: "MM-DD-YYYY", Layout: "1-2-2006"},
	{Name: "DD-MM-YYYY", Layout: "2-1-2006"},
	{Name: "YYYYMMDD", Layout: "20060102"},
	{Name: "MM/DD/YY", Layout: "1/2/06"},
	{Name: "DD/MM/YY", Layout: "2/1/06"},
}

// DateLayouts returns the ordered strategies used by ParseDate.
func DateLayouts() []DateLayout {
	return append([]DateLayout(nil), dateLayouts...)
}

// ParseDate tries every known layout in priority order.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if d, ok := l.Parse(s); ok {
			return d, nil
		}
	}
	return Date{}, ErrInvalidDate
}
