// Package dates holds the calendar arithmetic the consolidation rules
// depend on. All calendar dates travel as YYYYMMDD strings, matching the
// export format; only the instant helpers deal in time.Time.
package dates

import (
	"fmt"
	"time"
)

const (
	// Layout is the whole-day date format used by DTSTART/DTEND.
	Layout = "20060102"
	// LayoutInstant is the high-precision UTC form, e.g. 20210720T140000Z.
	LayoutInstant = "20060102T150405Z"
)

// FormatError reports a date field that does not match the expected
// shape. Dates are load-bearing for every merge decision, so callers
// treat this as fatal.
type FormatError struct {
	Value  string
	Layout string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("date %q does not match format %s", e.Value, e.Layout)
}

// Parse parses a strict YYYYMMDD value.
func Parse(value string) (time.Time, error) {
	if len(value) != len(Layout) {
		return time.Time{}, &FormatError{Value: value, Layout: Layout}
	}
	t, err := time.Parse(Layout, value)
	if err != nil {
		return time.Time{}, &FormatError{Value: value, Layout: Layout}
	}
	return t, nil
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// NextDay returns the date one calendar day after value, covering
// month and year rollover.
func NextDay(value string) (string, error) {
	t, err := Parse(value)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, 1)), nil
}

// PrevDay returns the date one calendar day before value.
func PrevDay(value string) (string, error) {
	t, err := Parse(value)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, -1)), nil
}

// DayGap returns the number of calendar days from a to b; negative when
// b precedes a.
func DayGap(a, b string) (int, error) {
	ta, err := Parse(a)
	if err != nil {
		return 0, err
	}
	tb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}

// StartsWeek reports whether the date may open a working span: Monday,
// or a weekend day. EndsWeek reports whether it may close one: Friday,
// or a weekend day. Weekend days deliberately satisfy both, so a span
// ending on a weekend can bridge into the following week.
func StartsWeek(value string) (bool, error) {
	wd, err := weekday(value)
	if err != nil {
		return false, err
	}
	return wd == time.Monday || wd == time.Saturday || wd == time.Sunday, nil
}

func EndsWeek(value string) (bool, error) {
	wd, err := weekday(value)
	if err != nil {
		return false, err
	}
	return wd == time.Friday || wd == time.Saturday || wd == time.Sunday, nil
}

func weekday(value string) (time.Weekday, error) {
	t, err := Parse(value)
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

// ToLocal converts a YYYYMMDDTHHMMSSZ UTC instant into wall-clock time
// in the given zone.
func ToLocal(value string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(LayoutInstant, value)
	if err != nil {
		return time.Time{}, &FormatError{Value: value, Layout: LayoutInstant}
	}
	return t.In(loc), nil
}
