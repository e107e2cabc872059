// Package recurrence advances calendar dates by ISO-8601 intervals.
//
// Arithmetic follows the ISO calendar rules used for plain dates: years and
// months are added first, clamping the day to the end of a shorter month,
// then weeks and days are added. A time part contributes its whole days.
package recurrence

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

var (
	// ErrNoInterval indicates that no repeat interval was given.
	ErrNoInterval = errors.New("no repeat interval specified")
	// ErrInvalidInterval indicates an interval that is not an ISO-8601 duration.
	ErrInvalidInterval = errors.New("invalid repeat interval")
	// ErrInvalidDate indicates a value that is not a calendar date.
	ErrInvalidDate = errors.New("invalid date")
)

// DateLayout is the calendar date format read and written by this package.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Interval is a parsed recurrence step.
type Interval struct {
	Years    int
	Months   int
	Days     int
	Negative bool

	text string
}

// ParseInterval parses an ISO-8601 duration such as P1W, P1M, or P1Y2M10D.
// Designators may be lowercase. Year, month, week, and day components must
// be whole numbers.
func ParseInterval(value string) (Interval, error) {
	text := strings.TrimSpace(value)
	if text == "" {
		return Interval{}, ErrNoInterval
	}

	designators := strings.ToUpper(text)
	if err := checkComponents(designators); err != nil {
		return Interval{}, fmt.Errorf("%w %q: %v", ErrInvalidInterval, text, err)
	}
	parsed, err := duration.Parse(designators)
	if err != nil {
		return Interval{}, fmt.Errorf("%w %q: %v", ErrInvalidInterval, text, err)
	}

	years, err := wholeUnits(parsed.Years, "years")
	if err != nil {
		return Interval{}, fmt.Errorf("%w %q: %v", ErrInvalidInterval, text, err)
	}
	months, err := wholeUnits(parsed.Months, "months")
	if err != nil {
		return Interval{}, fmt.Errorf("%w %q: %v", ErrInvalidInterval, text, err)
	}
	weeks, err := wholeUnits(parsed.Weeks, "weeks")
	if err != nil {
		return Interval{}, fmt.Errorf("%w %q: %v", ErrInvalidInterval, text, err)
	}
	days, err := wholeUnits(parsed.Days, "days")
	if err != nil {
		return Interval{}, fmt.Errorf("%w %q: %v", ErrInvalidInterval, text, err)
	}

	seconds := parsed.Hours*60*60 + parsed.Minutes*60 + parsed.Seconds
	days += weeks*7 + int(math.Floor(seconds/secondsPerDay))

	return Interval{
		Years:    years,
		Months:   months,
		Days:     days,
		Negative: parsed.Negative,
		text:     text,
	}, nil
}

// checkComponents rejects durations without any component, such as "P",
// "PT", and "P1DT".
func checkComponents(text string) error {
	if !strings.ContainsAny(text, "0123456789") {
		return errors.New("no components")
	}
	if strings.HasSuffix(text, "T") {
		return errors.New("time designator without components")
	}
	return nil
}

func wholeUnits(value float64, unit string) (int, error) {
	if value != math.Trunc(value) {
		return 0, fmt.Errorf("%s must be a whole number, got %v", unit, value)
	}
	if value > math.MaxInt32 || value < math.MinInt32 {
		return 0, fmt.Errorf("%s out of range", unit)
	}
	return int(value), nil
}

// String returns the interval as it was written.
func (i Interval) String() string {
	return i.text
}

// IsZero reports whether adding the interval leaves every date unchanged.
func (i Interval) IsZero() bool {
	return i.Years == 0 && i.Months == 0 && i.Days == 0
}

// AddTo returns date advanced by the interval. Only the calendar date of the
// input is used; the result is midnight UTC.
func (i Interval) AddTo(date time.Time) time.Time {
	sign := 1
	if i.Negative {
		sign = -1
	}

	year, month, day := date.Date()
	monthIndex := int(month) - 1 + sign*(i.Years*12+i.Months)
	year += floorDiv(monthIndex, 12)
	month = time.Month(monthIndex - floorDiv(monthIndex, 12)*12 + 1)
	if last := daysIn(year, month); day > last {
		day = last
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, sign*i.Days)
}

// Occurrences returns the next count dates reached by repeatedly adding the
// interval to from.
func (i Interval) Occurrences(from time.Time, count int) []time.Time {
	if count <= 0 {
		return []time.Time{}
	}
	out := make([]time.Time, 0, count)
	cursor := from
	for n := 0; n < count; n++ {
		cursor = i.AddTo(cursor)
		out = append(out, cursor)
	}
	return out
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

var dateLayouts = []string{
	DateLayout,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseDate parses a calendar date. A date-time value is accepted and
// reduced to the date written in it; a zone offset, if any, is ignored.
func ParseDate(value string) (time.Time, error) {
	text := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		year, month, day := parsed.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, value)
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}
