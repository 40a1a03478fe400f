package timedataset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var (
	ErrUnknownFrequency = errors.New("unknown frequency")
	ErrNegativePeriods  = errors.New("number of periods must be non-negative")
)

// Frequency is the spacing between consecutive observations.
type Frequency string

const (
	Daily       Frequency = "D"
	MonthEnd    Frequency = "M"
	YearEnd     Frequency = "Y"
	BusinessDay Frequency = "B"
)

var frequencyLabels = map[Frequency]string{
	Daily:       "Harian",
	MonthEnd:    "Bulanan",
	YearEnd:     "Tahunan",
	BusinessDay: "Hari Kerja",
}

// ParseFrequency accepts the single letter code, optionally followed by a label
// such as "M - Bulanan".
func ParseFrequency(s string) (Frequency, error) {
	code, _, _ := strings.Cut(strings.TrimSpace(s), " ")
	f := Frequency(strings.ToUpper(code))
	if _, ok := frequencyLabels[f]; !ok {
		return "", fmt.Errorf("%q, %w", s, ErrUnknownFrequency)
	}
	return f, nil
}

func (f Frequency) Valid() bool {
	_, ok := frequencyLabels[f]
	return ok
}

func (f Frequency) Label() string {
	return string(f) + " - " + frequencyLabels[f]
}

// Frequencies lists the supported frequencies in display order.
func Frequencies() []Frequency {
	return []Frequency{Daily, MonthEnd, YearEnd, BusinessDay}
}

var businessCalendar = newBusinessCalendar()

func newBusinessCalendar() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(us.Holidays...)
	return c
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func monthEnd(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
}

// anchor returns the first valid stamp on or after t.
func (f Frequency) anchor(t time.Time) time.Time {
	t = truncateDay(t)
	switch f {
	case MonthEnd:
		return monthEnd(t.Year(), t.Month(), t.Location())
	case YearEnd:
		return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, t.Location())
	case BusinessDay:
		for !businessCalendar.IsWorkday(t) {
			t = t.AddDate(0, 0, 1)
		}
	}
	return t
}

// next returns the stamp following an anchored stamp t.
func (f Frequency) next(t time.Time) time.Time {
	switch f {
	case MonthEnd:
		return monthEnd(t.Year(), t.Month()+1, t.Location())
	case YearEnd:
		return time.Date(t.Year()+1, time.December, 31, 0, 0, 0, 0, t.Location())
	case BusinessDay:
		t = t.AddDate(0, 0, 1)
		for !businessCalendar.IsWorkday(t) {
			t = t.AddDate(0, 0, 1)
		}
		return t
	default:
		return t.AddDate(0, 0, 1)
	}
}

// GenerateIndex returns n stamps beginning at the first stamp of freq on or after start.
func GenerateIndex(start time.Time, freq Frequency, n int) ([]time.Time, error) {
	if !freq.Valid() {
		return nil, fmt.Errorf("%q, %w", freq, ErrUnknownFrequency)
	}
	if n < 0 {
		return nil, ErrNegativePeriods
	}
	t := make([]time.Time, 0, n)
	if n == 0 {
		return t, nil
	}
	ct := freq.anchor(start)
	for i := 0; i < n; i++ {
		t = append(t, ct)
		ct = freq.next(ct)
	}
	return t, nil
}

// NextIndex returns the n stamps that follow last.
func NextIndex(last time.Time, freq Frequency, n int) ([]time.Time, error) {
	if !freq.Valid() {
		return nil, fmt.Errorf("%q, %w", freq, ErrUnknownFrequency)
	}
	if n < 0 {
		return nil, ErrNegativePeriods
	}
	t := make([]time.Time, 0, n)
	ct := freq.anchor(last)
	for i := 0; i < n; i++ {
		ct = freq.next(ct)
		t = append(t, ct)
	}
	return t, nil
}
