// Package datekit holds the pure calendar helpers the grid views and the
// stats queries are built on. Dates are handled as zero-padded strings
// throughout, so classification and range filtering reduce to string
// comparison.
package datekit

import (
	"time"

	"github.com/julianstephens/habitgrid/internal/models"
)

// DayClass is the result of classifying a date against a reference day.
type DayClass int

const (
	Past DayClass = iota
	Present
	Future
)

// DaysInMonth returns the number of days in the given 1-based month,
// applying the Gregorian leap rule (divisible by 4, not by 100, unless by
// 400). Inputs are a caller contract, not runtime-checked.
func DaysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	}
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// MonthDates returns every date of the month in order.
func MonthDates(m models.Month) []models.Date {
	year, month := m.Year(), m.Number()
	n := DaysInMonth(year, month)
	dates := make([]models.Date, 0, n)
	for day := 1; day <= n; day++ {
		dates = append(dates, models.DateOf(year, month, day))
	}
	return dates
}

// YearDates returns every date of the year, the twelve months concatenated
// in order.
func YearDates(year int) []models.Date {
	size := 365
	if IsLeapYear(year) {
		size = 366
	}
	dates := make([]models.Date, 0, size)
	for month := 1; month <= 12; month++ {
		dates = append(dates, MonthDates(models.MonthOf(year, month))...)
	}
	return dates
}

// Classify orders d against the reference day. Zero-padded YYYY-MM-DD
// strings order lexically, so no parsing is needed.
func Classify(d, reference models.Date) DayClass {
	switch {
	case d < reference:
		return Past
	case d > reference:
		return Future
	default:
		return Present
	}
}

// Today returns the current local date.
func Today() models.Date {
	return FromTime(time.Now())
}

// FromTime converts a time.Time to its local calendar date.
func FromTime(t time.Time) models.Date {
	return models.DateOf(t.Year(), int(t.Month()), t.Day())
}

// CurrentMonth returns the month containing the current local date.
func CurrentMonth() models.Month {
	now := time.Now()
	return models.MonthOf(now.Year(), int(now.Month()))
}
