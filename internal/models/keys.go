package models

import "fmt"

// Date is a calendar day in zero-padded YYYY-MM-DD form. Because every
// component is zero-padded, lexical ordering of Date values matches
// chronological ordering, so callers may compare them with < and >.
type Date string

// Month is a calendar month in zero-padded YYYY-MM form. It orders
// lexically for the same reason Date does.
type Month string

// ParseDate validates s as a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	year, err := atoiField(s[0:4])
	if err != nil {
		return "", fmt.Errorf("invalid year in date %q", s)
	}
	month, err := atoiField(s[5:7])
	if err != nil || month < 1 || month > 12 {
		return "", fmt.Errorf("invalid month in date %q", s)
	}
	day, err := atoiField(s[8:10])
	if err != nil || day < 1 || day > daysInMonth(year, month) {
		return "", fmt.Errorf("invalid day in date %q", s)
	}
	return Date(s), nil
}

// ParseMonth validates s as a YYYY-MM month string.
func ParseMonth(s string) (Month, error) {
	if len(s) != 7 || s[4] != '-' {
		return "", fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	if _, err := atoiField(s[0:4]); err != nil {
		return "", fmt.Errorf("invalid year in month %q", s)
	}
	m, err := atoiField(s[5:7])
	if err != nil || m < 1 || m > 12 {
		return "", fmt.Errorf("invalid month in %q", s)
	}
	return Month(s), nil
}

// MonthOf builds the Month value for a year and 1-based month number.
// The inputs are a caller contract, not runtime-checked.
func MonthOf(year, month int) Month {
	return Month(fmt.Sprintf("%04d-%02d", year, month))
}

// DateOf builds the Date value for a year, 1-based month, and day.
func DateOf(year, month, day int) Date {
	return Date(fmt.Sprintf("%04d-%02d-%02d", year, month, day))
}

// Month returns the YYYY-MM prefix of the date.
func (d Date) Month() Month {
	return Month(d[:7])
}

// In reports whether the date falls inside the given month. It is the
// string-prefix check the completion-rewrite operations rely on.
func (d Date) In(m Month) bool {
	return len(d) >= 7 && Month(d[:7]) == m
}

// Year returns the four-digit year component.
func (m Month) Year() int {
	y, _ := atoiField(string(m[:4]))
	return y
}

// Number returns the 1-based month number.
func (m Month) Number() int {
	n, _ := atoiField(string(m[5:7]))
	return n
}

func atoiField(s string) (int, error) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-digit %q", c)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// daysInMonth duplicates the datekit rule so key validation does not
// depend on a higher-level package.
func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	}
}
