package models

import "testing"

func TestParseDate_Valid(t *testing.T) {
	cases := []string{"2024-01-01", "2024-02-29", "2025-12-31", "1900-02-28"}
	for _, s := range cases {
		d, err := ParseDate(s)
		if err != nil {
			t.Errorf("ParseDate(%q) unexpected error: %v", s, err)
		}
		if string(d) != s {
			t.Errorf("ParseDate(%q) = %q", s, d)
		}
	}
}

func TestParseDate_Invalid(t *testing.T) {
	cases := []string{
		"",
		"2024-1-01",    // month not zero-padded
		"2024-01-1",    // day not zero-padded
		"2024-13-01",   // month out of range
		"2024-00-10",   // month zero
		"2025-02-29",   // not a leap year
		"1900-02-29",   // century non-leap
		"2024-04-31",   // April has 30 days
		"2024/01/01",   // wrong separator
		"20240101",     // no separators
		"2024-01-0a",   // non-digit
		"2024-01-01x",  // trailing garbage
		" 2024-01-01 ", // whitespace
	}
	for _, s := range cases {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) expected error", s)
		}
	}
}

func TestParseMonth(t *testing.T) {
	if _, err := ParseMonth("2024-07"); err != nil {
		t.Errorf("ParseMonth(2024-07) unexpected error: %v", err)
	}
	for _, s := range []string{"", "2024-7", "2024-13", "2024-00", "2024-07-01"} {
		if _, err := ParseMonth(s); err == nil {
			t.Errorf("ParseMonth(%q) expected error", s)
		}
	}
}

func TestDateOrdering_Lexical(t *testing.T) {
	// The whole point of zero-padding: string order equals time order.
	a := DateOf(2024, 9, 30)
	b := DateOf(2024, 10, 1)
	if !(a < b) {
		t.Errorf("expected %q < %q", a, b)
	}
	if DateOf(2024, 2, 9) >= DateOf(2024, 2, 10) {
		t.Error("expected 2024-02-09 < 2024-02-10")
	}
}

func TestDate_MonthAndIn(t *testing.T) {
	d := DateOf(2024, 3, 15)
	if d.Month() != "2024-03" {
		t.Errorf("Month() = %q, want 2024-03", d.Month())
	}
	if !d.In("2024-03") {
		t.Error("expected date to be in its own month")
	}
	if d.In("2024-04") {
		t.Error("expected date not to be in a different month")
	}
}

func TestMonth_YearAndNumber(t *testing.T) {
	m := MonthOf(2026, 9)
	if m != "2026-09" {
		t.Fatalf("MonthOf = %q", m)
	}
	if m.Year() != 2026 || m.Number() != 9 {
		t.Errorf("Year/Number = %d/%d, want 2026/9", m.Year(), m.Number())
	}
}
