package datekit

import (
	"testing"

	"github.com/julianstephens/habitgrid/internal/models"
)

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2024, 1, 31},
		{2024, 2, 29}, // leap
		{2025, 2, 28},
		{2000, 2, 29}, // divisible by 400
		{1900, 2, 28}, // century, not divisible by 400
		{2024, 4, 30},
		{2024, 12, 31},
	}
	for _, c := range cases {
		if got := DaysInMonth(c.year, c.month); got != c.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", c.year, c.month, got, c.want)
		}
	}
}

func TestYearDates_Lengths(t *testing.T) {
	cases := []struct {
		year, want int
	}{
		{2024, 366},
		{2025, 365},
		{2000, 366},
		{1900, 365},
	}
	for _, c := range cases {
		if got := len(YearDates(c.year)); got != c.want {
			t.Errorf("len(YearDates(%d)) = %d, want %d", c.year, got, c.want)
		}
	}
}

func TestMonthDates_OrderedAndBounded(t *testing.T) {
	dates := MonthDates("2024-02")
	if len(dates) != 29 {
		t.Fatalf("expected 29 dates for 2024-02, got %d", len(dates))
	}
	if dates[0] != "2024-02-01" || dates[28] != "2024-02-29" {
		t.Errorf("unexpected bounds: %s .. %s", dates[0], dates[len(dates)-1])
	}
	for i := 1; i < len(dates); i++ {
		if !(dates[i-1] < dates[i]) {
			t.Fatalf("dates out of order at %d: %s >= %s", i, dates[i-1], dates[i])
		}
	}
}

func TestClassify(t *testing.T) {
	ref := models.Date("2024-06-15")
	if Classify("2024-06-14", ref) != Past {
		t.Error("expected Past")
	}
	if Classify("2024-06-15", ref) != Present {
		t.Error("expected Today")
	}
	if Classify("2024-06-16", ref) != Future {
		t.Error("expected Future")
	}
	// Across month and year edges the string comparison must still hold.
	if Classify("2023-12-31", ref) != Past {
		t.Error("expected prior year to classify Past")
	}
	if Classify("2025-01-01", ref) != Future {
		t.Error("expected next year to classify Future")
	}
}

func TestTodayAndCurrentMonthAgree(t *testing.T) {
	if Today().Month() != CurrentMonth() {
		t.Errorf("Today() %s not in CurrentMonth() %s", Today(), CurrentMonth())
	}
}
