package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/habitgrid/internal/datekit"
)

type GridCmd struct {
	Month string `help:"Month to render (YYYY-MM). Defaults to the current month."`
}

// Run prints the month as one row per habit with a cell per day, the
// same layout the TUI renders interactively.
func (c *GridCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.StartSession(bg); err != nil {
		return err
	}
	defer ctx.FinishSession(bg)

	month, err := parseMonthArg(c.Month)
	if err != nil {
		return err
	}

	habitList := ctx.Repo.HabitsForMonth(month)
	if len(habitList) == 0 {
		fmt.Printf("No habits for %s.\n", month)
		return nil
	}

	dates := datekit.MonthDates(month)
	today := datekit.Today()

	nameWidth := 0
	for _, h := range habitList {
		if len(h) > nameWidth {
			nameWidth = len(h)
		}
	}

	// Header: day-of-month digits, tens then ones.
	var tens, ones strings.Builder
	for i := range dates {
		day := i + 1
		if day >= 10 {
			tens.WriteByte(byte('0' + day/10))
		} else {
			tens.WriteByte(' ')
		}
		ones.WriteByte(byte('0' + day%10))
	}
	fmt.Printf("%s  grid for %s\n\n", strings.Repeat(" ", nameWidth), month)
	fmt.Printf("%*s  %s\n", nameWidth, "", tens.String())
	fmt.Printf("%*s  %s\n", nameWidth, "", ones.String())

	for _, h := range habitList {
		var row strings.Builder
		for _, d := range dates {
			switch {
			case ctx.Repo.IsCompleted(d, h):
				row.WriteRune('■')
			case datekit.Classify(d, today) == datekit.Future:
				row.WriteRune(' ')
			default:
				row.WriteRune('·')
			}
		}
		fmt.Printf("%*s  %s\n", nameWidth, h, row.String())
	}

	// Hours row when any day in the month has an entry.
	var hours strings.Builder
	any := false
	for _, d := range dates {
		raw := ctx.Repo.HoursFor(d)
		if raw == "" {
			hours.WriteByte(' ')
			continue
		}
		any = true
		hours.WriteByte(raw[0])
	}
	if any {
		fmt.Printf("%*s  %s\n", nameWidth, "hours", hours.String())
	}
	return nil
}
