package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitgrid/internal/datekit"
	"github.com/julianstephens/habitgrid/internal/models"
)

type StatsCmd struct {
	Date string `help:"Reference date (YYYY-MM-DD). Defaults to today."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.StartSession(bg); err != nil {
		return err
	}
	defer ctx.FinishSession(bg)

	// Prefer the authoritative document when the remote is reachable.
	syncCtx, cancel := context.WithTimeout(bg, ctx.SyncTimeout())
	defer cancel()
	if err := ctx.Repo.WaitForSync(syncCtx); err != nil {
		ctx.Log.Warn("sync incomplete, reporting on local data")
	}

	date, err := parseDateArg(c.Date)
	if err != nil {
		return err
	}

	stats := ctx.Repo.YearCompletionStats(date)
	fmt.Printf("Year-to-date through %s:\n", date)
	if stats.Total == 0 {
		fmt.Println("  No habits tracked yet.")
		return nil
	}
	pct := float64(stats.Completed) / float64(stats.Total) * 100
	fmt.Printf("  %d of %d habit-days completed (%.1f%%)\n\n", stats.Completed, stats.Total, pct)

	year := date.Month().Year()
	for m := 1; m <= 12; m++ {
		monthKey := models.MonthOf(year, m)
		habitList := ctx.Repo.HabitsForMonth(monthKey)
		if len(habitList) == 0 {
			continue
		}
		completed, total := 0, 0
		for _, d := range datekit.MonthDates(monthKey) {
			if datekit.Classify(d, date) == datekit.Future {
				break
			}
			total += len(habitList)
			for _, h := range habitList {
				if ctx.Repo.IsCompleted(d, h) {
					completed++
				}
			}
		}
		if total == 0 {
			continue
		}
		fmt.Printf("  %s  %4d/%-4d  %s\n", monthKey, completed, total, bar(completed, total))
	}
	return nil
}

func bar(completed, total int) string {
	const width = 20
	filled := completed * width / total
	out := make([]byte, width)
	for i := range out {
		if i < filled {
			out[i] = '#'
		} else {
			out[i] = '-'
		}
	}
	return string(out)
}
