package cli

import (
	"context"
	"fmt"
)

type ToggleCmd struct {
	Habit string `arg:"" help:"Habit name to toggle."`
	Date  string `help:"Date to toggle (YYYY-MM-DD). Defaults to today."`
}

func (c *ToggleCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.StartSession(bg); err != nil {
		return err
	}
	defer ctx.FinishSession(bg)

	date, err := parseDateArg(c.Date)
	if err != nil {
		return err
	}

	habitList := ctx.Repo.HabitsForMonth(date.Month())
	if _, err := findHabitIndex(habitList, c.Habit); err != nil {
		return err
	}

	ctx.Repo.ToggleCompletion(date, c.Habit)

	if ctx.Repo.IsCompleted(date, c.Habit) {
		fmt.Printf("✓ %s marked complete for %s\n", c.Habit, date)
	} else {
		fmt.Printf("○ %s marked incomplete for %s\n", c.Habit, date)
	}
	return nil
}
