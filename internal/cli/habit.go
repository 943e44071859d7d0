package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitgrid/internal/validation"
)

type HabitAddCmd struct {
	Month string `help:"Month to add to (YYYY-MM). Defaults to the current month."`
	Name  string `help:"Name for the new habit. Defaults to a placeholder."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.StartSession(bg); err != nil {
		return err
	}
	defer ctx.FinishSession(bg)

	month, err := parseMonthArg(c.Month)
	if err != nil {
		return err
	}

	ctx.Repo.AddHabit(month)

	habitList := ctx.Repo.HabitsForMonth(month)
	if c.Name != "" {
		if err := validation.HabitName(c.Name); err != nil {
			return err
		}
		ctx.Repo.SetHabitName(month, len(habitList)-1, c.Name)
		fmt.Printf("Added habit %q to %s\n", c.Name, month)
		return nil
	}
	fmt.Printf("Added habit %q to %s\n", habitList[len(habitList)-1], month)
	return nil
}

type HabitRenameCmd struct {
	Old   string `arg:"" help:"Current habit name."`
	New   string `arg:"" help:"New habit name."`
	Month string `help:"Month to rename in (YYYY-MM). Defaults to the current month."`
}

func (c *HabitRenameCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.StartSession(bg); err != nil {
		return err
	}
	defer ctx.FinishSession(bg)

	month, err := parseMonthArg(c.Month)
	if err != nil {
		return err
	}
	if err := validation.HabitName(c.New); err != nil {
		return err
	}

	idx, err := findHabitIndex(ctx.Repo.HabitsForMonth(month), c.Old)
	if err != nil {
		return err
	}

	ctx.Repo.SetHabitName(month, idx, c.New)
	fmt.Printf("Renamed %q to %q for %s (completion history carried over)\n", c.Old, c.New, month)
	return nil
}

type HabitDeleteCmd struct {
	Name  string `arg:"" help:"Habit name to delete."`
	Month string `help:"Month to delete from (YYYY-MM). Defaults to the current month."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.StartSession(bg); err != nil {
		return err
	}
	defer ctx.FinishSession(bg)

	month, err := parseMonthArg(c.Month)
	if err != nil {
		return err
	}

	idx, err := findHabitIndex(ctx.Repo.HabitsForMonth(month), c.Name)
	if err != nil {
		return err
	}

	ctx.Repo.DeleteHabit(month, idx)
	fmt.Printf("Deleted habit %q from %s\n", c.Name, month)
	return nil
}

type HabitListCmd struct {
	Month string `help:"Month to list (YYYY-MM). Defaults to the current month."`
}

func (c *HabitListCmd) Run(ctx *Context) error {
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

	fmt.Printf("Habits for %s:\n", month)
	for i, h := range habitList {
		fmt.Printf("  %d. %s\n", i+1, h)
	}
	return nil
}
