package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitgrid/internal/validation"
)

type HoursCmd struct {
	Value string `arg:"" optional:"" help:"Productive hours as H.MM (e.g. 6.30 for six and a half hours). Empty clears the entry."`
	Date  string `help:"Date to record (YYYY-MM-DD). Defaults to today."`
}

func (c *HoursCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.StartSession(bg); err != nil {
		return err
	}
	defer ctx.FinishSession(bg)

	date, err := parseDateArg(c.Date)
	if err != nil {
		return err
	}

	if err := validation.ProductiveHours(c.Value); err != nil {
		return err
	}

	ctx.Repo.SetProductiveHours(date, c.Value)
	if c.Value == "" {
		fmt.Printf("Cleared productive hours for %s\n", date)
	} else {
		fmt.Printf("Recorded %s productive hours for %s\n", c.Value, date)
	}
	return nil
}
