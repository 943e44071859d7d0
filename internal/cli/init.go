package cli

import "fmt"

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Cache.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized habitgrid cache at: %s\n", ctx.Cache.GetConfigPath())
	return nil
}
