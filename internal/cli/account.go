package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
)

type LoginCmd struct {
	Email string `arg:"" optional:"" help:"Account email. Prompted for when omitted."`
}

func (c *LoginCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.Cache.Load(); err != nil {
		return err
	}
	defer ctx.FinishSession(bg)

	email := c.Email
	var password string

	fields := []huh.Field{}
	if email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&email))
	}
	fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password))
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	authCtx, cancel := context.WithTimeout(bg, ctx.SyncTimeout())
	defer cancel()
	ident, err := ctx.Auth.SignIn(authCtx, email, password)
	if err != nil {
		return err
	}

	ctx.Repo.Resolve(&ident)
	if err := ctx.Repo.WaitForSync(authCtx); err != nil {
		ctx.Log.Warn("initial sync incomplete, continuing on local data")
	}

	fmt.Printf("Signed in as %s (%s)\n", ident.Username, ident.Email)
	return nil
}

type SignupCmd struct {
	Email string `arg:"" optional:"" help:"Account email. Prompted for when omitted."`
}

func (c *SignupCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.Cache.Load(); err != nil {
		return err
	}
	defer ctx.FinishSession(bg)

	email := c.Email
	var password, username, displayName string

	fields := []huh.Field{}
	if email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&email))
	}
	fields = append(fields,
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
		huh.NewInput().Title("Username").Description("3-20 characters: a-z, 0-9, underscore").Value(&username),
		huh.NewInput().Title("Display name (optional)").Value(&displayName),
	)
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	authCtx, cancel := context.WithTimeout(bg, ctx.SyncTimeout())
	defer cancel()
	ident, err := ctx.Auth.SignUp(authCtx, email, password, username, displayName)
	if err != nil {
		return err
	}

	ctx.Repo.Resolve(&ident)
	if err := ctx.Repo.WaitForSync(authCtx); err != nil {
		ctx.Log.Warn("initial sync incomplete, continuing on local data")
	}

	fmt.Printf("Welcome, %s! Account created for %s\n", ident.Username, ident.Email)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.StartSession(bg); err != nil {
		return err
	}
	defer ctx.FinishSession(bg)

	if _, ok := ctx.Auth.CurrentIdentity(); !ok {
		fmt.Println("Not signed in.")
		return nil
	}

	// Any pending write goes out before the session ends.
	ctx.Repo.Flush(bg)
	ctx.Repo.SignOut()
	if err := ctx.Auth.SignOut(); err != nil {
		return err
	}
	fmt.Println("Signed out. Local data is kept for your next sign-in.")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.Cache.Load(); err != nil {
		return err
	}
	defer func() {
		if err := ctx.Cache.Close(); err != nil {
			ctx.Log.Warn("failed to close cache")
		}
	}()

	ctx.Auth.Restore(bg)
	ident, ok := ctx.Auth.CurrentIdentity()
	if !ok {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("%s\n", ident.Username)
	if ident.DisplayName != "" {
		fmt.Printf("  name:  %s\n", ident.DisplayName)
	}
	fmt.Printf("  email: %s\n", ident.Email)
	return nil
}

type UsernameSetCmd struct {
	Username string `arg:"" help:"New username."`
}

func (c *UsernameSetCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.StartSession(bg); err != nil {
		return err
	}
	defer ctx.FinishSession(bg)

	authCtx, cancel := context.WithTimeout(bg, ctx.SyncTimeout())
	defer cancel()
	ident, err := ctx.Auth.SetUsername(authCtx, c.Username)
	if err != nil {
		return err
	}
	fmt.Printf("Username changed to %s\n", ident.Username)
	return nil
}

type UsernameCheckCmd struct {
	Username string `arg:"" help:"Candidate username."`
}

func (c *UsernameCheckCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.Cache.Load(); err != nil {
		return err
	}
	defer func() {
		if err := ctx.Cache.Close(); err != nil {
			ctx.Log.Warn("failed to close cache")
		}
	}()

	authCtx, cancel := context.WithTimeout(bg, ctx.SyncTimeout())
	defer cancel()
	available, err := ctx.Auth.IsUsernameAvailable(authCtx, c.Username)
	if err != nil {
		return err
	}
	if available {
		fmt.Printf("✓ %s is available\n", c.Username)
	} else {
		fmt.Printf("✗ %s is taken\n", c.Username)
	}
	return nil
}
