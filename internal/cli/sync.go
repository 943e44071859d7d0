package cli

import (
	"context"
	"fmt"
)

type SyncCmd struct{}

// Run forces a full round trip: push any pending write, then pull the
// authoritative document.
func (c *SyncCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.StartSession(bg); err != nil {
		return err
	}
	defer ctx.FinishSession(bg)

	if _, ok := ctx.Auth.CurrentIdentity(); !ok {
		return fmt.Errorf("not signed in; nothing to sync")
	}

	syncCtx, cancel := context.WithTimeout(bg, ctx.SyncTimeout())
	defer cancel()

	if err := ctx.Repo.WaitForSync(syncCtx); err != nil {
		return fmt.Errorf("initial sync timed out: %w", err)
	}
	ctx.Repo.Flush(syncCtx)
	ctx.Repo.SyncNow(syncCtx)

	doc := ctx.Repo.Snapshot()
	fmt.Printf("✓ Synced. Document last updated %s\n", doc.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}
