package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/julianstephens/habitgrid/internal/auth"
	"github.com/julianstephens/habitgrid/internal/config"
	"github.com/julianstephens/habitgrid/internal/datekit"
	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/remote"
	"github.com/julianstephens/habitgrid/internal/storage"
)

// Context carries the wired application services into every command.
type Context struct {
	Cache  storage.Provider
	Remote *remote.RedisStore
	Auth   *auth.Service
	Repo   *habits.Repository
	Log    *zap.Logger
	Config config.Config
}

// StartSession loads the cache, restores the signed-in identity and
// resolves the repository. Commands that read remote-authoritative state
// additionally call WaitForSync; the rest run on the cache hydrate.
func (c *Context) StartSession(ctx context.Context) error {
	if err := c.Cache.Load(); err != nil {
		return err
	}
	c.Auth.Restore(ctx)
	if ident, ok := c.Auth.CurrentIdentity(); ok {
		c.Repo.Resolve(&ident)
	} else {
		c.Repo.Resolve(nil)
	}
	return nil
}

// FinishSession pushes any pending debounced write and closes the cache.
// A one-shot process that skips this can die inside the quiet window and
// silently drop its last mutation.
func (c *Context) FinishSession(ctx context.Context) {
	c.Repo.Flush(ctx)
	if err := c.Cache.Close(); err != nil {
		c.Log.Warn("failed to close cache", zap.Error(err))
	}
}

// SyncTimeout returns the configured bound for remote round trips.
func (c *Context) SyncTimeout() time.Duration {
	return time.Duration(c.Config.Sync.TimeoutMS) * time.Millisecond
}

// parseDateArg resolves a --date flag value, defaulting to today.
func parseDateArg(s string) (models.Date, error) {
	if s == "" {
		return datekit.Today(), nil
	}
	date, err := models.ParseDate(s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return date, nil
}

// parseMonthArg resolves a --month flag value, defaulting to the current
// month.
func parseMonthArg(s string) (models.Month, error) {
	if s == "" {
		return datekit.CurrentMonth(), nil
	}
	month, err := models.ParseMonth(s)
	if err != nil {
		return "", fmt.Errorf("invalid month %q: %w", s, err)
	}
	return month, nil
}

// findHabitIndex resolves a habit by exact name within a month.
func findHabitIndex(habitList []string, name string) (int, error) {
	for i, h := range habitList {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no habit named %q this month", name)
}
