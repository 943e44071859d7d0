package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/julianstephens/habitgrid/internal/auth"
	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/config"
	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/remote"
	"github.com/julianstephens/habitgrid/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Cache   string `help:"Cache file path." type:"path" default:"~/.config/habitgrid/habitgrid.db"`
	Config  string `help:"Config file path." type:"path" default:"~/.config/habitgrid/habitgrid.yaml"`
	Verbose bool   `help:"Enable debug logging."`

	Init   cli.InitCmd   `cmd:"" help:"Initialize habitgrid storage."`
	Tui    cli.TuiCmd    `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Toggle cli.ToggleCmd `cmd:"" help:"Toggle a habit's completion for a day."`
	Habit  struct {
		Add    cli.HabitAddCmd    `cmd:"" help:"Add a habit to a month."`
		Rename cli.HabitRenameCmd `cmd:"" help:"Rename a habit, keeping its history."`
		Delete cli.HabitDeleteCmd `cmd:"" help:"Delete a habit and its history for a month."`
		List   cli.HabitListCmd   `cmd:"" help:"List a month's habits."`
	} `cmd:"" help:"Manage habits."`
	Hours cli.HoursCmd `cmd:"" help:"Record productive hours for a day."`
	Stats cli.StatsCmd `cmd:"" help:"Show completion statistics."`
	Grid  cli.GridCmd  `cmd:"" help:"Print a month's habit grid."`
	Sync  cli.SyncCmd  `cmd:"" help:"Force a remote sync round trip."`

	Login    cli.LoginCmd    `cmd:"" help:"Sign in to an account."`
	Signup   cli.SignupCmd   `cmd:"" help:"Create an account."`
	Logout   cli.LogoutCmd   `cmd:"" help:"Sign out."`
	Whoami   cli.WhoamiCmd   `cmd:"" help:"Show the signed-in identity."`
	Username struct {
		Set   cli.UsernameSetCmd   `cmd:"" help:"Change your username."`
		Check cli.UsernameCheckCmd `cmd:"" help:"Check whether a username is available."`
	} `cmd:"" help:"Manage your username."`

	Doctor cli.DoctorCmd `cmd:"" help:"Run health diagnostics."`
	Backup struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a cache backup."`
		List    cli.BackupListCmd    `cmd:"" help:"List cache backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore the cache from a backup."`
	} `cmd:"" help:"Manage cache backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("habitgrid"),
		kong.Description("Monthly habit grid with local-first sync"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.3.0"},
	)

	log, err := newLogger(CLI.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Determine cache type based on extension
	var cache storage.Provider
	if strings.HasSuffix(CLI.Cache, ".json") {
		cache = storage.NewJSONStore(CLI.Cache, log)
	} else {
		cache = storage.NewSQLiteStore(CLI.Cache, log)
	}

	rs := remote.NewRedisStore(remote.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  time.Duration(cfg.Sync.TimeoutMS) * time.Millisecond,
	}, log)

	repo := habits.New(cache, rs, log,
		habits.WithDebounceWindow(time.Duration(cfg.Sync.DebounceMS)*time.Millisecond))

	appCtx := &cli.Context{
		Cache:  cache,
		Remote: rs,
		Auth:   auth.NewService(rs, cache, cfg.Auth.Secret, log),
		Repo:   repo,
		Log:    log,
		Config: cfg,
	}

	err = ctx.Run(appCtx)
	if closeErr := rs.Close(); closeErr != nil {
		log.Warn("failed to close remote store", zap.Error(closeErr))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes structured logs to a file next to the cache rather
// than stderr, which the TUI owns.
func newLogger(verbose bool) (*zap.Logger, error) {
	logDir := filepath.Join(os.TempDir(), "habitgrid")
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(logDir, "habitgrid.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
