package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitgrid/internal/backup"
	"github.com/julianstephens/habitgrid/internal/storage"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false

	// Check 1: cache reachable
	if err := checkCacheReachable(ctx); err != nil {
		fmt.Printf("❌ Cache reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Cache reachable: OK\n")
	}

	// Check 2: remote store reachable
	if err := checkRemoteReachable(ctx); err != nil {
		fmt.Printf("⚠ Remote store reachable: WARNING\n")
		fmt.Printf("   %v (the app still works offline)\n", err)
	} else {
		fmt.Printf("✓ Remote store reachable: OK\n")
	}

	// Check 3: session valid
	if err := checkSession(ctx); err != nil {
		fmt.Printf("⚠ Session: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Session: OK\n")
	}

	// Check 4: backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	// Check 5: no concurrent instance writing the same cache
	if err := checkConcurrentInstances(); err != nil {
		fmt.Printf("⚠ Concurrent instances: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Concurrent instances: OK\n")
	}

	// Check 6: clock/timezone sanity
	if err := checkClockTimezone(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkCacheReachable(ctx *Context) error {
	if err := ctx.Cache.Load(); err != nil {
		return fmt.Errorf("failed to load cache: %w", err)
	}

	if sqliteStore, ok := ctx.Cache.(*storage.SQLiteStore); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query cache database: %w", err)
		}
	}
	return nil
}

func checkRemoteReachable(ctx *Context) error {
	pingCtx, cancel := context.WithTimeout(context.Background(), ctx.SyncTimeout())
	defer cancel()
	if err := ctx.Remote.Ping(pingCtx); err != nil {
		return fmt.Errorf("remote store unreachable at %s: %w", ctx.Config.Redis.Addr, err)
	}
	return nil
}

func checkSession(ctx *Context) error {
	sess, ok := ctx.Cache.GetSession()
	if !ok {
		return fmt.Errorf("no stored session (signed out)")
	}
	ctx.Auth.Restore(context.Background())
	if _, ok := ctx.Auth.CurrentIdentity(); !ok {
		return fmt.Errorf("stored session for %s is expired or invalid", sess.Identity.Email)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr := backup.NewManager(ctx.Cache.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'habitgrid backup create'")
	}
	return nil
}

// checkConcurrentInstances scans the process table for another habitgrid
// process. Two instances debounce writes independently and can clobber
// each other at the remote.
func checkConcurrentInstances() error {
	procs, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	self := os.Getpid()
	binary := strings.TrimSuffix(filepath.Base(os.Args[0]), ".exe")
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		if strings.TrimSuffix(p.Executable(), ".exe") == binary {
			return fmt.Errorf("another %s process is running (pid %d)", binary, p.Pid())
		}
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	_, offset := now.Zone()
	if offset == 0 && now.Location() == time.UTC {
		fmt.Printf("   Note: timezone is UTC\n")
	}
	return nil
}
