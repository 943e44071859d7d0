// Package validation holds the input checks that run at the UI edge,
// before values reach the habits repository. The repository itself stores
// what it is given; anything user-typed is vetted here first.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// MaxProductiveHours is the upper bound for a day's productive hours.
	MaxProductiveHours = 20
	// MaxHabitNameLen keeps habit names renderable in a grid row.
	MaxHabitNameLen = 80
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)

// ProductiveHours checks a raw hours entry. The value is hours with an
// optional two-digit fractional part read as minutes (00-59), not as a
// decimal fraction: "2.45" is 2h45m, "2.75" is invalid. Empty means
// "cleared" and is always accepted.
func ProductiveHours(raw string) error {
	if raw == "" {
		return nil
	}
	whole, frac, hasFrac := strings.Cut(raw, ".")
	hours, err := strconv.Atoi(whole)
	if err != nil || whole == "" {
		return fmt.Errorf("hours must be numeric, got %q", raw)
	}
	if hours < 0 || hours > MaxProductiveHours {
		return fmt.Errorf("hours must be between 0 and %d, got %q", MaxProductiveHours, raw)
	}
	if !hasFrac {
		return nil
	}
	if len(frac) == 0 || len(frac) > 2 {
		return fmt.Errorf("minutes part must be one or two digits, got %q", raw)
	}
	minutes, err := strconv.Atoi(frac)
	if err != nil {
		return fmt.Errorf("minutes part must be numeric, got %q", raw)
	}
	if minutes > 59 {
		return fmt.Errorf("minutes part must be 00-59, got %q", raw)
	}
	if hours == MaxProductiveHours && minutes > 0 {
		return fmt.Errorf("hours cannot exceed %d, got %q", MaxProductiveHours, raw)
	}
	return nil
}

// HabitName checks a habit rename. Names are free-form but must be
// non-empty after trimming.
func HabitName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("habit name cannot be empty")
	}
	if len(trimmed) > MaxHabitNameLen {
		return fmt.Errorf("habit name too long (max %d characters)", MaxHabitNameLen)
	}
	return nil
}

// Username checks the inner part of a username (without the "@" prefix)
// against the account contract: lowercase letters, digits, underscore,
// 3-20 characters.
func Username(name string) error {
	name = strings.TrimPrefix(strings.ToLower(name), "@")
	if !usernamePattern.MatchString(name) {
		return fmt.Errorf("username must match [a-z0-9_]{3,20}, got %q", name)
	}
	return nil
}
