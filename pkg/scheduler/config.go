package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/arnavshah/rota-api-go/pkg/models"
)

const (
	DefaultQuota              = 2
	DefaultMaxDaysPerEmployee = 5
	DefaultMaxAttempts        = 1000
	DefaultTimeout            = 5 * time.Second
)

// DefaultDays is the reference scheduling period
var DefaultDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DefaultShifts is the reference shift set
var DefaultShifts = []string{"morning", "afternoon", "evening"}

// Config describes one scheduling problem and its retry budget.
// Days and Shifts are iterated in the given order.
type Config struct {
	Days               []string
	Shifts             []string
	Quota              int
	MaxDaysPerEmployee int

	// MaxAttempts and Timeout bound the retry driver. A value <= 0 disables
	// that bound; when both are disabled the defaults apply.
	MaxAttempts int
	Timeout     time.Duration

	// Workers > 1 runs attempts concurrently; the first success wins.
	Workers int
}

// DefaultConfig returns the reference week: 7 days, 3 shifts, quota 2, at most 5 days each
func DefaultConfig() Config {
	return Config{
		Days:               append([]string(nil), DefaultDays...),
		Shifts:             append([]string(nil), DefaultShifts...),
		Quota:              DefaultQuota,
		MaxDaysPerEmployee: DefaultMaxDaysPerEmployee,
		MaxAttempts:        DefaultMaxAttempts,
		Timeout:            DefaultTimeout,
		Workers:            1,
	}
}

// Apply overlays the non-zero fields of a request profile. The retry budget
// fields can only tighten c: attempts, timeout and workers never exceed c's.
func (c Config) Apply(p models.Profile) Config {
	if len(p.Days) > 0 {
		c.Days = p.Days
	}
	if len(p.Shifts) > 0 {
		c.Shifts = p.Shifts
	}
	if p.Quota != 0 {
		c.Quota = p.Quota
	}
	if p.MaxDaysPerEmployee != 0 {
		c.MaxDaysPerEmployee = p.MaxDaysPerEmployee
	}
	if p.MaxAttempts > 0 && (c.MaxAttempts <= 0 || p.MaxAttempts < c.MaxAttempts) {
		c.MaxAttempts = p.MaxAttempts
	}
	if d := time.Duration(p.TimeoutMillis) * time.Millisecond; d > 0 && (c.Timeout <= 0 || d < c.Timeout) {
		c.Timeout = d
	}
	if p.Workers > 0 && p.Workers < c.Workers {
		c.Workers = p.Workers
	}
	return c
}

func (c Config) bounded() Config {
	if c.MaxAttempts <= 0 && c.Timeout <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
		c.Timeout = DefaultTimeout
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.MaxAttempts > 0 && c.Workers > c.MaxAttempts {
		c.Workers = c.MaxAttempts
	}
	return c
}

// Validate rejects malformed input before any attempt is made
func Validate(roster models.Roster, cfg Config) error {
	if cfg.Quota <= 0 {
		return invalid("quota must be positive, got %d", cfg.Quota)
	}
	if cfg.MaxDaysPerEmployee <= 0 {
		return invalid("max days per employee must be positive, got %d", cfg.MaxDaysPerEmployee)
	}
	if err := checkLabels("day", cfg.Days); err != nil {
		return err
	}
	if err := checkLabels("shift", cfg.Shifts); err != nil {
		return err
	}

	shifts := make(map[string]bool, len(cfg.Shifts))
	for _, s := range cfg.Shifts {
		shifts[s] = true
	}
	for _, id := range sortedIDs(roster) {
		prefs := roster[id]
		if id == "" {
			return invalid("employee ID must not be empty")
		}
		if prefs.First == prefs.Second {
			return invalid("employee %s has identical preferences %q", id, prefs.First)
		}
		if !shifts[prefs.First] {
			return invalid("employee %s first preference %q is not a known shift", id, prefs.First)
		}
		if !shifts[prefs.Second] {
			return invalid("employee %s second preference %q is not a known shift", id, prefs.Second)
		}
	}

	if len(roster) < cfg.Quota {
		return invalid("roster has %d employees, at least %d required", len(roster), cfg.Quota)
	}
	return nil
}

func checkLabels(kind string, labels []string) error {
	if len(labels) == 0 {
		return invalid("at least one %s is required", kind)
	}
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if l == "" {
			return invalid("%s label must not be empty", kind)
		}
		if seen[l] {
			return invalid("duplicate %s %q", kind, l)
		}
		seen[l] = true
	}
	return nil
}

// checkCapacity catches rosters that no permutation can ever satisfy
func checkCapacity(roster models.Roster, cfg Config) *InfeasibleError {
	perDay := len(cfg.Shifts) * cfg.Quota
	if len(roster) < perDay {
		return &InfeasibleError{
			Reason: fmt.Sprintf("each day needs %d distinct employees, roster has %d", perDay, len(roster)),
		}
	}
	daysEach := cfg.MaxDaysPerEmployee
	if daysEach > len(cfg.Days) {
		daysEach = len(cfg.Days)
	}
	seats := perDay * len(cfg.Days)
	if len(roster)*daysEach < seats {
		return &InfeasibleError{
			Reason: fmt.Sprintf("period needs %d seats, roster can work at most %d", seats, len(roster)*daysEach),
		}
	}
	return nil
}

func sortedIDs(roster models.Roster) []string {
	ids := make([]string, 0, len(roster))
	for id := range roster {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Check runs Validate and then the capacity check without attempting a schedule
func Check(roster models.Roster, cfg Config) error {
	if err := Validate(roster, cfg); err != nil {
		return err
	}
	if err := checkCapacity(roster, cfg); err != nil {
		return err
	}
	return nil
}
