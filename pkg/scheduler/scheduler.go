package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arnavshah/rota-api-go/pkg/models"
	"github.com/sirupsen/logrus"
)

// Scheduler assigns roster employees to (day, shift) slots using a greedy
// three-pass policy and restarts from scratch whenever a slot cannot be filled.
// It is a bounded randomized search, not a constraint solver: it suits small
// rosters and tiny quotas and gives up with an InfeasibleError otherwise.
type Scheduler struct {
	cfg  Config
	seed int64
	rng  *rand.Rand
	log  logrus.FieldLogger
	mu   sync.Mutex
}

// Option customises a Scheduler
type Option func(*Scheduler)

// WithSeed makes runs reproducible: the same seed, roster and config yield the same Schedule
func WithSeed(seed int64) Option {
	return func(s *Scheduler) {
		s.seed = seed
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand injects a random source. Result.Seed is reported as 0.
func WithRand(r *rand.Rand) Option {
	return func(s *Scheduler) {
		s.seed = 0
		s.rng = r
	}
}

// WithLogger sets the logger used for attempt diagnostics
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Scheduler) {
		s.log = log
	}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg Config, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg: cfg.bounded(),
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.seed = time.Now().UnixNano()
		s.rng = rand.New(rand.NewSource(s.seed))
	}
	return s
}

// Config returns the effective configuration, with retry bounds filled in
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Result is a complete schedule plus the winning attempt's final counters
type Result struct {
	Schedule  models.Schedule
	Workloads map[string]models.Workload
	Stats     models.PreferenceStats
	Attempts  int
	Seed      int64
	Elapsed   time.Duration
}

// Schedule builds a full schedule for roster or reports why it cannot.
// Errors wrap ErrInvalidInput or ErrInfeasible; a cancelled ctx returns ctx.Err() wrapped.
func (s *Scheduler) Schedule(ctx context.Context, roster models.Roster) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := Validate(roster, s.cfg); err != nil {
		return nil, err
	}
	if err := checkCapacity(roster, s.cfg); err != nil {
		s.log.WithField("reason", err.Reason).Warn("roster cannot cover every slot")
		return nil, err
	}

	ids := sortedIDs(roster)
	start := time.Now()

	budget := ctx
	cancel := func() {}
	if s.cfg.Timeout > 0 {
		budget, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
	}
	defer cancel()

	var (
		res *Result
		err error
	)
	if s.cfg.Workers > 1 {
		res, err = s.scheduleParallel(ctx, budget, roster, ids, start)
	} else {
		res, err = s.scheduleSequential(ctx, budget, roster, ids, start)
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"attempts": res.Attempts,
		"elapsed":  res.Elapsed,
		"seed":     res.Seed,
	}).Info("schedule generated")
	return res, nil
}

func (s *Scheduler) scheduleSequential(ctx, budget context.Context, roster models.Roster, ids []string, start time.Time) (*Result, error) {
	var last *SlotUnderfilledError
	n := 0
	for s.cfg.MaxAttempts <= 0 || n < s.cfg.MaxAttempts {
		if budget.Err() != nil {
			return nil, s.stopped(ctx, n, start, last)
		}
		n++

		a := newAttempt(&s.cfg, roster, ids, s.rng)
		err := a.run()
		if err == nil {
			return s.result(a, n, start), nil
		}
		if !errors.As(err, &last) {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{
			"attempt": n,
			"day":     last.Day,
			"shift":   last.Shift,
			"filled":  last.Filled,
		}).Debug("attempt abandoned")
	}
	return nil, s.exhausted("retry limit reached", n, start, last)
}

// scheduleParallel runs attempts on Workers goroutines, each with its own
// random source derived from the scheduler's. The attempt budget is shared.
func (s *Scheduler) scheduleParallel(ctx, budget context.Context, roster models.Roster, ids []string, start time.Time) (*Result, error) {
	run, stop := context.WithCancel(budget)
	defer stop()

	var (
		started atomic.Int64
		wg      sync.WaitGroup
		mu      sync.Mutex
		winner  *Result
		last    *SlotUnderfilledError
	)

	seeds := make([]int64, s.cfg.Workers)
	for i := range seeds {
		seeds[i] = s.rng.Int63()
	}

	for w := 0; w < s.cfg.Workers; w++ {
		wg.Add(1)
		go func(rng *rand.Rand) {
			defer wg.Done()
			for run.Err() == nil {
				n := int(started.Add(1))
				if s.cfg.MaxAttempts > 0 && n > s.cfg.MaxAttempts {
					return
				}
				a := newAttempt(&s.cfg, roster, ids, rng)
				err := a.run()

				mu.Lock()
				if err == nil {
					if winner == nil {
						winner = s.result(a, n, start)
						stop()
					}
					mu.Unlock()
					return
				}
				errors.As(err, &last)
				mu.Unlock()
			}
		}(rand.New(rand.NewSource(seeds[w])))
	}
	wg.Wait()

	if winner != nil {
		return winner, nil
	}
	n := int(started.Load())
	if s.cfg.MaxAttempts > 0 && n > s.cfg.MaxAttempts {
		n = s.cfg.MaxAttempts
	}
	if budget.Err() != nil {
		return nil, s.stopped(ctx, n, start, last)
	}
	return nil, s.exhausted("retry limit reached", n, start, last)
}

// stopped distinguishes caller cancellation from the scheduler's own timeout
func (s *Scheduler) stopped(ctx context.Context, n int, start time.Time, last *SlotUnderfilledError) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scheduling abandoned after %d attempts: %w", n, err)
	}
	return s.exhausted("time limit reached", n, start, last)
}

func (s *Scheduler) exhausted(reason string, n int, start time.Time, last *SlotUnderfilledError) error {
	err := &InfeasibleError{
		Attempts: n,
		Elapsed:  time.Since(start),
		Reason:   reason,
		Last:     last,
	}
	fields := logrus.Fields{"attempts": n, "reason": reason}
	if last != nil {
		fields["last_failure"] = last.Error()
	}
	s.log.WithFields(fields).Warn("no feasible schedule found")
	return err
}

func (s *Scheduler) result(a *attempt, n int, start time.Time) *Result {
	return &Result{
		Schedule:  a.schedule,
		Workloads: a.workloads(),
		Stats:     a.stats,
		Attempts:  n,
		Seed:      s.seed,
		Elapsed:   time.Since(start),
	}
}
