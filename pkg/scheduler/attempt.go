package scheduler

import (
	"math/rand"

	"github.com/arnavshah/rota-api-go/pkg/models"
)

type pass int

const (
	passFirst pass = iota
	passSecond
	passFallback
)

// scratch holds one employee's counters for a single attempt
type scratch struct {
	daysWorked int
	worked     map[string]bool // days already holding a slot
	slots      []models.SlotAssignment
}

// attempt owns a fresh schedule and private counters. The roster is only read.
type attempt struct {
	cfg      *Config
	roster   models.Roster
	ids      []string
	rng      *rand.Rand
	schedule models.Schedule
	scratch  map[string]*scratch
	stats    models.PreferenceStats
}

func newAttempt(cfg *Config, roster models.Roster, ids []string, rng *rand.Rand) *attempt {
	a := &attempt{
		cfg:      cfg,
		roster:   roster,
		ids:      ids,
		rng:      rng,
		schedule: models.NewSchedule(cfg.Days, cfg.Shifts),
		scratch:  make(map[string]*scratch, len(ids)),
	}
	for _, id := range ids {
		a.scratch[id] = &scratch{worked: make(map[string]bool, len(cfg.Days))}
	}
	return a
}

// run fills every slot day by day, returning the first underfilled slot
func (a *attempt) run() error {
	for _, day := range a.cfg.Days {
		order := a.shuffled(a.ids)
		for _, shift := range a.cfg.Shifts {
			if err := a.fill(day, shift, order); err != nil {
				return err
			}
		}
	}
	return nil
}

// fill seats employees by first preference, then second preference, then at random
func (a *attempt) fill(day, shift string, order []string) error {
	full := func() bool { return len(a.schedule[day][shift]) >= a.cfg.Quota }

	for _, id := range order {
		if full() {
			return nil
		}
		if a.available(id, day) && a.roster[id].First == shift {
			a.assign(id, day, shift, passFirst)
		}
	}

	for _, id := range order {
		if full() {
			return nil
		}
		if a.available(id, day) && a.roster[id].Second == shift && !a.seated(id, day, shift) {
			a.assign(id, day, shift, passSecond)
		}
	}

	if full() {
		return nil
	}
	var pool []string
	for _, id := range order {
		if a.available(id, day) && !a.seated(id, day, shift) {
			pool = append(pool, id)
		}
	}
	for _, id := range a.shuffled(pool) {
		if full() {
			break
		}
		a.assign(id, day, shift, passFallback)
	}

	if !full() {
		return &SlotUnderfilledError{
			Day:    day,
			Shift:  shift,
			Filled: len(a.schedule[day][shift]),
			Quota:  a.cfg.Quota,
		}
	}
	return nil
}

// available reports whether the employee may still take a slot on day
func (a *attempt) available(id, day string) bool {
	sc := a.scratch[id]
	return sc.daysWorked < a.cfg.MaxDaysPerEmployee && !sc.worked[day]
}

func (a *attempt) seated(id, day, shift string) bool {
	for _, other := range a.schedule[day][shift] {
		if other == id {
			return true
		}
	}
	return false
}

func (a *attempt) assign(id, day, shift string, p pass) {
	a.schedule[day][shift] = append(a.schedule[day][shift], id)
	sc := a.scratch[id]
	sc.daysWorked++
	sc.worked[day] = true
	sc.slots = append(sc.slots, models.SlotAssignment{Day: day, Shift: shift})

	switch p {
	case passFirst:
		a.stats.FirstChoice++
	case passSecond:
		a.stats.SecondChoice++
	default:
		a.stats.Fallback++
	}
}

func (a *attempt) shuffled(ids []string) []string {
	out := append([]string(nil), ids...)
	a.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func (a *attempt) workloads() map[string]models.Workload {
	out := make(map[string]models.Workload, len(a.scratch))
	for id, sc := range a.scratch {
		out[id] = models.Workload{
			DaysWorked:  sc.daysWorked,
			Assignments: append([]models.SlotAssignment{}, sc.slots...),
		}
	}
	return out
}
