package models

// Preferences is an employee's ranked shift choice pair
type Preferences struct {
	First  string `json:"first" yaml:"first"`
	Second string `json:"second" yaml:"second"`
}

// Roster maps an employee ID to its preferences
type Roster map[string]Preferences

// Employee represents a person on the roster
type Employee struct {
	ID    string      `json:"id" yaml:"id"`
	Name  string      `json:"name,omitempty" yaml:"name,omitempty"`
	Prefs Preferences `json:"prefs" yaml:"prefs"`
}

// RosterOf builds a Roster from a list of employees. Later duplicates win.
func RosterOf(employees []Employee) Roster {
	roster := make(Roster, len(employees))
	for _, e := range employees {
		roster[e.ID] = e.Prefs
	}
	return roster
}

// Schedule maps day -> shift -> ordered employee IDs
type Schedule map[string]map[string][]string

// NewSchedule returns an empty schedule with every (day, shift) slot present
func NewSchedule(days, shifts []string) Schedule {
	s := make(Schedule, len(days))
	for _, day := range days {
		s[day] = make(map[string][]string, len(shifts))
		for _, shift := range shifts {
			s[day][shift] = []string{}
		}
	}
	return s
}

// SlotAssignment is one (day, shift) seat held by an employee
type SlotAssignment struct {
	Day   string `json:"day"`
	Shift string `json:"shift"`
}

// Workload is an employee's final per-run counters
type Workload struct {
	DaysWorked  int              `json:"days_worked"`
	Assignments []SlotAssignment `json:"assignments"`
}

// PreferenceStats counts seats by the pass that filled them
type PreferenceStats struct {
	FirstChoice  int `json:"first_choice"`
	SecondChoice int `json:"second_choice"`
	Fallback     int `json:"fallback"`
}

// Profile carries per-request overrides of the scheduling constraints.
// Zero fields keep the server's configured value.
type Profile struct {
	Days               []string `json:"days,omitempty"`
	Shifts             []string `json:"shifts,omitempty"`
	Quota              int      `json:"quota,omitempty"`
	MaxDaysPerEmployee int      `json:"max_days_per_employee,omitempty"`
	MaxAttempts        int      `json:"max_attempts,omitempty"`
	TimeoutMillis      int      `json:"timeout_ms,omitempty"`
	Workers            int      `json:"workers,omitempty"`
}

// ScheduleInput is the data structure for the scheduling endpoint.
// When Employees is empty the stored roster is used.
type ScheduleInput struct {
	Employees []Employee `json:"employees"`
	Profile   Profile    `json:"profile"`
	Seed      *int64     `json:"seed,omitempty"`
}

// ScheduleResponse is the data structure for a successful scheduling result
type ScheduleResponse struct {
	RunID           string              `json:"run_id,omitempty"`
	Days            []string            `json:"days"`
	Shifts          []string            `json:"shifts"`
	Schedule        Schedule            `json:"schedule"`
	Workloads       map[string]Workload `json:"workloads"`
	Stats           PreferenceStats     `json:"stats"`
	PreferenceScore float64             `json:"preference_score"`
	FairnessScore   float64             `json:"fairness_score"`
	Attempts        int                 `json:"attempts"`
	Seed            int64               `json:"seed"`
	ElapsedMillis   int64               `json:"elapsed_ms"`
}

// FailureResponse explains why no schedule could be built
type FailureResponse struct {
	Error    string `json:"error"`
	Attempts int    `json:"attempts,omitempty"`
	Reason   string `json:"reason,omitempty"`
}
