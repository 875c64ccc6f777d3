package scheduler

import (
	"math"

	"github.com/arnavshah/rota-api-go/pkg/models"
)

// FairnessScore returns a percentage (0-100) representing how evenly
// days are distributed. 100% is perfectly fair (Standard Deviation = 0).
func FairnessScore(workloads map[string]models.Workload) float64 {
	if len(workloads) == 0 {
		return 100.0
	}

	var sum float64
	for _, w := range workloads {
		sum += float64(w.DaysWorked)
	}
	if sum == 0 {
		return 100.0
	}

	mean := sum / float64(len(workloads))

	var varianceSum float64
	for _, w := range workloads {
		diff := float64(w.DaysWorked) - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(workloads)))

	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}

// PreferenceScore is the share of seats (0-100) filled by a first or second choice
func PreferenceScore(stats models.PreferenceStats) float64 {
	total := stats.FirstChoice + stats.SecondChoice + stats.Fallback
	if total == 0 {
		return 100.0
	}
	return float64(stats.FirstChoice+stats.SecondChoice) / float64(total) * 100.0
}

// Response flattens a Result into the API payload
func (r *Result) Response(cfg Config) models.ScheduleResponse {
	return models.ScheduleResponse{
		Days:            cfg.Days,
		Shifts:          cfg.Shifts,
		Schedule:        r.Schedule,
		Workloads:       r.Workloads,
		Stats:           r.Stats,
		PreferenceScore: PreferenceScore(r.Stats),
		FairnessScore:   FairnessScore(r.Workloads),
		Attempts:        r.Attempts,
		Seed:            r.Seed,
		ElapsedMillis:   r.Elapsed.Milliseconds(),
	}
}
