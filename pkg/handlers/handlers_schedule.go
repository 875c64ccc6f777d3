package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/arnavshah/rota-api-go/pkg/database"
	"github.com/arnavshah/rota-api-go/pkg/models"
	"github.com/arnavshah/rota-api-go/pkg/report"
	"github.com/arnavshah/rota-api-go/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

// ScheduleJSON builds a schedule from an inline roster, or the stored one when none is given
func (h *Handler) ScheduleJSON(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employees, ok := h.employeesFor(c, input.Employees)
	if !ok {
		return
	}

	resp, ok := h.runSchedule(c, h.Scheduling.Apply(input.Profile), employees, input.Seed)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ScheduleCSV handles a roster CSV upload (id,name,first_pref,second_pref) and returns the schedule as CSV
func (h *Handler) ScheduleCSV(c *gin.Context) {
	rosterFile, err := c.FormFile("roster_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roster_file is required"})
		return
	}

	f, err := rosterFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open roster file"})
		return
	}
	defer f.Close()

	employees, err := report.ReadRosterCSV(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if id := duplicateID(employees); id != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Duplicate employee ID: " + id})
		return
	}

	var seed *int64
	if raw := c.PostForm("seed"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seed must be an integer"})
			return
		}
		seed = &v
	}

	profile := models.Profile{}
	if days := c.PostForm("days"); days != "" {
		profile.Days = splitList(days)
	}
	if shifts := c.PostForm("shifts"); shifts != "" {
		profile.Shifts = splitList(shifts)
	}

	resp, ok := h.runSchedule(c, h.Scheduling.Apply(profile), employees, seed)
	if !ok {
		return
	}

	names := make(map[string]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}
	var out strings.Builder
	if err := report.WriteCSV(&out, resp.Schedule, resp.Days, resp.Shifts, names); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":   resp.RunID,
		"attempts": resp.Attempts,
		"seed":     resp.Seed,
		"csv":      out.String(),
	})
}

// LatestSchedule returns the last successful schedule built with the caller's key
func (h *Handler) LatestSchedule(c *gin.Context) {
	var keyID uint
	if key := currentKey(c); key != nil {
		keyID = key.ID
	}

	resp, err := database.LatestRun(h.DB, keyID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No schedule has been generated yet"})
		return
	}
	if err != nil {
		h.Log.WithError(err).Error("loading latest schedule")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load schedule"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// employeesFor returns the inline roster, or the stored one when inline is empty
func (h *Handler) employeesFor(c *gin.Context, inline []models.Employee) ([]models.Employee, bool) {
	if len(inline) > 0 {
		if id := duplicateID(inline); id != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Duplicate employee ID: " + id})
			return nil, false
		}
		return inline, true
	}

	stored, err := database.ListEmployees(h.DB)
	if err != nil {
		h.Log.WithError(err).Error("loading roster")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load roster"})
		return nil, false
	}
	return stored, true
}

// runSchedule runs the scheduler, stores the winning run and records usage.
// On failure it writes the error response and returns false.
func (h *Handler) runSchedule(c *gin.Context, cfg scheduler.Config, employees []models.Employee, seed *int64) (*models.ScheduleResponse, bool) {
	opts := []scheduler.Option{scheduler.WithLogger(h.Log)}
	if seed != nil {
		opts = append(opts, scheduler.WithSeed(*seed))
	}
	s := scheduler.NewScheduler(cfg, opts...)

	res, err := s.Schedule(c.Request.Context(), models.RosterOf(employees))
	if err != nil {
		h.scheduleError(c, err)
		return nil, false
	}
	resp := res.Response(s.Config())

	var keyID uint
	if key := currentKey(c); key != nil {
		keyID = key.ID
	}
	if runID, err := database.SaveRun(h.DB, keyID, resp); err != nil {
		h.Log.WithError(err).Warn("storing schedule run")
	} else {
		resp.RunID = runID
	}

	slots := len(resp.Days) * len(resp.Shifts)
	if err := database.RecordUsage(h.DB, keyID, slots, len(employees)); err != nil {
		h.Log.WithError(err).Warn("recording usage")
	}
	return &resp, true
}

// scheduleError maps scheduler failures onto HTTP responses
func (h *Handler) scheduleError(c *gin.Context, err error) {
	var infeasible *scheduler.InfeasibleError
	switch {
	case errors.Is(err, scheduler.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, models.FailureResponse{Error: err.Error()})
	case errors.As(err, &infeasible):
		reason := infeasible.Reason
		if infeasible.Last != nil {
			reason += "; last failure: " + infeasible.Last.Error()
		}
		c.JSON(http.StatusUnprocessableEntity, models.FailureResponse{
			Error:    scheduler.ErrInfeasible.Error(),
			Attempts: infeasible.Attempts,
			Reason:   reason,
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, models.FailureResponse{Error: "scheduling was cancelled"})
	default:
		h.Log.WithError(err).Error("scheduling failed")
		c.JSON(http.StatusInternalServerError, models.FailureResponse{Error: "Scheduling failed"})
	}
}

func duplicateID(employees []models.Employee) string {
	seen := make(map[string]bool, len(employees))
	for _, e := range employees {
		if seen[e.ID] {
			return e.ID
		}
		seen[e.ID] = true
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
