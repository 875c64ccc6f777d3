package handlers

import (
	"errors"
	"net/http"

	"github.com/arnavshah/rota-api-go/pkg/models"
	"github.com/arnavshah/rota-api-go/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

// ValidateInput checks a scheduling request without running it
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	employees, ok := h.employeesFor(c, input.Employees)
	if !ok {
		return
	}
	cfg := h.Scheduling.Apply(input.Profile)

	if err := scheduler.Check(models.RosterOf(employees), cfg); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"valid":      false,
			"error":      err.Error(),
			"infeasible": errors.Is(err, scheduler.ErrInfeasible),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"employee_count": len(employees),
			"slot_count":     len(cfg.Days) * len(cfg.Shifts),
			"seats":          len(cfg.Days) * len(cfg.Shifts) * cfg.Quota,
		},
	})
}
