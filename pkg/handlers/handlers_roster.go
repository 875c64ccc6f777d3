package handlers

import (
	"errors"
	"net/http"

	"github.com/arnavshah/rota-api-go/pkg/database"
	"github.com/arnavshah/rota-api-go/pkg/models"
	"github.com/gin-gonic/gin"
)

// ListEmployees returns the stored roster
func (h *Handler) ListEmployees(c *gin.Context) {
	employees, err := database.ListEmployees(h.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load roster"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employees, "count": len(employees)})
}

// GetEmployee returns one stored employee
func (h *Handler) GetEmployee(c *gin.Context) {
	e, err := database.GetEmployee(h.DB, c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load employee"})
		return
	}
	c.JSON(http.StatusOK, e)
}

// PutEmployee creates or replaces the employee named in the path
func (h *Handler) PutEmployee(c *gin.Context) {
	var e models.Employee
	if err := c.ShouldBindJSON(&e); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e.ID = c.Param("id")

	if msg := h.checkPreferences(e.Prefs); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if err := database.SaveEmployee(h.DB, e); err != nil {
		h.Log.WithError(err).WithField("employee", e.ID).Error("saving employee")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save employee"})
		return
	}
	c.JSON(http.StatusOK, e)
}

// DeleteEmployee removes an employee from the stored roster
func (h *Handler) DeleteEmployee(c *gin.Context) {
	err := database.DeleteEmployee(h.DB, c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete employee"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted"})
}

// checkPreferences validates a preference pair against the configured shifts
func (h *Handler) checkPreferences(p models.Preferences) string {
	if p.First == "" || p.Second == "" {
		return "both preferences are required"
	}
	if p.First == p.Second {
		return "preferences must differ"
	}
	known := make(map[string]bool, len(h.Scheduling.Shifts))
	for _, s := range h.Scheduling.Shifts {
		known[s] = true
	}
	if !known[p.First] || !known[p.Second] {
		return "preferences must be one of the configured shifts"
	}
	return ""
}
