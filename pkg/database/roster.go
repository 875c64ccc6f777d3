package database

import (
	"errors"
	"time"

	"github.com/arnavshah/rota-api-go/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Employee represents the employees table, the persisted roster
type Employee struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Name       string    `json:"name"`
	FirstPref  string    `gorm:"not null" json:"first_pref"`
	SecondPref string    `gorm:"not null" json:"second_pref"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Model converts the row to its domain form
func (e Employee) Model() models.Employee {
	return models.Employee{
		ID:    e.ID,
		Name:  e.Name,
		Prefs: models.Preferences{First: e.FirstPref, Second: e.SecondPref},
	}
}

// EmployeeFromModel converts a domain employee to a row
func EmployeeFromModel(e models.Employee) Employee {
	return Employee{
		ID:         e.ID,
		Name:       e.Name,
		FirstPref:  e.Prefs.First,
		SecondPref: e.Prefs.Second,
	}
}

// ListEmployees returns the stored roster ordered by ID
func ListEmployees(db *gorm.DB) ([]models.Employee, error) {
	var rows []Employee
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Employee, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Model())
	}
	return out, nil
}

// GetEmployee returns one employee or ErrNotFound
func GetEmployee(db *gorm.DB, id string) (models.Employee, error) {
	var row Employee
	err := db.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Employee{}, ErrNotFound
	}
	if err != nil {
		return models.Employee{}, err
	}
	return row.Model(), nil
}

// SaveEmployee creates or replaces an employee
func SaveEmployee(db *gorm.DB, e models.Employee) error {
	row := EmployeeFromModel(e)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "first_pref", "second_pref", "updated_at"}),
	}).Create(&row).Error
}

// DeleteEmployee removes an employee, returning ErrNotFound if absent
func DeleteEmployee(db *gorm.DB, id string) error {
	res := db.Where("id = ?", id).Delete(&Employee{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadRoster returns the stored roster in scheduler form
func LoadRoster(db *gorm.DB) (models.Roster, error) {
	employees, err := ListEmployees(db)
	if err != nil {
		return nil, err
	}
	return models.RosterOf(employees), nil
}
