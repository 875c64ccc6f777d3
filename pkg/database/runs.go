package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/rota-api-go/pkg/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScheduleRun represents the schedule_runs table: one row per successful schedule
type ScheduleRun struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	KeyID     uint      `gorm:"index" json:"key_id"`
	Seed      int64     `json:"seed"`
	Attempts  int       `json:"attempts"`
	Payload   string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// SaveRun stores a successful schedule and returns its new run ID
func SaveRun(db *gorm.DB, keyID uint, resp models.ScheduleResponse) (string, error) {
	id := uuid.NewString()
	resp.RunID = id

	payload, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("encoding schedule: %w", err)
	}

	run := ScheduleRun{
		ID:       id,
		KeyID:    keyID,
		Seed:     resp.Seed,
		Attempts: resp.Attempts,
		Payload:  string(payload),
	}
	if err := db.Create(&run).Error; err != nil {
		return "", err
	}
	return id, nil
}

// LatestRun returns the most recent schedule stored for keyID
func LatestRun(db *gorm.DB, keyID uint) (models.ScheduleResponse, error) {
	var run ScheduleRun
	err := db.Where("key_id = ?", keyID).Order("created_at desc").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ScheduleResponse{}, ErrNotFound
	}
	if err != nil {
		return models.ScheduleResponse{}, err
	}

	var resp models.ScheduleResponse
	if err := json.Unmarshal([]byte(run.Payload), &resp); err != nil {
		return models.ScheduleResponse{}, fmt.Errorf("decoding run %s: %w", run.ID, err)
	}
	return resp, nil
}

// RecordUsage records API usage using a single-query upsert (supported by both Postgres and SQLite)
func RecordUsage(db *gorm.DB, keyID uint, slots, employees int) error {
	today := time.Now().Format("2006-01-02")
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":   gorm.Expr("request_count + ?", 1),
			"total_slots":     gorm.Expr("total_slots + ?", slots),
			"total_employees": gorm.Expr("total_employees + ?", employees),
		}),
	}).Create(&APIUsage{
		KeyID:          keyID,
		Date:           today,
		RequestCount:   1,
		TotalSlots:     slots,
		TotalEmployees: employees,
	}).Error
}

// UsageHistory returns up to 30 most recent daily usage rows for keyID
func UsageHistory(db *gorm.DB, keyID uint) ([]APIUsage, error) {
	var usage []APIUsage
	err := db.Where("key_id = ?", keyID).Order("date desc").Limit(30).Find(&usage).Error
	return usage, err
}
