package database

import (
	"path/filepath"
	"testing"

	"github.com/arnavshah/rota-api-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(Config{DataPath: filepath.Join(t.TempDir(), "test.db"), Quiet: true})
	require.NoError(t, err)
	return db
}

func TestEmployeeCRUD(t *testing.T) {
	db := testDB(t)

	alice := models.Employee{ID: "E1", Name: "Alice", Prefs: models.Preferences{First: "morning", Second: "evening"}}
	bob := models.Employee{ID: "E2", Name: "Bob", Prefs: models.Preferences{First: "evening", Second: "morning"}}
	require.NoError(t, SaveEmployee(db, bob))
	require.NoError(t, SaveEmployee(db, alice))

	list, err := ListEmployees(db)
	require.NoError(t, err)
	assert.Equal(t, []models.Employee{alice, bob}, list)

	alice.Prefs = models.Preferences{First: "afternoon", Second: "morning"}
	require.NoError(t, SaveEmployee(db, alice))
	got, err := GetEmployee(db, "E1")
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	roster, err := LoadRoster(db)
	require.NoError(t, err)
	assert.Equal(t, models.Roster{"E1": alice.Prefs, "E2": bob.Prefs}, roster)

	require.NoError(t, DeleteEmployee(db, "E2"))
	assert.ErrorIs(t, DeleteEmployee(db, "E2"), ErrNotFound)
	_, err = GetEmployee(db, "E2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduleRuns(t *testing.T) {
	db := testDB(t)

	_, err := LatestRun(db, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	resp := models.ScheduleResponse{
		Days:     []string{"Monday"},
		Shifts:   []string{"morning"},
		Schedule: models.Schedule{"Monday": {"morning": {"E1", "E2"}}},
		Attempts: 3,
		Seed:     42,
	}
	id, err := SaveRun(db, 1, resp)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	latest, err := LatestRun(db, 1)
	require.NoError(t, err)
	assert.Equal(t, id, latest.RunID)
	assert.Equal(t, resp.Schedule, latest.Schedule)
	assert.Equal(t, int64(42), latest.Seed)

	_, err = LatestRun(db, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordUsage(t *testing.T) {
	db := testDB(t)

	require.NoError(t, RecordUsage(db, 7, 21, 9))
	require.NoError(t, RecordUsage(db, 7, 21, 9))

	usage, err := UsageHistory(db, 7)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 2, usage[0].RequestCount)
	assert.Equal(t, 42, usage[0].TotalSlots)
	assert.Equal(t, 18, usage[0].TotalEmployees)
}
