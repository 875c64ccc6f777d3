package rosterfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arnavshah/rota-api-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "employees.json")

	f, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, f.Employees)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"roster.json", "roster.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			f, err := Load(path)
			require.NoError(t, err)
			f.Upsert(models.Employee{ID: "E2", Name: "Bob", Prefs: models.Preferences{First: "evening", Second: "morning"}})
			f.Upsert(models.Employee{ID: "E1", Name: "Alice", Prefs: models.Preferences{First: "morning", Second: "evening"}})
			f.Upsert(models.Employee{ID: "E1", Name: "Alice", Prefs: models.Preferences{First: "afternoon", Second: "evening"}})
			require.NoError(t, f.Save(path))

			got, err := Load(path)
			require.NoError(t, err)
			require.Len(t, got.Employees, 2)
			assert.Equal(t, "E1", got.Employees[0].ID)
			assert.Equal(t, "afternoon", got.Employees[0].Prefs.First)
			assert.Equal(t, map[string]string{"E1": "Alice", "E2": "Bob"}, got.Names())
			assert.Equal(t, models.Roster{
				"E1": {First: "afternoon", Second: "evening"},
				"E2": {First: "evening", Second: "morning"},
			}, got.Roster())

			assert.True(t, got.Remove("E2"))
			assert.False(t, got.Remove("E2"))
			assert.Len(t, got.Employees, 1)
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "broken.json")
}
