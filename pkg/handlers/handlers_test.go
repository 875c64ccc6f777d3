package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arnavshah/rota-api-go/pkg/auth"
	"github.com/arnavshah/rota-api-go/pkg/database"
	"github.com/arnavshah/rota-api-go/pkg/models"
	"github.com/arnavshah/rota-api-go/pkg/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*gin.Engine, *Handler, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.InitDB(database.Config{DataPath: filepath.Join(t.TempDir(), "api.db"), Quiet: true})
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	h := &Handler{
		DB:         db,
		Auth:       auth.New("jwt-secret", "master-secret"),
		Scheduling: scheduler.DefaultConfig(),
		Log:        log,
	}
	r := gin.New()
	h.Register(r, "test")
	return r, h, h.Auth.GenerateKey("tester")
}

func do(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func referenceEmployees() []models.Employee {
	prefs := [][2]string{
		{"morning", "afternoon"}, {"afternoon", "evening"}, {"evening", "morning"},
		{"morning", "evening"}, {"afternoon", "morning"}, {"evening", "afternoon"},
		{"morning", "afternoon"}, {"afternoon", "evening"}, {"evening", "morning"},
	}
	out := make([]models.Employee, len(prefs))
	for i, p := range prefs {
		id := "E" + string(rune('1'+i))
		out[i] = models.Employee{ID: id, Name: "Employee " + id, Prefs: models.Preferences{First: p[0], Second: p[1]}}
	}
	return out
}

func assertFullSchedule(t *testing.T, resp models.ScheduleResponse, quota int) {
	t.Helper()
	require.Len(t, resp.Schedule, len(resp.Days))
	for _, day := range resp.Days {
		seen := map[string]bool{}
		for _, shift := range resp.Shifts {
			slot := resp.Schedule[day][shift]
			assert.Len(t, slot, quota, "%s %s", day, shift)
			for _, id := range slot {
				assert.False(t, seen[id], "%s twice on %s", id, day)
				seen[id] = true
			}
		}
	}
	for id, wl := range resp.Workloads {
		assert.LessOrEqual(t, wl.DaysWorked, scheduler.DefaultMaxDaysPerEmployee, id)
	}
}

func TestRequiresAPIKey(t *testing.T) {
	r, _, _ := setup(t)

	w := do(r, http.MethodPost, "/api/schedule", "", models.ScheduleInput{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/schedule", "tester.forged", models.ScheduleInput{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScheduleJSON_InlineRoster(t *testing.T) {
	r, _, key := setup(t)
	seed := int64(42)

	w := do(r, http.MethodPost, "/api/schedule", key, models.ScheduleInput{Employees: referenceEmployees(), Seed: &seed})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assertFullSchedule(t, resp, 2)
	assert.Equal(t, int64(42), resp.Seed)
	assert.NotEmpty(t, resp.RunID)
	assert.GreaterOrEqual(t, resp.Attempts, 1)

	w = do(r, http.MethodGet, "/api/schedule/latest", key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var latest models.ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &latest))
	assert.Equal(t, resp.RunID, latest.RunID)
	assert.Equal(t, resp.Schedule, latest.Schedule)
}

func TestScheduleJSON_ProfileOverride(t *testing.T) {
	r, _, key := setup(t)

	employees := []models.Employee{
		{ID: "a", Prefs: models.Preferences{First: "day", Second: "night"}},
		{ID: "b", Prefs: models.Preferences{First: "night", Second: "day"}},
		{ID: "c", Prefs: models.Preferences{First: "day", Second: "night"}},
	}
	input := models.ScheduleInput{
		Employees: employees,
		Profile: models.Profile{
			Days:               []string{"Sat", "Sun"},
			Shifts:             []string{"day", "night"},
			Quota:              1,
			MaxDaysPerEmployee: 2,
		},
	}

	w := do(r, http.MethodPost, "/api/schedule", key, input)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Sat", "Sun"}, resp.Days)
	assertFullSchedule(t, resp, 1)
}

func TestScheduleJSON_Errors(t *testing.T) {
	r, _, key := setup(t)

	same := referenceEmployees()
	same[0].Prefs.Second = same[0].Prefs.First
	w := do(r, http.MethodPost, "/api/schedule", key, models.ScheduleInput{Employees: same})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "identical preferences")

	dup := referenceEmployees()
	dup[1].ID = dup[0].ID
	w = do(r, http.MethodPost, "/api/schedule", key, models.ScheduleInput{Employees: dup})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Duplicate employee ID")

	w = do(r, http.MethodPost, "/api/schedule", key, models.ScheduleInput{Employees: referenceEmployees()[:5]})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var failure models.FailureResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failure))
	assert.Zero(t, failure.Attempts)
	assert.Contains(t, failure.Reason, "each day needs 6")

	// empty stored roster
	w = do(r, http.MethodPost, "/api/schedule", key, models.ScheduleInput{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRosterCRUDThenSchedule(t *testing.T) {
	r, _, key := setup(t)

	for _, e := range referenceEmployees() {
		w := do(r, http.MethodPut, "/api/employees/"+e.ID, key, e)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := do(r, http.MethodPut, "/api/employees/bad", key, models.Employee{Prefs: models.Preferences{First: "morning", Second: "night"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/employees", key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Employees []models.Employee `json:"employees"`
		Count     int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 9, list.Count)

	w = do(r, http.MethodGet, "/api/employees/E3", key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"first":"evening"`)

	w = do(r, http.MethodPost, "/api/schedule", key, models.ScheduleInput{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assertFullSchedule(t, resp, 2)

	w = do(r, http.MethodDelete, "/api/employees/E9", key, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodDelete, "/api/employees/E9", key, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(r, http.MethodGet, "/api/employees/E9", key, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// eight employees cannot cover 42 seats at five days each
	w = do(r, http.MethodPost, "/api/schedule", key, models.ScheduleInput{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestScheduleCSV(t *testing.T) {
	r, _, key := setup(t)

	var csvBody strings.Builder
	csvBody.WriteString("id,name,first_pref,second_pref\n")
	for _, e := range referenceEmployees() {
		csvBody.WriteString(e.ID + "," + e.Name + "," + e.Prefs.First + "," + e.Prefs.Second + "\n")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("roster_file", "roster.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvBody.String()))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("seed", "7"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/schedule/csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+key)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		CSV  string `json:"csv"`
		Seed int64  `json:"seed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	lines := strings.Split(strings.TrimSpace(resp.CSV), "\n")
	assert.Equal(t, "day,shift,employee_id,employee_name", lines[0])
	assert.Len(t, lines, 1+42)
	assert.Equal(t, int64(7), resp.Seed)

	w = do(r, http.MethodPost, "/api/schedule/csv", key, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateInput(t *testing.T) {
	r, _, key := setup(t)

	w := do(r, http.MethodPost, "/api/validate", key, models.ScheduleInput{Employees: referenceEmployees()})
	require.Equal(t, http.StatusOK, w.Code)
	var ok struct {
		Valid bool           `json:"valid"`
		Stats map[string]int `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Valid)
	assert.Equal(t, 42, ok.Stats["seats"])

	w = do(r, http.MethodPost, "/api/validate", key, models.ScheduleInput{Employees: referenceEmployees()[:7]})
	require.Equal(t, http.StatusOK, w.Code)
	var bad struct {
		Valid      bool `json:"valid"`
		Infeasible bool `json:"infeasible"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bad))
	assert.False(t, bad.Valid)
	assert.True(t, bad.Infeasible)
}

func TestUsageAndRateLimit(t *testing.T) {
	r, h, key := setup(t)
	seed := int64(1)

	w := do(r, http.MethodPost, "/api/schedule", key, models.ScheduleInput{Employees: referenceEmployees(), Seed: &seed})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/usage", key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var usage struct {
		Totals map[string]int64 `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usage))
	assert.Equal(t, int64(1), usage.Totals["requests"])
	assert.Equal(t, int64(21), usage.Totals["slots"])
	assert.Equal(t, int64(9), usage.Totals["employees"])

	require.NoError(t, h.DB.Model(&database.APIKey{}).Where("name = ?", "tester").Update("rate_limit", 1).Error)
	w = do(r, http.MethodGet, "/api/usage", key, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func adminToken(t *testing.T, r *gin.Engine, h *Handler) string {
	t.Helper()
	require.NoError(t, auth.EnsureAdminExists(h.DB, "admin", "pa55"))
	w := do(r, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "pa55"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	return login.AccessToken
}

func TestRevokedKeyRejected(t *testing.T) {
	r, h, _ := setup(t)
	token := adminToken(t, r, h)

	w := do(r, http.MethodPost, "/admin/keys", token, gin.H{"name": "acme"})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		ID  uint   `json:"id"`
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(r, http.MethodGet, "/api/employees", created.Key, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, fmt.Sprintf("/admin/keys/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for i := 0; i < 2; i++ {
		w = do(r, http.MethodGet, "/api/employees", created.Key, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "revoked")
	}

	var rows int64
	require.NoError(t, h.DB.Unscoped().Model(&database.APIKey{}).Where("name = ?", "acme").Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	w = do(r, http.MethodGet, "/admin/keys", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"acme"`)

	w = do(r, http.MethodDelete, fmt.Sprintf("/admin/keys/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleJSON_BudgetCappedByServer(t *testing.T) {
	r, h, key := setup(t)
	h.Scheduling.MaxAttempts = 1
	h.Scheduling.Timeout = 0

	// tight roster: a single attempt fails about half the time
	employees := []models.Employee{
		{ID: "a", Prefs: models.Preferences{First: "X", Second: "Y"}},
		{ID: "b", Prefs: models.Preferences{First: "X", Second: "Y"}},
		{ID: "c", Prefs: models.Preferences{First: "Y", Second: "X"}},
	}
	for seed := int64(1); seed <= 64; seed++ {
		input := models.ScheduleInput{
			Employees: employees,
			Seed:      &seed,
			Profile: models.Profile{
				Days:               []string{"d1", "d2", "d3"},
				Shifts:             []string{"X", "Y"},
				Quota:              1,
				MaxDaysPerEmployee: 2,
				MaxAttempts:        -1,
				TimeoutMillis:      86400000,
				Workers:            500000,
			},
		}
		w := do(r, http.MethodPost, "/api/schedule", key, input)
		if w.Code == http.StatusOK {
			continue
		}
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		var failure models.FailureResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failure))
		assert.Equal(t, 1, failure.Attempts)
		assert.Contains(t, failure.Reason, "retry limit reached")
		return
	}
	t.Fatal("expected at least one seed to exhaust the server's single attempt")
}

func TestAdminLoginAndKeys(t *testing.T) {
	r, h, _ := setup(t)
	require.NoError(t, auth.EnsureAdminExists(h.DB, "admin", "pa55"))

	w := do(r, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "pa55"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = do(r, http.MethodPost, "/admin/keys", "", gin.H{"name": "acme"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/admin/keys", login.AccessToken, gin.H{"name": "acme"})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		ID  uint   `json:"id"`
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.Key, "acme."))

	w = do(r, http.MethodGet, "/admin/keys", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), created.Key)
	assert.Contains(t, w.Body.String(), "acm...")

	w = do(r, http.MethodGet, "/api/employees", created.Key, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPut, "/admin/keys/9999", login.AccessToken, gin.H{"rate_limit": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminInterface(t *testing.T) {
	r, _, _ := setup(t)

	w := do(r, http.MethodGet, "/admin", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Shift Rota Admin")
}
