package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/exercisetracker/internal"
	"github.com/yourname/exercisetracker/internal/storage"
)

var fixedNow = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type userJSON struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

type exerciseJSON struct {
	ID          string `json:"_id"`
	Username    string `json:"username"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

type logJSON struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Count    int    `json:"count"`
	Log      []struct {
		Description string `json:"description"`
		Duration    int    `json:"duration"`
		Date        string `json:"date"`
	} `json:"log"`
}

func setupRouterAndStorage(t *testing.T) (*gin.Engine, *storage.FileStorage, string) {
	t.Helper()
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "data.json")
	indexFile := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(indexFile, []byte("<h1>Exercise Tracker</h1>"), 0o644))

	s, err := storage.NewFileStorage(dataFile, 0, internal.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	app := NewApplication(internal.NewNopLogger(), s, s).WithClock(func() time.Time { return fixedNow })
	return NewRouter(app, RouterConfig{IndexFile: indexFile, StaticDir: dir}), s, dataFile
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createUser(t *testing.T, r http.Handler, username string) userJSON {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/users", `{"username":"`+username+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var u userJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	return u
}

func addExercise(t *testing.T, r http.Handler, userID, body string) exerciseJSON {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/users/"+userID+"/exercises", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var e exerciseJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func getLogs(t *testing.T, r http.Handler, userID, query string) logJSON {
	t.Helper()
	w := doJSON(r, http.MethodGet, "/api/users/"+userID+"/logs"+query, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var l logJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &l))
	return l
}

func TestPostUser_AndList(t *testing.T) {
	r, _, _ := setupRouterAndStorage(t)

	alice := createUser(t, r, "alice")
	assert.Equal(t, "alice", alice.Username)
	assert.NotEmpty(t, alice.ID)

	w := doJSON(r, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	var users []userJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Contains(t, users, alice)
}

func TestGetUsers_Empty(t *testing.T) {
	r, _, _ := setupRouterAndStorage(t)
	w := doJSON(r, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPostUser_FormEncoded(t *testing.T) {
	r, _, _ := setupRouterAndStorage(t)
	w := doForm(r, "/api/users", url.Values{"username": {"bob"}})
	require.Equal(t, http.StatusOK, w.Code)
	var u userJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Equal(t, "bob", u.Username)
}

func TestPostUser_Invalid(t *testing.T) {
	r, s, _ := setupRouterAndStorage(t)

	w := doJSON(r, http.MethodPost, "/api/users", `{"username":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"username is required"}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/users", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	users, _ := s.ListUsers(context.Background())
	assert.Empty(t, users)
}

func TestPostExercise(t *testing.T) {
	r, _, _ := setupRouterAndStorage(t)
	alice := createUser(t, r, "alice")

	e := addExercise(t, r, alice.ID, `{"description":"run","duration":"30","date":"2023-01-15"}`)
	assert.Equal(t, exerciseJSON{
		ID:          alice.ID,
		Username:    "alice",
		Description: "run",
		Duration:    30,
		Date:        "Sun Jan 15 2023",
	}, e)
}

func TestPostExercise_NumericDurationAndDefaultDate(t *testing.T) {
	r, _, _ := setupRouterAndStorage(t)
	alice := createUser(t, r, "alice")

	e := addExercise(t, r, alice.ID, `{"description":"swim","duration":45}`)
	assert.Equal(t, 45, e.Duration)
	assert.Equal(t, "Mon Jan 01 2024", e.Date)
}

func TestPostExercise_FormEncoded(t *testing.T) {
	r, _, _ := setupRouterAndStorage(t)
	alice := createUser(t, r, "alice")

	w := doForm(r, "/api/users/"+alice.ID+"/exercises", url.Values{
		"description": {"row"},
		"duration":    {"12"},
		"date":        {""},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var e exerciseJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.Equal(t, 12, e.Duration)
	assert.Equal(t, "Mon Jan 01 2024", e.Date)
}

func TestPostExercise_UnknownUser(t *testing.T) {
	r, _, dataFile := setupRouterAndStorage(t)

	w := doJSON(r, http.MethodPost, "/api/users/does-not-exist/exercises", `{"description":"run","duration":"30"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())

	_, err := os.Stat(dataFile)
	assert.True(t, os.IsNotExist(err), "a rejected exercise must not touch the data file")
}

func TestPostExercise_InvalidInput(t *testing.T) {
	r, s, _ := setupRouterAndStorage(t)
	alice := createUser(t, r, "alice")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"non-numeric duration", `{"description":"run","duration":"abc"}`, "duration must be an integer number of minutes"},
		{"missing duration", `{"description":"run"}`, "duration is required"},
		{"missing description", `{"duration":"30"}`, "description is required"},
		{"bad date", `{"description":"run","duration":"30","date":"not a date"}`, `date is not a valid date: "not a date"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/api/users/"+alice.ID+"/exercises", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":`+mustJSON(t, tt.want)+`}`, w.Body.String())
		})
	}

	exercises, _ := s.ListExercises(context.Background(), alice.ID)
	assert.Empty(t, exercises)
}

func TestGetLogs(t *testing.T) {
	r, _, _ := setupRouterAndStorage(t)
	alice := createUser(t, r, "alice")
	bob := createUser(t, r, "bob")

	addExercise(t, r, alice.ID, `{"description":"a","duration":"10","date":"2023-01-01"}`)
	addExercise(t, r, alice.ID, `{"description":"b","duration":"20","date":"2023-01-05"}`)
	addExercise(t, r, alice.ID, `{"description":"c","duration":"30","date":"2023-01-10"}`)
	addExercise(t, r, alice.ID, `{"description":"d","duration":"40","date":"2023-01-15"}`)
	addExercise(t, r, bob.ID, `{"description":"bob's","duration":"5","date":"2023-01-05"}`)

	descriptions := func(l logJSON) []string {
		out := []string{}
		for _, e := range l.Log {
			out = append(out, e.Description)
		}
		return out
	}

	all := getLogs(t, r, alice.ID, "")
	assert.Equal(t, alice.ID, all.ID)
	assert.Equal(t, "alice", all.Username)
	assert.Equal(t, 4, all.Count)
	assert.Equal(t, []string{"a", "b", "c", "d"}, descriptions(all))
	assert.Equal(t, "Sun Jan 01 2023", all.Log[0].Date)
	assert.Equal(t, 10, all.Log[0].Duration)

	ranged := getLogs(t, r, alice.ID, "?from=2023-01-05&to=2023-01-10")
	assert.Equal(t, []string{"b", "c"}, descriptions(ranged), "boundaries are inclusive")
	assert.Equal(t, 2, ranged.Count)

	limited := getLogs(t, r, alice.ID, "?limit=1")
	assert.Equal(t, []string{"a"}, descriptions(limited))
	assert.Equal(t, 1, limited.Count, "count reflects the returned entries")

	both := getLogs(t, r, alice.ID, "?from=2023-01-02&limit=2")
	assert.Equal(t, []string{"b", "c"}, descriptions(both))
	assert.Equal(t, 2, both.Count)

	zero := getLogs(t, r, alice.ID, "?limit=0")
	assert.Equal(t, 0, zero.Count)
	assert.Empty(t, zero.Log)

	none := getLogs(t, r, alice.ID, "?from=2024-01-01")
	assert.Equal(t, 0, none.Count)
	assert.Empty(t, none.Log)
}

func TestGetLogs_Errors(t *testing.T) {
	r, _, _ := setupRouterAndStorage(t)
	alice := createUser(t, r, "alice")

	w := doJSON(r, http.MethodGet, "/api/users/nobody/logs", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())

	for _, q := range []string{"?from=junk", "?to=junk", "?limit=x", "?limit=-3"} {
		w := doJSON(r, http.MethodGet, "/api/users/"+alice.ID+"/logs"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestDatasetPersistsAcrossRestarts(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "data.json")
	start := func() (*gin.Engine, *storage.FileStorage) {
		s, err := storage.NewFileStorage(dataFile, 0, internal.NewNopLogger())
		require.NoError(t, err)
		app := NewApplication(internal.NewNopLogger(), s, s).WithClock(func() time.Time { return fixedNow })
		return NewRouter(app, RouterConfig{}), s
	}

	r1, s1 := start()
	alice := createUser(t, r1, "alice")
	addExercise(t, r1, alice.ID, `{"description":"run","duration":"30","date":"2023-01-15"}`)
	require.NoError(t, s1.Close())

	r2, s2 := start()
	createUser(t, r2, "bob")
	l := getLogs(t, r2, alice.ID, "")
	assert.Equal(t, 1, l.Count)
	require.NoError(t, s2.Close())

	r3, s3 := start()
	defer s3.Close()
	w := doJSON(r3, http.MethodGet, "/api/users", "")
	var users []userJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

type failingRepo struct{}

var errDisk = errors.New("disk on fire")

func (failingRepo) CreateUser(context.Context, *internal.User) error {
	return errDisk
}

func (failingRepo) GetUser(_ context.Context, id string) (*internal.User, error) {
	return &internal.User{ID: id, Username: "ghost"}, nil
}

func (failingRepo) ListUsers(context.Context) ([]internal.User, error) {
	return nil, errDisk
}

func (failingRepo) AddExercise(context.Context, *internal.Exercise) error {
	return errDisk
}

func (failingRepo) ListExercises(context.Context, string) ([]internal.Exercise, error) {
	return nil, errDisk
}

func TestStoreFailures_Return500WithoutCause(t *testing.T) {
	app := NewApplication(internal.NewNopLogger(), failingRepo{}, failingRepo{})
	r := NewRouter(app, RouterConfig{})

	requests := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/api/users", `{"username":"alice"}`},
		{http.MethodGet, "/api/users", ""},
		{http.MethodPost, "/api/users/u1/exercises", `{"description":"run","duration":"30"}`},
		{http.MethodGet, "/api/users/u1/logs", ""},
	}
	for _, rq := range requests {
		w := doJSON(r, rq.method, rq.path, rq.body)
		assert.Equal(t, http.StatusInternalServerError, w.Code, rq.path)
		assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
		assert.NotContains(t, w.Body.String(), "disk on fire")
	}
}

func TestLandingPageHealthAndMetrics(t *testing.T) {
	r, _, _ := setupRouterAndStorage(t)

	w := doJSON(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Exercise Tracker")

	w = doJSON(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	createUser(t, r, "alice")
	w = doJSON(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="POST",path="/api/users",status="200"} 1`)
}

func TestMiddleware_RequestIDAndCORS(t *testing.T) {
	r, _, _ := setupRouterAndStorage(t)

	w := doJSON(r, http.MethodGet, "/api/users", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	pre := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, pre)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
