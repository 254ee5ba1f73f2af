package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"congregationAPI/handlers"
	"congregationAPI/internal/catalog"
	"congregationAPI/internal/engine"
	"congregationAPI/internal/store/sqlite"
	"congregationAPI/internal/types/activity"
	"congregationAPI/middleware"
	"congregationAPI/services"
)

var testNow = time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)

type testServer struct {
	router     *mux.Router
	store      *sqlite.Store
	dispatcher *services.NotificationDispatcher
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	store := sqlite.New(db)
	require.NoError(t, store.InitSchema(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	cat, err := catalog.Default()
	require.NoError(t, err)

	now := func() time.Time { return testNow }
	dispatcher := services.NewNotificationDispatcher(store, 1)
	t.Cleanup(dispatcher.Stop)

	achievementService := services.NewAchievementService(store, cat)
	achievementService.SetNotifier(dispatcher)
	challengeService := services.NewChallengeService(cat, store, engine.NewEngine(store, engine.WithClock(now)), achievementService, now)
	goalService := services.NewGoalService(store, achievementService, now)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	handlers.RegisterProtectedRoutes(api,
		handlers.NewChallengeHandler(challengeService),
		handlers.NewGoalHandler(goalService),
		handlers.NewAchievementHandler(achievementService),
		handlers.NewNotificationHandler(dispatcher),
	)
	r.HandleFunc("/health", handlers.NewHealthHandler(store).Health).Methods("GET")

	return &testServer{router: r, store: store, dispatcher: dispatcher}
}

// do sends a request as userID; an empty userID sends it unauthenticated.
func (s *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestCatalogAndAvailable(t *testing.T) {
	s := setupServer(t)

	rr := s.do(t, http.MethodGet, "/api/v1/challenges/catalog", "user-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	cat := decode[map[string]any](t, rr)
	assert.Equal(t, "2024.1", cat["version"])
	total := len(cat["challenges"].([]any))

	rr = s.do(t, http.MethodPost, "/api/v1/challenges/prayer-7-day/join", "user-1", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/v1/challenges/available", "user-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	available := decode[[]map[string]any](t, rr)
	assert.Len(t, available, total-1)
}

func TestJoinChallenge_StatusCodes(t *testing.T) {
	s := setupServer(t)

	rr := s.do(t, http.MethodPost, "/api/v1/challenges/prayer-7-day/join", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/challenges/unknown/join", "user-1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/challenges/prayer-7-day/join", "user-1", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	enrollment := decode[map[string]any](t, rr)
	assert.Equal(t, "active", enrollment["status"])
	assert.Equal(t, "prayer-7-day", enrollment["challengeId"])

	rr = s.do(t, http.MethodPost, "/api/v1/challenges/prayer-7-day/join", "user-1", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestChallengeProgressAndCompletion(t *testing.T) {
	s := setupServer(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.store.RecordPrayer(ctx, activity.PrayerEntry{
			ID: fmt.Sprintf("p%d", i), UserID: "user-1", CreatedAt: testNow.AddDate(0, 0, -i),
		}))
	}

	rr := s.do(t, http.MethodPost, "/api/v1/challenges/prayer-7-day/join", "user-1", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decode[map[string]any](t, rr)["id"].(string)

	rr = s.do(t, http.MethodGet, "/api/v1/challenges/enrollments/"+id, "user-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[map[string]any](t, rr)
	derived := view["derivedProgress"].(map[string]any)
	assert.Equal(t, 3.0, derived["current"])
	assert.Equal(t, false, derived["completed"])

	rr = s.do(t, http.MethodGet, "/api/v1/challenges/enrollments/"+id, "user-2", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/challenges/enrollments/"+id+"/complete", "user-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "completed", decode[map[string]any](t, rr)["status"])

	rr = s.do(t, http.MethodGet, "/api/v1/challenges", "user-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 1)

	rr = s.do(t, http.MethodGet, "/api/v1/achievements", "user-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	ledger := decode[map[string]any](t, rr)
	assert.Equal(t, []any{"challenge_completed", "challenge_prayer-7-day"}, ledger["achievements"])
}

func TestGoalEndpoints(t *testing.T) {
	s := setupServer(t)

	rr := s.do(t, http.MethodPost, "/api/v1/goals", "user-1", map[string]any{"title": "", "target": 5})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/goals", "user-1", map[string]any{"title": "Pray daily", "target": "abc"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/goals", "user-1", map[string]any{"title": "Pray daily", "target": "10", "unit": "days"})
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decode[map[string]any](t, rr)["id"].(string)

	rr = s.do(t, http.MethodPut, "/api/v1/goals/"+id+"/progress", "user-1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPut, "/api/v1/goals/"+id+"/progress", "user-1", map[string]any{"value": -2})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPut, "/api/v1/goals/"+id+"/progress", "user-1", map[string]any{"value": 6})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "active", decode[map[string]any](t, rr)["status"])

	rr = s.do(t, http.MethodPost, "/api/v1/goals/"+id+"/progress/increment", "user-1", map[string]any{"delta": 4})
	require.Equal(t, http.StatusOK, rr.Code)
	goal := decode[map[string]any](t, rr)
	assert.Equal(t, "completed", goal["status"])
	assert.Equal(t, 10.0, goal["currentProgress"])

	rr = s.do(t, http.MethodGet, "/api/v1/goals", "user-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 1)

	rr = s.do(t, http.MethodGet, "/api/v1/achievements", "user-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []any{"goal_completed"}, decode[map[string]any](t, rr)["achievements"])

	rr = s.do(t, http.MethodDelete, "/api/v1/goals/"+id, "user-2", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodDelete, "/api/v1/goals/"+id, "user-1", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/v1/goals/"+id, "user-1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGoalEndpoints_Unauthenticated(t *testing.T) {
	s := setupServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/goals"},
		{http.MethodPost, "/api/v1/goals"},
		{http.MethodPut, "/api/v1/goals/x/progress"},
		{http.MethodGet, "/api/v1/achievements"},
		{http.MethodPost, "/api/v1/notifications/register-device"},
	} {
		rr := s.do(t, tc.method, tc.path, "", map[string]any{"value": 1})
		assert.Equal(t, http.StatusUnauthorized, rr.Code, tc.path)
	}
}

func TestRegisterDevice(t *testing.T) {
	s := setupServer(t)

	rr := s.do(t, http.MethodPost, "/api/v1/notifications/register-device", "user-1", map[string]any{"token": "abc", "platform": "fax"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/notifications/register-device", "user-1", map[string]any{"token": "abc", "platform": "android"})
	require.Equal(t, http.StatusOK, rr.Code)

	tokens, err := s.store.DeviceTokens(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "abc", tokens[0].Token)
}

func TestHealth(t *testing.T) {
	s := setupServer(t)

	rr := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rr)["status"])
}
