package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/contesthub/internal/cache"
	"github.com/contesthub/internal/models"
	"github.com/contesthub/internal/schedule"
	"github.com/contesthub/internal/server"
	"github.com/contesthub/pkg/logger"
)

// mockCache implements server.ContestCache for testing
type mockCache struct {
	result       cache.Result
	err          error
	refreshCalls int
}

func (m *mockCache) Get(ctx context.Context) (cache.Result, error) {
	if m.err != nil {
		return cache.Result{}, m.err
	}
	return m.result, nil
}

func (m *mockCache) ForceRefresh(ctx context.Context) (cache.Result, error) {
	m.refreshCalls++
	if m.err != nil {
		return cache.Result{}, m.err
	}
	return m.result, nil
}

func (m *mockCache) TTL() time.Duration { return time.Minute }

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func upcomingContest(name string) models.Contest {
	now := time.Now()
	return models.Contest{
		ID:        "id-" + name,
		Name:      name,
		Platform:  models.PlatformCodeforces,
		StartTime: now.Add(2 * time.Hour),
		EndTime:   now.Add(4 * time.Hour),
	}
}

func newHandler(c server.ContestCache) *server.Handler {
	return server.NewHandler(c, schedule.DefaultTable(), 5*time.Minute, quietLogger())
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestGetContests(t *testing.T) {
	mock := &mockCache{result: cache.Result{
		Contests: []models.Contest{upcomingContest("Round 1")},
		Cached:   true,
		Age:      10 * time.Second,
	}}
	handler := newHandler(mock)

	req := httptest.NewRequest("GET", "/api/v1/contests", nil)
	w := httptest.NewRecorder()
	handler.GetContests(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=60, stale-while-revalidate=300" {
		t.Errorf("unexpected Cache-Control header %q", cc)
	}

	body := decode(t, w)
	if body["cached"] != true {
		t.Error("expected cached=true")
	}
	if body["count"].(float64) != 1 {
		t.Errorf("expected count 1, got %v", body["count"])
	}
	if body["cache_age"].(float64) != 10 {
		t.Errorf("expected cache_age 10, got %v", body["cache_age"])
	}
	if _, present := body["stale"]; present {
		t.Error("stale must be absent on a healthy response")
	}
}

func TestGetContestsRecomputesStatus(t *testing.T) {
	now := time.Now()
	ended := models.Contest{
		ID:        "ended",
		Name:      "Finished Round",
		Platform:  models.PlatformAtcoder,
		StartTime: now.Add(-4 * time.Hour),
		EndTime:   now.Add(-2 * time.Hour),
	}
	ongoing := models.Contest{
		ID:        "ongoing",
		Name:      "Live Round",
		Platform:  models.PlatformAtcoder,
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
	}

	// A snapshot cached before a contest ended must not leak it
	mock := &mockCache{result: cache.Result{
		Contests: []models.Contest{ended, ongoing},
		Cached:   true,
	}}
	handler := newHandler(mock)

	req := httptest.NewRequest("GET", "/api/v1/contests", nil)
	w := httptest.NewRecorder()
	handler.GetContests(w, req)

	body := decode(t, w)
	contests := body["contests"].([]interface{})
	if len(contests) != 1 {
		t.Fatalf("expected the ended contest to be filtered, got %d", len(contests))
	}
	first := contests[0].(map[string]interface{})
	if first["status"] != string(models.StatusOngoing) {
		t.Errorf("expected recomputed ongoing status, got %v", first["status"])
	}
}

func TestGetContestsStaleFallback(t *testing.T) {
	mock := &mockCache{result: cache.Result{
		Contests: []models.Contest{upcomingContest("Round 2")},
		Cached:   true,
		Age:      3 * time.Minute,
		Stale:    true,
		Err:      fmt.Errorf("upstream down"),
	}}
	handler := newHandler(mock)

	req := httptest.NewRequest("GET", "/api/v1/contests", nil)
	w := httptest.NewRecorder()
	handler.GetContests(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("stale fallback must stay 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["stale"] != true {
		t.Error("expected stale=true")
	}
	if body["error"] != "upstream down" {
		t.Errorf("expected advisory error, got %v", body["error"])
	}
}

func TestGetContestsColdStartFailure(t *testing.T) {
	mock := &mockCache{err: fmt.Errorf("everything is down")}
	handler := newHandler(mock)

	req := httptest.NewRequest("GET", "/api/v1/contests", nil)
	w := httptest.NewRecorder()
	handler.GetContests(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	body := decode(t, w)
	if body["error"] == nil {
		t.Error("expected error in response body")
	}
}

func TestRefreshContests(t *testing.T) {
	mock := &mockCache{result: cache.Result{
		Contests: []models.Contest{upcomingContest("Round 3")},
	}}
	handler := newHandler(mock)

	req := httptest.NewRequest("POST", "/api/v1/contests", nil)
	w := httptest.NewRecorder()
	handler.RefreshContests(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if mock.refreshCalls != 1 {
		t.Errorf("expected one forced refresh, got %d", mock.refreshCalls)
	}
	body := decode(t, w)
	if body["refreshed"] != true {
		t.Error("expected refreshed=true")
	}
	if body["count"].(float64) != 1 {
		t.Errorf("expected count 1, got %v", body["count"])
	}
}

func TestGetPlatforms(t *testing.T) {
	handler := newHandler(&mockCache{})

	req := httptest.NewRequest("GET", "/api/v1/platforms", nil)
	w := httptest.NewRecorder()
	handler.GetPlatforms(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := decode(t, w)
	platforms := body["platforms"].([]interface{})
	if len(platforms) == 0 {
		t.Fatal("expected the schedule table to be returned")
	}
	first := platforms[0].(map[string]interface{})
	if first["platform_id"] == "" {
		t.Error("expected platform_id in table rows")
	}
}
