package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/contesthub/internal/cache"
	"github.com/contesthub/internal/models"
	"github.com/contesthub/internal/schedule"
	"github.com/contesthub/pkg/logger"
)

// ContestCache is the cache surface the handlers depend on
type ContestCache interface {
	Get(ctx context.Context) (cache.Result, error)
	ForceRefresh(ctx context.Context) (cache.Result, error)
	TTL() time.Duration
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	cache ContestCache
	table []schedule.PlatformSchedule
	swr   time.Duration
	log   *logger.Logger
}

// NewHandler creates a new handler with dependencies
func NewHandler(c ContestCache, table []schedule.PlatformSchedule, swr time.Duration, log *logger.Logger) *Handler {
	return &Handler{
		cache: c,
		table: table,
		swr:   swr,
		log:   log.WithComponent("http"),
	}
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "contesthub",
	})
}

// GetContests returns the current aggregated contest list, cached or
// fresh. Contest status is recomputed against the request time, so a
// snapshot served for its whole TTL still reports correct statuses.
// A stale response carries stale=true and an advisory error; callers
// must not treat it as a failure.
func (h *Handler) GetContests(w http.ResponseWriter, r *http.Request) {
	res, err := h.cache.Get(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch contests", err)
		return
	}

	contests := models.StampStatuses(res.Contests, time.Now())

	w.Header().Set("Cache-Control", fmt.Sprintf(
		"public, max-age=%d, stale-while-revalidate=%d",
		int(h.cache.TTL().Seconds()), int(h.swr.Seconds()),
	))

	payload := map[string]interface{}{
		"contests": contests,
		"cached":   res.Cached,
		"count":    len(contests),
	}
	if res.Cached {
		payload["cache_age"] = int(res.Age.Seconds())
	}
	if res.Stale {
		payload["stale"] = true
		payload["error"] = res.Err.Error()
	}

	respondJSON(w, http.StatusOK, payload)
}

// RefreshContests discards the cache and re-fetches everything
func (h *Handler) RefreshContests(w http.ResponseWriter, r *http.Request) {
	res, err := h.cache.ForceRefresh(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "refresh failed", err)
		return
	}

	contests := models.StampStatuses(res.Contests, time.Now())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"contests":  contests,
		"refreshed": true,
		"count":     len(contests),
	})
}

// GetPlatforms returns the static platform schedule table
func (h *Handler) GetPlatforms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"platforms": h.table,
		"count":     len(h.table),
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already out; nothing useful left to do
		return
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]interface{}{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	respondJSON(w, status, body)
}
