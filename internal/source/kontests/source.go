package kontests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/contesthub/internal/config"
	"github.com/contesthub/internal/models"
	"github.com/contesthub/internal/source"
	"github.com/contesthub/pkg/logger"
	"github.com/contesthub/pkg/ratelimit"
)

// endpoints maps canonical platform keys to the per-platform API paths
var endpoints = map[models.Platform]string{
	models.PlatformCodeforces:  "codeforces",
	models.PlatformCodechef:    "code_chef",
	models.PlatformLeetcode:    "leet_code",
	models.PlatformAtcoder:     "at_coder",
	models.PlatformTopcoder:    "top_coder",
	models.PlatformHackerrank:  "hacker_rank",
	models.PlatformHackerearth: "hacker_earth",
}

// Source implements ContestSource for one platform's kontests-style
// JSON listing endpoint
type Source struct {
	platform models.Platform
	url      string
	timeout  time.Duration
	client   *http.Client
	limiter  *ratelimit.MultiLimiter
	log      *logger.Logger
}

// New creates a source for a single platform
func New(cfg config.FetcherConfig, platform models.Platform, limiter *ratelimit.MultiLimiter, log *logger.Logger) (*Source, error) {
	path, ok := endpoints[platform]
	if !ok {
		return nil, fmt.Errorf("no contest endpoint for platform %q", platform)
	}
	return &Source{
		platform: platform,
		url:      cfg.BaseURL + "/" + path,
		timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
		client:   &http.Client{},
		limiter:  limiter,
		log:      log.WithPlatform(string(platform)),
	}, nil
}

// NewMultiple creates sources for every configured platform. Platform
// strings that don't normalize to a known key are logged and skipped.
func NewMultiple(cfg config.FetcherConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) []*Source {
	sources := make([]*Source, 0, len(cfg.Platforms))
	for _, name := range cfg.Platforms {
		platform := models.NormalizePlatform(name)
		if platform == models.PlatformUnknown {
			log.Warn().Str("platform", name).Msg("Unknown platform in fetcher config, skipping")
			continue
		}
		s, err := New(cfg, platform, limiter, log)
		if err != nil {
			log.Warn().Err(err).Str("platform", name).Msg("Skipping platform without endpoint")
			continue
		}
		sources = append(sources, s)
	}
	return sources
}

// Name returns the source name
func (s *Source) Name() string {
	return "kontests-" + string(s.platform)
}

// Platform returns the platform key this source covers
func (s *Source) Platform() models.Platform {
	return s.platform
}

// Fetch retrieves the platform's current contest listing. The request
// carries its own bounded timeout so one hung platform cannot stall the
// whole aggregation pass.
func (s *Source) Fetch(ctx context.Context) ([]models.RawContest, error) {
	if err := s.limiter.Wait(ctx, string(s.platform)); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.log.Debug().Str("url", s.url).Msg("Fetching contest listing")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", s.platform, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contests for %s: %w", s.platform, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("contest API for %s returned status %d", s.platform, resp.StatusCode)
	}

	var contests []models.RawContest
	if err := json.NewDecoder(resp.Body).Decode(&contests); err != nil {
		return nil, fmt.Errorf("failed to decode contests for %s: %w", s.platform, err)
	}

	for i := range contests {
		contests[i].SourcePlatform = string(s.platform)
	}

	s.log.Info().
		Int("count", len(contests)).
		Msg("Fetched contest listing")

	return contests, nil
}

// HealthCheck verifies the platform endpoint is reachable
func (s *Source) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// Ensure Source implements source.ContestSource
var _ source.ContestSource = (*Source)(nil)
