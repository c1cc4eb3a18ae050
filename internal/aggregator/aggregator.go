package aggregator

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/contesthub/internal/models"
	"github.com/contesthub/internal/schedule"
	"github.com/contesthub/internal/source"
	"github.com/contesthub/pkg/logger"
)

// Service combines live contest listings from all platforms with
// recurring-schedule projections into one deduplicated, sorted list
type Service struct {
	sources   *source.Manager
	projector *schedule.Projector
	log       *logger.Logger
	now       func() time.Time
}

// NewService creates a new aggregation service
func NewService(sources *source.Manager, projector *schedule.Projector, log *logger.Logger) *Service {
	return &Service{
		sources:   sources,
		projector: projector,
		log:       log.WithComponent("aggregator"),
		now:       time.Now,
	}
}

// timeFormats lists the timestamp layouts seen across the platform APIs
var timeFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}

// Aggregate executes one full aggregation pass: fetch all platforms
// concurrently, normalize, merge with recurring projections, dedup,
// drop ended contests and sort by start time. Per-platform fetch
// failures fold into empty contributions here, in one visible place;
// only "every source failed and nothing is projectable" is an error.
func (s *Service) Aggregate(ctx context.Context) ([]models.Contest, error) {
	wallStart := time.Now()
	now := s.now()

	raw, fetchErrors := s.sources.FetchAll(ctx)
	for _, err := range fetchErrors {
		s.log.Warn().Err(err).Msg("Platform fetch failed")
	}

	live := make([]models.Contest, 0, len(raw))
	skipped := 0
	for _, rc := range raw {
		c, err := normalize(rc)
		if err != nil {
			s.log.Debug().Err(err).Str("name", rc.Name).Msg("Skipping malformed contest record")
			skipped++
			continue
		}
		live = append(live, c)
	}

	projections := s.projector.Project(now)

	merged := dedupe(live, projections)
	visible := models.StampStatuses(merged, now)

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].StartTime.Before(visible[j].StartTime)
	})

	if len(visible) == 0 && len(fetchErrors) > 0 && len(fetchErrors) == len(s.sources.GetSources()) {
		return nil, fmt.Errorf("all %d contest sources failed", len(fetchErrors))
	}

	s.log.Info().
		Int("live", len(live)).
		Int("projected", len(projections)).
		Int("skipped", skipped).
		Int("total", len(visible)).
		Int("fetch_errors", len(fetchErrors)).
		Dur("duration", time.Since(wallStart)).
		Msg("Aggregation completed")

	return visible, nil
}

// normalize converts a raw platform record into the common contest
// shape. Unrecognized platform strings map to "unknown" rather than
// being dropped; records without a parseable time window are skipped.
func normalize(rc models.RawContest) (models.Contest, error) {
	platform := models.NormalizePlatform(rc.SourcePlatform)

	start, err := parseTime(rc.StartTime)
	if err != nil {
		return models.Contest{}, fmt.Errorf("bad start time: %w", err)
	}

	// Some platforms report duration directly; trust it when present
	var duration int64
	if rc.Duration != "" {
		if f, perr := strconv.ParseFloat(rc.Duration, 64); perr == nil && f > 0 {
			duration = int64(f)
		}
	}

	var end time.Time
	if rc.EndTime != "" {
		end, err = parseTime(rc.EndTime)
	}
	if rc.EndTime == "" || err != nil {
		if duration <= 0 {
			return models.Contest{}, fmt.Errorf("no usable end time or duration")
		}
		end = start.Add(time.Duration(duration) * time.Second)
	}
	if duration <= 0 {
		duration = int64(end.Sub(start) / time.Second)
	}
	if !end.After(start) {
		return models.Contest{}, fmt.Errorf("end time %v not after start %v", end, start)
	}

	return models.Contest{
		ID:                    source.GenerateContestID(platform, rc.Name, start.Unix()),
		Name:                  rc.Name,
		URL:                   rc.URL,
		Platform:              platform,
		StartTime:             start,
		EndTime:               end,
		DurationSeconds:       duration,
		IsRecurringProjection: false,
	}, nil
}

// dedupe removes (platform, startTime) collisions. Live data always
// wins over a projection; between two entries of the same kind the
// first-seen one wins. Live contests are folded first so fetched data
// takes the slot before any projection is considered.
func dedupe(live, projections []models.Contest) []models.Contest {
	out := make([]models.Contest, 0, len(live)+len(projections))
	index := make(map[string]int, len(live)+len(projections))

	for _, c := range append(append([]models.Contest{}, live...), projections...) {
		key := fmt.Sprintf("%s|%d", c.Platform, c.StartTime.Unix())
		if i, seen := index[key]; seen {
			if out[i].IsRecurringProjection && !c.IsRecurringProjection {
				out[i] = c
			}
			continue
		}
		index[key] = len(out)
		out = append(out, c)
	}

	return out
}
