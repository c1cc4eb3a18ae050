package schedule

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/contesthub/internal/models"
)

const (
	// ProjectionHorizon bounds how far ahead occurrences are projected
	ProjectionHorizon = 7 * 24 * time.Hour

	// ProjectedDuration is the fixed duration assigned to every
	// projected occurrence. The real event's duration is unknown at
	// projection time; live data replaces the projection anyway.
	ProjectedDuration = 2 * time.Hour
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// parseDayOfWeek maps a schedule table day string to a weekday.
// Returns false for the "varies" sentinel and for month-relative
// phrases ("first ...", "last ..."), which the weekly model cannot
// project safely. Omitting an ambiguous recurrence beats guessing.
func parseDayOfWeek(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "varies" || strings.Contains(s, "first") || strings.Contains(s, "last") {
		return 0, false
	}
	wd, ok := weekdays[s]
	return wd, ok
}

var timeOfDayRe = regexp.MustCompile(`(?i)^\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)`)

// parseTimeOfDay extracts hour and minute from a loosely formatted
// 12-hour clock string like "8:00 AM EST". The timezone suffix is
// cosmetic and ignored; the time applies in the server's local zone.
// Unparseable input deterministically defaults to noon.
func parseTimeOfDay(s string) (hour, minute int, ok bool) {
	m := timeOfDayRe.FindStringSubmatch(s)
	if m == nil {
		return 12, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour < 1 || hour > 12 || minute > 59 {
		return 12, 0, false
	}
	if hour == 12 {
		hour = 0
	}
	if strings.EqualFold(m[3], "pm") {
		hour += 12
	}
	return hour, minute, true
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// Projector projects future occurrences of recurring contests from the
// static platform schedule table.
type Projector struct {
	table []PlatformSchedule
}

// NewProjector creates a projector over the given schedule table
func NewProjector(table []PlatformSchedule) *Projector {
	return &Projector{table: table}
}

// Table returns the underlying schedule table
func (p *Projector) Table() []PlatformSchedule {
	return p.table
}

// Project returns the next single occurrence of every projectable
// recurring contest whose start falls within the 7-day horizon from
// now, sorted ascending by start time. Each result is flagged as a
// recurring projection. Definitions with an ambiguous day are skipped
// silently; absence from the result is the correct signal.
func (p *Projector) Project(now time.Time) []models.Contest {
	var contests []models.Contest
	horizon := now.Add(ProjectionHorizon)

	for _, platform := range p.table {
		for _, def := range platform.RecurringContests {
			wd, ok := parseDayOfWeek(def.DayOfWeek)
			if !ok {
				continue
			}

			// Next date strictly after today with a matching weekday.
			// A same-day slot is never projected: today's occurrence
			// either already happened or is covered by live data.
			days := int(wd-now.Weekday()+7) % 7
			if days == 0 {
				days = 7
			}
			date := now.AddDate(0, 0, days)

			hour, minute, _ := parseTimeOfDay(def.TimeOfDay)
			start := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, now.Location())
			if start.After(horizon) {
				continue
			}

			contests = append(contests, models.Contest{
				ID:                    platform.PlatformID + "-" + slugify(def.Name),
				Name:                  platform.DisplayName + " " + def.Name,
				URL:                   platform.ContestListURL,
				Platform:              models.NormalizePlatform(platform.PlatformID),
				StartTime:             start,
				EndTime:               start.Add(ProjectedDuration),
				DurationSeconds:       int64(ProjectedDuration / time.Second),
				IsRecurringProjection: true,
			})
		}
	}

	sort.Slice(contests, func(i, j int) bool {
		return contests[i].StartTime.Before(contests[j].StartTime)
	})
	return contests
}
