package models

import (
	"strings"
	"time"
)

// Platform identifies a competitive programming site
type Platform string

const (
	PlatformCodeforces  Platform = "codeforces"
	PlatformCodechef    Platform = "codechef"
	PlatformLeetcode    Platform = "leetcode"
	PlatformAtcoder     Platform = "atcoder"
	PlatformTopcoder    Platform = "topcoder"
	PlatformHackerrank  Platform = "hackerrank"
	PlatformHackerearth Platform = "hackerearth"
	PlatformUnknown     Platform = "unknown"
)

// platformAliases maps the platform spellings seen in upstream API
// responses to the canonical keys. Lookups are lowercased first.
var platformAliases = map[string]Platform{
	"codeforces":   PlatformCodeforces,
	"code_forces":  PlatformCodeforces,
	"codechef":     PlatformCodechef,
	"code_chef":    PlatformCodechef,
	"leetcode":     PlatformLeetcode,
	"leet_code":    PlatformLeetcode,
	"atcoder":      PlatformAtcoder,
	"at_coder":     PlatformAtcoder,
	"topcoder":     PlatformTopcoder,
	"top_coder":    PlatformTopcoder,
	"hackerrank":   PlatformHackerrank,
	"hacker_rank":  PlatformHackerrank,
	"hackerearth":  PlatformHackerearth,
	"hacker_earth": PlatformHackerearth,
}

// NormalizePlatform maps an upstream platform string to a canonical
// Platform key. Unrecognized strings normalize to PlatformUnknown so the
// contest is kept rather than silently dropped.
func NormalizePlatform(s string) Platform {
	if p, ok := platformAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p
	}
	return PlatformUnknown
}

// NormalizePlatformKeys maps a list of platform spellings (as they
// appear in config) to canonical keys, dropping unrecognized names.
// Anything keyed by platform downstream, like the rate limiter, must
// use these keys rather than the raw config spellings.
func NormalizePlatformKeys(names []string) []string {
	keys := make([]string, 0, len(names))
	for _, name := range names {
		if p := NormalizePlatform(name); p != PlatformUnknown {
			keys = append(keys, string(p))
		}
	}
	return keys
}

// AllPlatforms returns the fixed enumeration of fetchable platforms
func AllPlatforms() []Platform {
	return []Platform{
		PlatformCodeforces,
		PlatformCodechef,
		PlatformLeetcode,
		PlatformAtcoder,
		PlatformTopcoder,
		PlatformHackerrank,
		PlatformHackerearth,
	}
}

// Status represents where a contest sits relative to "now"
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusOngoing  Status = "ongoing"
	StatusEnded    Status = "ended"
)

// StatusAt computes the status of a contest window at a reference time.
// Status is never stored as authoritative state; it is recomputed on
// every read because "now" moves within the cache TTL.
func StatusAt(start, end, now time.Time) Status {
	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.Before(end):
		return StatusOngoing
	default:
		return StatusEnded
	}
}

// Contest is the normalized contest shape flowing through the aggregator
type Contest struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	URL                   string    `json:"url"`
	Platform              Platform  `json:"platform"`
	StartTime             time.Time `json:"start_time"`
	EndTime               time.Time `json:"end_time"`
	DurationSeconds       int64     `json:"duration_seconds"`
	Status                Status    `json:"status"`
	IsRecurringProjection bool      `json:"is_recurring_projection"`
}

// StatusAt returns the contest status at the given reference time
func (c *Contest) StatusAt(now time.Time) Status {
	return StatusAt(c.StartTime, c.EndTime, now)
}

// StampStatuses returns a copy of the contests with Status recomputed at
// the given reference time and ended contests filtered out. The input
// slice is never mutated; cached snapshots stay immutable.
func StampStatuses(contests []Contest, now time.Time) []Contest {
	out := make([]Contest, 0, len(contests))
	for _, c := range contests {
		c.Status = c.StatusAt(now)
		if c.Status == StatusEnded {
			continue
		}
		out = append(out, c)
	}
	return out
}

// RawContest is a contest record as returned by an upstream platform
// API, before normalization. Times and duration are kept as the raw
// strings the API returned; the aggregator owns parsing.
type RawContest struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Duration  string `json:"duration"`
	In24Hours string `json:"in_24_hours"`
	Status    string `json:"status"`

	// SourcePlatform is the platform key of the source that fetched
	// this record, set by the fetcher rather than parsed from the body.
	SourcePlatform string `json:"-"`
}
