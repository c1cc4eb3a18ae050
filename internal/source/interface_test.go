package source

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/contesthub/internal/models"
)

type stubSource struct {
	platform models.Platform
	records  []models.RawContest
	err      error
	delay    time.Duration
}

func (s *stubSource) Name() string              { return "stub-" + string(s.platform) }
func (s *stubSource) Platform() models.Platform { return s.platform }
func (s *stubSource) Fetch(ctx context.Context) ([]models.RawContest, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.records, s.err
}
func (s *stubSource) HealthCheck(ctx context.Context) error { return s.err }

func TestFetchAllSettlesEverySource(t *testing.T) {
	m := NewManager()
	m.Register(&stubSource{
		platform: models.PlatformCodeforces,
		records:  []models.RawContest{{Name: "CF Round"}},
	})
	m.Register(&stubSource{
		platform: models.PlatformLeetcode,
		err:      fmt.Errorf("leetcode down"),
	})
	m.Register(&stubSource{
		platform: models.PlatformAtcoder,
		records:  []models.RawContest{{Name: "ABC"}},
		delay:    50 * time.Millisecond,
	})

	contests, errs := m.FetchAll(context.Background())
	if len(contests) != 2 {
		t.Errorf("expected contests from both healthy sources, got %d", len(contests))
	}
	if len(errs) != 1 {
		t.Errorf("expected exactly one collected error, got %d", len(errs))
	}
}

func TestGenerateContestIDStable(t *testing.T) {
	a := GenerateContestID(models.PlatformCodeforces, "Round 999", 1736689200)
	b := GenerateContestID(models.PlatformCodeforces, "Round 999", 1736689200)
	c := GenerateContestID(models.PlatformCodeforces, "Round 999", 1736689201)

	if a != b {
		t.Error("expected identical inputs to produce identical IDs")
	}
	if a == c {
		t.Error("expected different start times to produce different IDs")
	}
	if len(a) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(a))
	}
}

func TestGetSourceByPlatform(t *testing.T) {
	m := NewManager()
	cf := &stubSource{platform: models.PlatformCodeforces}
	m.Register(cf)

	if got := m.GetSourceByPlatform(models.PlatformCodeforces); got != cf {
		t.Error("expected registered source to be found")
	}
	if got := m.GetSourceByPlatform(models.PlatformLeetcode); got != nil {
		t.Error("expected nil for unregistered platform")
	}
}
