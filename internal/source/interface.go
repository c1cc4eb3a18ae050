package source

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/contesthub/internal/models"
)

// ContestSource defines the interface for live contest listing sources
type ContestSource interface {
	// Name returns the unique name of this source
	Name() string

	// Platform returns the canonical platform key this source covers
	Platform() models.Platform

	// Fetch retrieves raw contest records from the source
	Fetch(ctx context.Context) ([]models.RawContest, error)

	// HealthCheck verifies the source is accessible
	HealthCheck(ctx context.Context) error
}

// GenerateContestID creates a stable ID for a live contest from its
// platform, name and start epoch, so repeated fetches of the same
// contest produce the same identity.
func GenerateContestID(platform models.Platform, name string, startEpoch int64) string {
	data := fmt.Sprintf("%s:%s:%d", platform, name, startEpoch)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash[:16]) // Use first 16 bytes (32 hex chars)
}

// Manager manages multiple contest sources
type Manager struct {
	sources []ContestSource
}

// NewManager creates a new source manager
func NewManager() *Manager {
	return &Manager{
		sources: make([]ContestSource, 0),
	}
}

// Register adds a source to the manager
func (m *Manager) Register(source ContestSource) {
	m.sources = append(m.sources, source)
}

// GetSources returns all registered sources
func (m *Manager) GetSources() []ContestSource {
	return m.sources
}

// GetSourceByPlatform returns the source covering a platform
func (m *Manager) GetSourceByPlatform(platform models.Platform) ContestSource {
	for _, s := range m.sources {
		if s.Platform() == platform {
			return s
		}
	}
	return nil
}

// FetchAll fetches contests from all sources concurrently. Every source
// is waited on, success or failure; one dead platform never
// short-circuits the others. Per-source errors are collected and
// returned alongside whatever was fetched successfully.
func (m *Manager) FetchAll(ctx context.Context) ([]models.RawContest, []error) {
	type result struct {
		contests []models.RawContest
		err      error
	}

	results := make(chan result, len(m.sources))

	for _, source := range m.sources {
		go func(s ContestSource) {
			contests, err := s.Fetch(ctx)
			results <- result{contests: contests, err: err}
		}(source)
	}

	var allContests []models.RawContest
	var errors []error

	for range m.sources {
		r := <-results
		if r.err != nil {
			errors = append(errors, r.err)
		} else {
			allContests = append(allContests, r.contests...)
		}
	}

	return allContests, errors
}
