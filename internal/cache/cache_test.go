package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/contesthub/internal/models"
	"github.com/contesthub/pkg/logger"
)

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

// countingLoader returns a loader that counts invocations and can be
// switched to failing mode mid-test
type countingLoader struct {
	calls int
	fail  bool
}

func (l *countingLoader) load(ctx context.Context) ([]models.Contest, error) {
	l.calls++
	if l.fail {
		return nil, fmt.Errorf("upstream down")
	}
	return []models.Contest{
		{ID: fmt.Sprintf("contest-%d", l.calls), Name: "Round", Platform: models.PlatformCodeforces},
	}, nil
}

func TestGetWithinTTLReturnsSameSnapshot(t *testing.T) {
	loader := &countingLoader{}
	c := New(time.Minute, loader.load, quietLogger())

	first, err := c.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached {
		t.Error("first read should not be served from cache")
	}

	second, err := c.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached {
		t.Error("second read within TTL should be served from cache")
	}
	if loader.calls != 1 {
		t.Errorf("expected 1 load, got %d", loader.calls)
	}
	if len(second.Contests) != 1 || second.Contests[0].ID != first.Contests[0].ID {
		t.Error("expected both reads to return the same snapshot")
	}
}

func TestGetPastTTLRefreshes(t *testing.T) {
	loader := &countingLoader{}
	c := New(10*time.Millisecond, loader.load, quietLogger())

	if _, err := c.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)

	res, err := c.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Cached {
		t.Error("read past TTL should have refreshed")
	}
	if loader.calls != 2 {
		t.Errorf("expected 2 loads, got %d", loader.calls)
	}
}

func TestTTLCountsFromLoadCompletion(t *testing.T) {
	loader := &countingLoader{}
	slowLoad := func(ctx context.Context) ([]models.Contest, error) {
		time.Sleep(50 * time.Millisecond)
		return loader.load(ctx)
	}
	c := New(80*time.Millisecond, slowLoad, quietLogger())

	if _, err := c.Get(context.Background()); err != nil {
		t.Fatal(err)
	}

	// 60ms after the load finished: within TTL if the snapshot was
	// stamped post-load, expired already if it was stamped pre-load
	time.Sleep(60 * time.Millisecond)

	res, err := c.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cached {
		t.Error("expected snapshot still fresh, load latency ate the TTL")
	}
	if loader.calls != 1 {
		t.Errorf("expected 1 load, got %d", loader.calls)
	}
	if res.Age >= 80*time.Millisecond {
		t.Errorf("reported age %v inflated by load latency", res.Age)
	}
}

func TestStaleFallbackOnRefreshFailure(t *testing.T) {
	loader := &countingLoader{}
	c := New(10*time.Millisecond, loader.load, quietLogger())

	first, err := c.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(20 * time.Millisecond)
	loader.fail = true

	res, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("stale fallback must not surface an error, got %v", err)
	}
	if !res.Stale || !res.Cached {
		t.Errorf("expected stale cached result, got stale=%v cached=%v", res.Stale, res.Cached)
	}
	if res.Err == nil {
		t.Error("expected the advisory refresh error to be carried")
	}
	if len(res.Contests) != 1 || res.Contests[0].ID != first.Contests[0].ID {
		t.Error("expected the previous snapshot to be served")
	}
}

func TestColdStartFailureSurfaces(t *testing.T) {
	loader := &countingLoader{fail: true}
	c := New(time.Minute, loader.load, quietLogger())

	if _, err := c.Get(context.Background()); err == nil {
		t.Fatal("expected error when the first-ever load fails with no prior value")
	}
}

func TestForceRefreshDiscardsFreshValue(t *testing.T) {
	loader := &countingLoader{}
	c := New(time.Minute, loader.load, quietLogger())

	if _, err := c.Get(context.Background()); err != nil {
		t.Fatal(err)
	}

	res, err := c.ForceRefresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if loader.calls != 2 {
		t.Errorf("expected forced refresh to re-load despite fresh cache, got %d loads", loader.calls)
	}
	if res.Cached {
		t.Error("forced refresh result should not be marked cached")
	}

	// The refreshed snapshot should now serve subsequent reads
	again, err := c.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !again.Cached || again.Contests[0].ID != res.Contests[0].ID {
		t.Error("expected the refreshed snapshot to be cached")
	}
}

func TestForceRefreshFailureLeavesCacheEmpty(t *testing.T) {
	loader := &countingLoader{}
	c := New(time.Minute, loader.load, quietLogger())

	if _, err := c.Get(context.Background()); err != nil {
		t.Fatal(err)
	}

	loader.fail = true
	if _, err := c.ForceRefresh(context.Background()); err == nil {
		t.Fatal("expected forced refresh failure to surface")
	}

	// The old snapshot was discarded, so a failing read now errors too
	if _, err := c.Get(context.Background()); err == nil {
		t.Fatal("expected cold cache after discarded snapshot")
	}
}
