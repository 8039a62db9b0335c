package pipeline_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaroncolesmith/portland-crime-map/internal/domain"
	"github.com/aaroncolesmith/portland-crime-map/internal/pipeline"
)

func cacheFixture() []domain.Incident {
	return []domain.Incident{{Category: "THEFT", Address: "1 MAIN ST, PORTLAND"}}
}

func TestCache_MissOnUnknownWindow(t *testing.T) {
	cache := pipeline.NewCache(time.Minute, nil)

	_, fresh, ok := cache.Get(7)
	assert.False(t, ok)
	assert.False(t, fresh)
}

func TestCache_FreshWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	cache := pipeline.NewCache(30*time.Minute, clock)

	cache.Put(7, cacheFixture())
	clock.Advance(29 * time.Minute)

	incidents, fresh, ok := cache.Get(7)
	require.True(t, ok)
	assert.True(t, fresh)
	assert.Len(t, incidents, 1)
}

func TestCache_StaleAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	cache := pipeline.NewCache(30*time.Minute, clock)

	cache.Put(7, cacheFixture())
	clock.Advance(30 * time.Minute)

	incidents, fresh, ok := cache.Get(7)
	require.True(t, ok, "stale entries remain readable as last known good")
	assert.False(t, fresh)
	assert.Len(t, incidents, 1)
}

func TestCache_KeyedByLookbackWindow(t *testing.T) {
	cache := pipeline.NewCache(time.Minute, nil)
	cache.Put(7, cacheFixture())

	_, _, ok := cache.Get(30)
	assert.False(t, ok)
}

func TestCache_PutReplacesEntry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	cache := pipeline.NewCache(30*time.Minute, clock)

	cache.Put(7, cacheFixture())
	clock.Advance(45 * time.Minute)
	cache.Put(7, append(cacheFixture(), domain.Incident{Category: "ASSAULT"}))

	incidents, fresh, ok := cache.Get(7)
	require.True(t, ok)
	assert.True(t, fresh, "replacement resets the staleness window")
	assert.Len(t, incidents, 2)
}
