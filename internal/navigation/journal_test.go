package navigation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/indoor-nav/internal/eventbus"
)

func entry(to string, found bool, seconds float64, ts time.Time) JournalEntry {
	return JournalEntry{
		RouteEvent: eventbus.RouteEvent{MapID: "main", To: to, ToRoom: to, Found: found, Seconds: seconds},
		Timestamp:  ts,
	}
}

func coordinateEntry(to string, seconds float64, ts time.Time) JournalEntry {
	return JournalEntry{
		RouteEvent: eventbus.RouteEvent{MapID: "main", To: to, Found: true, Seconds: seconds},
		Timestamp:  ts,
	}
}

func TestJournalEvictsOldest(t *testing.T) {
	j := NewJournal(3)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, room := range []string{"a", "b", "c", "d"} {
		j.Record(entry(room, true, 10, now.Add(time.Duration(i)*time.Minute)))
	}

	got := j.Query(JournalQuery{})
	require.Len(t, got, 3)
	assert.Equal(t, "d", got[0].To)
	assert.Equal(t, "b", got[2].To)

	assert.Len(t, j.Query(JournalQuery{Limit: 2}), 2)
	assert.Empty(t, j.Query(JournalQuery{MapID: "other"}))
}

func TestJournalStats(t *testing.T) {
	j := NewJournal(0)
	day := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	j.Record(entry("201", true, 60, day))
	j.Record(entry("201", true, 90, day))
	j.Record(entry("101", true, 30, day))
	j.Record(entry("closet", false, 0, day))
	j.Record(entry("101", true, 1000, day.AddDate(0, 0, -1)))
	j.Record(coordinateEntry("(4,4)@2", 60, day))
	j.Record(coordinateEntry("(4,4)@2", 60, day))

	stats := j.Stats(day)
	assert.Equal(t, 6, stats.TotalRoutes)
	assert.Equal(t, 5, stats.FoundRoutes)
	assert.Equal(t, 1, stats.FailedRoutes)
	assert.Equal(t, []RoomCount{{RoomID: "201", Count: 2}, {RoomID: "101", Count: 1}}, stats.PopularRooms)
	assert.InDelta(t, 60, stats.AverageSeconds, 1e-9)
	assert.Equal(t, "1 min 0 sec", stats.AverageText)

	all := j.Stats(time.Time{})
	assert.Equal(t, 7, all.TotalRoutes)
}

func TestJournalAttachedToBus(t *testing.T) {
	bus := eventbus.NewMemoryBus(8)
	defer bus.Close()

	j := NewJournal(10)
	require.NoError(t, j.Attach(bus))
	defer j.Detach()

	env, err := eventbus.NewEnvelope("test", eventbus.RouteFailed, "p1", eventbus.RouteEvent{PathID: "p1", To: "closet"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), env))

	assert.Eventually(t, func() bool {
		return len(j.Query(JournalQuery{})) == 1
	}, 2*time.Second, 5*time.Millisecond)

	got := j.Query(JournalQuery{})
	assert.Equal(t, "p1", got[0].PathID)
	assert.False(t, got[0].Found)
}
