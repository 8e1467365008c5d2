package navigation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/annel0/indoor-nav/internal/eventbus"
	"github.com/annel0/indoor-nav/internal/logging"
)

const defaultJournalCapacity = 1000

// JournalEntry запись журнала навигации
type JournalEntry struct {
	eventbus.RouteEvent
	Timestamp time.Time `json:"timestamp"`
}

// JournalQuery фильтр выборки журнала. Нулевые поля не фильтруют.
type JournalQuery struct {
	Date  time.Time
	MapID string
	Limit int
}

// RoomCount сколько раз комната была целью маршрута
type RoomCount struct {
	RoomID string `json:"room_id"`
	Count  int    `json:"count"`
}

// JournalStats сводка журнала
type JournalStats struct {
	TotalRoutes    int         `json:"total_navigations"`
	FoundRoutes    int         `json:"found"`
	FailedRoutes   int         `json:"failed"`
	PopularRooms   []RoomCount `json:"popular_rooms"`
	AverageSeconds float64     `json:"average_time_seconds"`
	AverageText    string      `json:"average_time_str"`
}

// Journal хранит последние события маршрутов, полученные из шины событий.
// Старые записи вытесняются по достижении емкости.
type Journal struct {
	mu      sync.RWMutex
	entries []JournalEntry
	next    int
	full    bool
	sub     eventbus.Subscription
	logger  *logging.Logger
	now     func() time.Time
}

// NewJournal создает пустой журнал емкостью capacity (<= 0 - по умолчанию)
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = defaultJournalCapacity
	}
	return &Journal{
		entries: make([]JournalEntry, capacity),
		logger:  logging.GetComponentLogger("navlog"),
		now:     time.Now,
	}
}

// Attach подписывает журнал на события маршрутов шины
func (j *Journal) Attach(bus eventbus.EventBus) error {
	sub, err := bus.Subscribe(context.Background(),
		eventbus.Filter{Types: []string{eventbus.RouteComputed, eventbus.RouteFailed}},
		func(_ context.Context, ev *eventbus.Envelope) {
			re, err := eventbus.DecodeRouteEvent(ev)
			if err != nil {
				j.logger.Warn("⚠️ пропущено событие %s: %v", ev.ID, err)
				return
			}
			ts := ev.Timestamp
			if ts.IsZero() {
				ts = j.now()
			}
			j.Record(JournalEntry{RouteEvent: re, Timestamp: ts})
		})
	if err != nil {
		return fmt.Errorf("подписка журнала: %w", err)
	}
	j.sub = sub
	return nil
}

// Detach отписывает журнал от шины
func (j *Journal) Detach() {
	if j.sub != nil {
		j.sub.Unsubscribe()
		j.sub = nil
	}
}

// Record добавляет запись
func (j *Journal) Record(e JournalEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries[j.next] = e
	j.next = (j.next + 1) % len(j.entries)
	if j.next == 0 {
		j.full = true
	}
}

// Query возвращает записи от новых к старым
func (j *Journal) Query(q JournalQuery) []JournalEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]JournalEntry, 0)
	for _, e := range j.newestFirst() {
		if !q.Date.IsZero() && !sameDay(e.Timestamp, q.Date) {
			continue
		}
		if q.MapID != "" && e.MapID != q.MapID {
			continue
		}
		out = append(out, e)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}

// Stats сводка по записям за день day (нулевое значение - за все время):
// число маршрутов, пять самых популярных целей и среднее время в пути.
func (j *Journal) Stats(day time.Time) JournalStats {
	entries := j.Query(JournalQuery{Date: day})

	stats := JournalStats{PopularRooms: make([]RoomCount, 0)}
	rooms := make(map[string]int)
	var seconds float64
	for _, e := range entries {
		stats.TotalRoutes++
		if !e.Found {
			stats.FailedRoutes++
			continue
		}
		stats.FoundRoutes++
		seconds += e.Seconds
		if e.ToRoom != "" {
			rooms[e.ToRoom]++
		}
	}

	for id, n := range rooms {
		stats.PopularRooms = append(stats.PopularRooms, RoomCount{RoomID: id, Count: n})
	}
	sort.Slice(stats.PopularRooms, func(a, b int) bool {
		pa, pb := stats.PopularRooms[a], stats.PopularRooms[b]
		if pa.Count != pb.Count {
			return pa.Count > pb.Count
		}
		return pa.RoomID < pb.RoomID
	})
	if len(stats.PopularRooms) > 5 {
		stats.PopularRooms = stats.PopularRooms[:5]
	}

	if stats.FoundRoutes > 0 {
		stats.AverageSeconds = seconds / float64(stats.FoundRoutes)
	}
	avg := int(stats.AverageSeconds)
	stats.AverageText = fmt.Sprintf("%d min %d sec", avg/60, avg%60)
	return stats
}

func (j *Journal) newestFirst() []JournalEntry {
	n := j.next
	if j.full {
		n = len(j.entries)
	}
	out := make([]JournalEntry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (j.next - i + len(j.entries)) % len(j.entries)
		out = append(out, j.entries[idx])
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
