package navigation_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/eventbus"
	"github.com/annel0/indoor-nav/internal/navigation"
	"github.com/annel0/indoor-nav/internal/pathfinding"
	"github.com/annel0/indoor-nav/internal/storage"
	"github.com/annel0/indoor-nav/internal/vec"
)

// twoFloorBuilding два открытых этажа 5x5 с лестницей в центре
func twoFloorBuilding(t *testing.T) *building.Snapshot {
	t.Helper()
	s := building.NewSnapshot("Main hall")
	for _, id := range []int{1, 2} {
		s.AddFloor(building.NewFloor(id, 5, 5))
	}
	f1 := s.Floors[1]
	require.NoError(t, f1.SetEntrance(0, 0))
	require.NoError(t, f1.AddRoom("101", "Lecture 101", 4, 0))
	require.NoError(t, s.Floors[2].AddRoom("201", "Lab 201", 4, 4))
	s.AddLink(building.NewVerticalLink("stair_a", building.LinkStair,
		vec.Vec3{X: 2, Y: 2, Z: 1}, vec.Vec3{X: 2, Y: 2, Z: 2}))
	return s
}

// flatBuilding один этаж с отгороженной кладовкой в углу
func flatBuilding(t *testing.T) *building.Snapshot {
	t.Helper()
	s := building.NewSnapshot("Annex")
	f := building.NewFloor(1, 5, 5)
	s.AddFloor(f)
	require.NoError(t, f.SetEntrance(0, 0))
	require.NoError(t, f.AddRoom("office", "Office", 4, 0))
	require.NoError(t, f.AddRoom("closet", "", 4, 4))
	f.SetCell(3, 4, building.CellObstacle)
	f.SetCell(4, 3, building.CellObstacle)
	return s
}

type fixture struct {
	svc  *navigation.Service
	repo *storage.MemorySnapshotRepo
	bus  eventbus.EventBus
	reg  *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := storage.NewMemorySnapshotRepo()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "main", twoFloorBuilding(t)))
	require.NoError(t, repo.Save(ctx, "annex", flatBuilding(t)))

	bus := eventbus.NewMemoryBus(16)
	t.Cleanup(func() { _ = bus.Close() })

	reg := prometheus.NewRegistry()
	return &fixture{
		svc:  navigation.NewService(repo, bus, reg, navigation.DefaultOptions()),
		repo: repo,
		bus:  bus,
		reg:  reg,
	}
}

func counter(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRouteBetweenRoomsAcrossFloors(t *testing.T) {
	f := newFixture(t)

	events := make(chan eventbus.RouteEvent, 4)
	_, err := f.bus.Subscribe(context.Background(), eventbus.Filter{Types: []string{eventbus.RouteComputed}},
		func(_ context.Context, ev *eventbus.Envelope) {
			re, err := eventbus.DecodeRouteEvent(ev)
			if err == nil {
				events <- re
			}
		})
	require.NoError(t, err)

	res, err := f.svc.Route(context.Background(), "main", navigation.RouteRequest{FromRoom: "101", ToRoom: "201"})
	require.NoError(t, err)

	assert.Equal(t, navigation.AlgorithmAStar, res.Algorithm)
	assert.NotEmpty(t, res.PathID)
	assert.NoError(t, res.Path.CheckContinuity())

	start, _ := res.Path.Start()
	end, _ := res.Path.End()
	assert.Equal(t, pathfinding.At(4, 0, 1), start.Pos)
	assert.Equal(t, pathfinding.At(4, 4, 2), end.Pos)

	assert.Equal(t, []int{1, 2}, res.Stats.FloorsVisited)
	assert.Equal(t, 1, res.Stats.VerticalTransitions)
	assert.Equal(t, "You have arrived at Lab 201", res.Instructions[len(res.Instructions)-1])
	assert.Contains(t, strings.Join(res.Instructions, "\n"), "prepare to go up to floor 2")
	assert.False(t, res.Fallback)

	select {
	case ev := <-events:
		assert.Equal(t, res.PathID, ev.PathID)
		assert.Equal(t, "main", ev.MapID)
		assert.Equal(t, "201", ev.ToRoom)
		assert.True(t, ev.Found)
		assert.Equal(t, res.Stats.TotalCost, ev.Cost)
	case <-time.After(2 * time.Second):
		t.Fatal("событие route_computed не получено")
	}

	assert.Equal(t, 1.0, counter(t, f.reg, "navigation_routes_total",
		map[string]string{"algorithm": "astar", "result": "found"}))
}

func TestRouteFlatMapUsesBFS(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Route(context.Background(), "annex", navigation.RouteRequest{
		Start: &pathfinding.Position{X: 0, Y: 0, Floor: 1},
		End:   &pathfinding.Position{X: 4, Y: 0, Floor: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, navigation.AlgorithmBFS, res.Algorithm)
	assert.Len(t, res.Path, 5)
	assert.Equal(t, []string{
		"Start navigation. Please follow the guidance",
		"Walk 4 steps forward",
		"You have reached your destination",
	}, res.Instructions)
	// 5 точек без поворотов
	assert.Equal(t, 5.0, res.Stats.EstimatedSeconds)
}

func TestRouteFromEntrance(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Route(context.Background(), "main", navigation.RouteRequest{FromEntrance: true, ToRoom: "201"})
	require.NoError(t, err)

	start, _ := res.Path.Start()
	assert.Equal(t, pathfinding.At(0, 0, 1), start.Pos)
	assert.Equal(t, "entrance", res.From)
	assert.Equal(t, "201", res.To)
}

func TestRouteErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	origin := &pathfinding.Position{X: 0, Y: 0, Floor: 1}

	tests := []struct {
		name  string
		mapID string
		req   navigation.RouteRequest
		want  error
	}{
		{"unknown map", "nowhere", navigation.RouteRequest{FromRoom: "101", ToRoom: "201"}, navigation.ErrMapNotFound},
		{"unknown room", "main", navigation.RouteRequest{FromRoom: "101", ToRoom: "999"}, pathfinding.ErrUnknownRoom},
		{"two origins", "main", navigation.RouteRequest{Start: origin, FromRoom: "101", ToRoom: "201"}, navigation.ErrBadRequest},
		{"no destination", "main", navigation.RouteRequest{FromRoom: "101"}, navigation.ErrBadRequest},
		{"unknown algorithm", "main", navigation.RouteRequest{FromRoom: "101", ToRoom: "201", Algorithm: "dijkstra"}, navigation.ErrBadRequest},
		{"bfs across floors", "main", navigation.RouteRequest{FromRoom: "101", ToRoom: "201", Algorithm: "bfs"}, pathfinding.ErrInvalidEndpoint},
		{"blocked start", "annex", navigation.RouteRequest{Start: &pathfinding.Position{X: 3, Y: 4, Floor: 1}, ToRoom: "office"}, pathfinding.ErrInvalidEndpoint},
		{"walled goal", "annex", navigation.RouteRequest{FromEntrance: true, ToRoom: "closet"}, pathfinding.ErrNoPathFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.Route(ctx, tt.mapID, tt.req)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, 1.0, counter(t, f.reg, "navigation_routes_total",
		map[string]string{"algorithm": "bfs", "result": "not_found"}))
}

func TestRouteCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Route(ctx, "main", navigation.RouteRequest{FromRoom: "101", ToRoom: "201"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRouteLeavesStoredSnapshotIntact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stored, _, err := f.repo.Load(ctx, "main")
	require.NoError(t, err)
	before, err := building.EncodeSnapshot(stored)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Route(ctx, "main", navigation.RouteRequest{FromEntrance: true, ToRoom: "201"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	after, err := building.EncodeSnapshot(stored)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestRouteWithoutBus(t *testing.T) {
	repo := storage.NewMemorySnapshotRepo()
	require.NoError(t, repo.Save(context.Background(), "annex", flatBuilding(t)))
	svc := navigation.NewService(repo, nil, nil, navigation.DefaultOptions())

	res, err := svc.Route(context.Background(), "annex", navigation.RouteRequest{FromRoom: "office", End: &pathfinding.Position{X: 0, Y: 4, Floor: 1}})
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Stats.TotalCost)
}

func TestConnectivityAndAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.svc.Connectivity(ctx, "annex", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"office"}, report.Reachable)
	assert.Equal(t, []string{"closet"}, report.Unreachable)
	assert.InDelta(t, 0.5, report.Ratio, 1e-9)

	audit, err := f.svc.Audit(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 2, audit.Total)
	assert.Empty(t, audit.Unreachable)
	assert.Equal(t, 1, audit.Links)

	_, err = f.svc.Audit(ctx, "nowhere")
	assert.ErrorIs(t, err, navigation.ErrMapNotFound)

	maps, err := f.svc.Maps(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"annex", "main"}, maps)
}
