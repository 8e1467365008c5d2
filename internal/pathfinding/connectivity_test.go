package pathfinding

import (
	"errors"
	"testing"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/vec"
)

func TestCheckConnectivity(t *testing.T) {
	s := openBuilding(t, 1, 6, 6)
	f := s.Floors[1]
	if err := f.SetEntrance(0, 0); err != nil {
		t.Fatal(err)
	}
	walledCell(f, 4, 4)
	for _, room := range []struct {
		id   string
		x, y int
	}{{"C", 2, 2}, {"A", 5, 0}, {"B", 4, 4}} {
		if err := f.AddRoom(room.id, room.id, room.x, room.y); err != nil {
			t.Fatal(err)
		}
	}

	report, err := NewPlanarRouter(s, 0).CheckConnectivity(1)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if report.Total != 3 {
		t.Errorf("Ожидалось 3 комнаты, получено %d", report.Total)
	}
	if len(report.Reachable) != 2 || report.Reachable[0] != "A" || report.Reachable[1] != "C" {
		t.Errorf("Достижимые комнаты должны идти по ID: %v", report.Reachable)
	}
	if len(report.Unreachable) != 1 || report.Unreachable[0] != "B" {
		t.Errorf("Ожидалась недостижимая комната B: %v", report.Unreachable)
	}
	if report.Ratio < 0.66 || report.Ratio > 0.67 {
		t.Errorf("Ожидалась доля 2/3, получено %f", report.Ratio)
	}
}

func TestCheckConnectivityEdgeCases(t *testing.T) {
	s := openBuilding(t, 2, 3, 3)
	if err := s.Floors[1].SetEntrance(0, 0); err != nil {
		t.Fatal(err)
	}
	r := NewPlanarRouter(s, 0)

	report, err := r.CheckConnectivity(1)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if report.Total != 0 || report.Ratio != 0 {
		t.Errorf("Для этажа без комнат ожидалась доля 0: %+v", report)
	}

	if _, err := r.CheckConnectivity(2); !errors.Is(err, ErrNoEntrance) {
		t.Errorf("Ожидалась ErrNoEntrance, получено %v", err)
	}
	if _, err := r.CheckConnectivity(9); !errors.Is(err, ErrUnknownFloor) {
		t.Errorf("Ожидалась ErrUnknownFloor, получено %v", err)
	}
}

func TestAuditBuilding(t *testing.T) {
	s := roomsBuilding(t)
	s.MainEntrance = &vec.Vec3{X: 0, Y: 0, Z: 1}
	walledCell(s.Floors[2], 4, 4)
	if err := s.Floors[2].AddRoom("202", "Closet", 4, 4); err != nil {
		t.Fatal(err)
	}

	audit, err := AuditBuilding(s)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if audit.Total != 3 || len(audit.Reachable) != 2 {
		t.Errorf("Ожидалось 2 из 3 достижимых комнат: %+v", audit)
	}
	if len(audit.Unreachable) != 1 || audit.Unreachable[0] != "202" {
		t.Errorf("Ожидалась недостижимая комната 202: %v", audit.Unreachable)
	}
	if audit.Links != 1 || len(audit.Floors) != 2 {
		t.Errorf("Неверная сводка по этажам и связям: %+v", audit)
	}
	if audit.Floors[1].Rooms != 2 || audit.Floors[1].Reachable != 1 {
		t.Errorf("Неверное покрытие этажа 2: %+v", audit.Floors[1])
	}
}

func TestAuditBuildingErrors(t *testing.T) {
	if _, err := AuditBuilding(building.NewSnapshot("empty")); !errors.Is(err, ErrUnknownFloor) {
		t.Errorf("Ожидалась ErrUnknownFloor, получено %v", err)
	}
	if _, err := AuditBuilding(scenarioB(t)); !errors.Is(err, ErrNoEntrance) {
		t.Errorf("Ожидалась ErrNoEntrance, получено %v", err)
	}
}
