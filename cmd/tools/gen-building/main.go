package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/generator"
	"github.com/annel0/indoor-nav/internal/pathfinding"
	"github.com/annel0/indoor-nav/internal/storage"
)

func main() {
	var (
		seed      = flag.Int64("seed", 1, "seed генерации")
		floors    = flag.Int("floors", 3, "число этажей")
		width     = flag.Int("width", 24, "ширина сетки этажа")
		height    = flag.Int("height", 16, "высота сетки этажа")
		rooms     = flag.Int("rooms", 4, "комнат на этаж")
		threshold = flag.Float64("threshold", generator.DefaultObstacleThreshold, "порог шума для препятствий")
		noLift    = flag.Bool("no-elevator", false, "не ставить лифт")
		name      = flag.String("name", "", "название здания")
		out       = flag.String("out", "", "файл для JSON документа (по умолчанию stdout)")
		badger    = flag.String("badger", "", "каталог BadgerDB для сохранения карты")
		mapID     = flag.String("id", "", "ID карты в BadgerDB (по умолчанию gen-<seed>)")
	)
	flag.Parse()

	s, err := generator.Generate(generator.Options{
		Name:              *name,
		Seed:              *seed,
		Floors:            *floors,
		Width:             *width,
		Height:            *height,
		RoomsPerFloor:     *rooms,
		ObstacleThreshold: *threshold,
		NoElevator:        *noLift,
	})
	if err != nil {
		log.Fatalf("❌ Ошибка генерации: %v", err)
	}

	audit, err := pathfinding.AuditBuilding(s)
	if err != nil {
		log.Fatalf("❌ Ошибка аудита: %v", err)
	}
	fmt.Fprintf(os.Stderr, "🏢 %s: этажей %d, комнат %d, связей %d, достижимо %.0f%%\n",
		s.Name, len(s.Floors), audit.Total, audit.Links, audit.Ratio*100)

	if *badger != "" {
		id := *mapID
		if id == "" {
			id = fmt.Sprintf("gen-%d", *seed)
		}
		store, err := storage.NewBadgerSnapshotStore(*badger)
		if err != nil {
			log.Fatalf("❌ Ошибка открытия BadgerDB: %v", err)
		}
		defer store.Close()
		if err := store.Save(context.Background(), id, s); err != nil {
			log.Fatalf("❌ Ошибка сохранения: %v", err)
		}
		fmt.Fprintf(os.Stderr, "💾 карта %s сохранена в %s\n", id, *badger)
		return
	}

	data, err := building.EncodeSnapshot(s)
	if err != nil {
		log.Fatalf("❌ Ошибка сериализации: %v", err)
	}
	if *out == "" {
		_, _ = os.Stdout.Write(append(data, '\n'))
		return
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		log.Fatalf("❌ Ошибка записи %s: %v", *out, err)
	}
	fmt.Fprintf(os.Stderr, "📄 документ записан в %s\n", *out)
}
