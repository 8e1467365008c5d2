package navigation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tiendc/go-deepcopy"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/config"
	"github.com/annel0/indoor-nav/internal/eventbus"
	"github.com/annel0/indoor-nav/internal/logging"
	"github.com/annel0/indoor-nav/internal/narration"
	"github.com/annel0/indoor-nav/internal/pathfinding"
	"github.com/annel0/indoor-nav/internal/storage"
)

const eventSource = "indoor-nav"

// Options параметры поиска и озвучивания
type Options struct {
	Cost                pathfinding.CostModel
	Timing              narration.Timing
	PlanarMaxExpansions int
	MaxExpansions       int
}

// DefaultOptions параметры по умолчанию
func DefaultOptions() Options {
	return Options{
		Cost:                pathfinding.DefaultCostModel(),
		Timing:              narration.DefaultTiming(),
		PlanarMaxExpansions: pathfinding.DefaultPlanarMaxExpansions,
		MaxExpansions:       pathfinding.DefaultVolumetricMaxExpansions,
	}
}

// OptionsFromConfig собирает параметры из секций routing и narration
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return DefaultOptions()
	}
	return Options{
		Cost:                cfg.Routing.CostModel(),
		Timing:              cfg.Narration.Timing(),
		PlanarMaxExpansions: cfg.Routing.PlanarMaxExpansions,
		MaxExpansions:       cfg.Routing.MaxExpansions,
	}
}

// Service отвечает на запросы маршрутов по картам из хранилища.
// Каждый запрос работает со своей копией снимка здания, поэтому
// сервис безопасен для параллельного использования.
type Service struct {
	repo     storage.SnapshotRepo
	bus      eventbus.EventBus
	opts     Options
	narrator *narration.Narrator
	metrics  *serviceMetrics
	tracer   oteltrace.Tracer
	logger   *logging.Logger
}

// NewService создает сервис. bus и reg могут быть nil.
func NewService(repo storage.SnapshotRepo, bus eventbus.EventBus, reg prometheus.Registerer, opts Options) *Service {
	return &Service{
		repo:     repo,
		bus:      bus,
		opts:     opts,
		narrator: narration.NewNarrator(opts.Timing),
		metrics:  newServiceMetrics(reg),
		tracer:   otel.Tracer("github.com/annel0/indoor-nav/internal/navigation"),
		logger:   logging.GetComponentLogger("navigation"),
	}
}

// Maps список карт в хранилище
func (s *Service) Maps(ctx context.Context) ([]string, error) {
	return s.repo.List(ctx)
}

// Route ищет и озвучивает маршрут по карте mapID.
// Если путь не найден, возвращается ошибка pathfinding.ErrNoPathFound.
func (s *Service) Route(ctx context.Context, mapID string, req RouteRequest) (*RouteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "navigation.Route",
		oteltrace.WithAttributes(attribute.String("nav.map_id", mapID)))
	defer span.End()

	result, err := s.route(ctx, mapID, req, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (s *Service) route(ctx context.Context, mapID string, req RouteRequest, span oteltrace.Span) (*RouteResult, error) {
	snapshot, err := s.snapshot(ctx, mapID)
	if err != nil {
		return nil, err
	}

	p, err := resolve(snapshot, req)
	if err != nil {
		return nil, err
	}
	algorithm, err := chooseAlgorithm(snapshot, req.Algorithm, p)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("nav.algorithm", algorithm),
		attribute.String("nav.from", p.from),
		attribute.String("nav.to", p.to),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := time.Now()
	path, found, err := s.search(snapshot, algorithm, p)
	elapsed := time.Since(started)
	s.metrics.duration.WithLabelValues(algorithm).Observe(elapsed.Seconds())

	pathID := uuid.NewString()
	event := eventbus.RouteEvent{
		PathID:     pathID,
		MapID:      mapID,
		From:       p.from,
		To:         p.to,
		ToRoom:     p.toRoom,
		Algorithm:  algorithm,
		DurationMs: float64(elapsed.Microseconds()) / 1000,
	}

	if err != nil {
		s.metrics.routes.WithLabelValues(algorithm, "invalid").Inc()
		return nil, err
	}
	if !found {
		s.metrics.routes.WithLabelValues(algorithm, "not_found").Inc()
		event.Error = pathfinding.ErrNoPathFound.Error()
		s.publish(ctx, eventbus.RouteFailed, pathID, event)
		s.logger.Info("🚫 маршрут %s -> %s на карте %s не найден (%s)", p.from, p.to, mapID, algorithm)
		return nil, fmt.Errorf("%w: %v -> %v", pathfinding.ErrNoPathFound, p.start, p.end)
	}

	narrated := s.narrator.Narrate(path, p.target)
	stats := s.narrator.Stats(path)
	if algorithm == AlgorithmBFS {
		// плоский маршрут оценивается по норме 2D API: секунда на точку и на поворот
		stats.EstimatedSeconds = pathfinding.EstimateSeconds(path)
	}

	s.metrics.routes.WithLabelValues(algorithm, "found").Inc()
	s.metrics.pathLength.Observe(float64(len(path)))
	span.SetAttributes(
		attribute.Int("nav.path_nodes", len(path)),
		attribute.Float64("nav.cost", stats.TotalCost),
	)

	event.Found = true
	event.Steps = stats.TotalSteps
	event.Floors = stats.FloorsVisited
	event.Cost = stats.TotalCost
	event.Seconds = stats.EstimatedSeconds
	s.publish(ctx, eventbus.RouteComputed, pathID, event)

	s.logger.Debug("🧭 маршрут %s: %s -> %s, %d точек, стоимость %.1f", pathID, p.from, p.to, len(path), stats.TotalCost)

	return &RouteResult{
		PathID:       pathID,
		MapID:        mapID,
		Algorithm:    algorithm,
		From:         p.from,
		To:           p.to,
		Path:         path,
		Instructions: narrated.Instructions,
		Steps:        narrated.Steps,
		Stats:        stats,
		Fallback:     narrated.Fallback,
	}, nil
}

func (s *Service) search(snapshot *building.Snapshot, algorithm string, p plan) (pathfinding.Path, bool, error) {
	if algorithm == AlgorithmBFS {
		return pathfinding.NewPlanarRouter(snapshot, s.opts.PlanarMaxExpansions).FindPath(p.start, p.end)
	}
	router, err := pathfinding.NewVolumetricRouter(snapshot, s.opts.Cost, s.opts.MaxExpansions)
	if err != nil {
		return nil, false, err
	}
	return router.FindPath(p.start, p.end)
}

// Connectivity проверка достижимости комнат этажа от его входа
func (s *Service) Connectivity(ctx context.Context, mapID string, floor int) (pathfinding.ConnectivityReport, error) {
	ctx, span := s.tracer.Start(ctx, "navigation.Connectivity")
	defer span.End()

	snapshot, err := s.snapshot(ctx, mapID)
	if err != nil {
		return pathfinding.ConnectivityReport{}, err
	}
	return pathfinding.NewPlanarRouter(snapshot, s.opts.PlanarMaxExpansions).CheckConnectivity(floor)
}

// Audit проверка достижимости всех комнат здания от входа с учетом переходов
func (s *Service) Audit(ctx context.Context, mapID string) (pathfinding.BuildingAudit, error) {
	ctx, span := s.tracer.Start(ctx, "navigation.Audit")
	defer span.End()

	snapshot, err := s.snapshot(ctx, mapID)
	if err != nil {
		return pathfinding.BuildingAudit{}, err
	}
	return pathfinding.AuditBuilding(snapshot)
}

// snapshot загружает карту и возвращает ее собственную копию, прошедшую проверку
func (s *Service) snapshot(ctx context.Context, mapID string) (*building.Snapshot, error) {
	stored, found, err := s.repo.Load(ctx, mapID)
	if err != nil {
		return nil, fmt.Errorf("load map %s: %w", mapID, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrMapNotFound, mapID)
	}

	own := new(building.Snapshot)
	if err := deepcopy.Copy(own, stored); err != nil {
		return nil, fmt.Errorf("copy map %s: %w", mapID, err)
	}
	if err := own.Validate(); err != nil {
		return nil, fmt.Errorf("map %s: %w", mapID, err)
	}
	return own, nil
}

// publish отправляет событие журнала навигации; ошибки только логируются
func (s *Service) publish(ctx context.Context, eventType, pathID string, event eventbus.RouteEvent) {
	if s.bus == nil {
		return
	}
	env, err := eventbus.NewEnvelope(eventSource, eventType, pathID, event)
	if err == nil {
		err = s.bus.Publish(ctx, env)
	}
	if err != nil {
		s.metrics.published.WithLabelValues("error").Inc()
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("⚠️ событие %s не опубликовано: %v", eventType, err)
		}
		return
	}
	s.metrics.published.WithLabelValues("ok").Inc()
}
