package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/indoor-nav/internal/api"
	"github.com/annel0/indoor-nav/internal/cache"
	"github.com/annel0/indoor-nav/internal/config"
	"github.com/annel0/indoor-nav/internal/eventbus"
	"github.com/annel0/indoor-nav/internal/logging"
	"github.com/annel0/indoor-nav/internal/navigation"
	"github.com/annel0/indoor-nav/internal/observability"
	"github.com/annel0/indoor-nav/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию $NAV_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}

	logging.SetLogDir(cfg.Logging.Dir)
	if err := logging.InitDefaultLogger("nav"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	logging.SetLevel(logging.ParseLevel(cfg.Logging.Level))
	defer func() {
		if err := logging.CloseAll(); err != nil {
			log.Printf("❌ Ошибка закрытия логов: %v", err)
		}
	}()

	logging.Info("🧭 Запуск сервера навигации внутри зданий...")

	ctx := context.Background()

	// === ТЕЛЕМЕТРИЯ ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		logging.Warn("⚠️ OpenTelemetry не инициализирован: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	// === ХРАНИЛИЩЕ КАРТ ===
	repo, err := storage.NewSnapshotRepo(cfg.Storage)
	if err != nil {
		logging.Error("❌ Ошибка создания хранилища: %v", err)
		os.Exit(1)
	}
	logging.Info("💾 Хранилище карт: %s", backendName(cfg.Storage.Backend))

	if cfg.Server.MapsDir != "" {
		if _, err := storage.ImportDir(ctx, repo, cfg.Server.MapsDir); err != nil {
			logging.Error("❌ Ошибка импорта карт: %v", err)
		}
	}

	if cfg.Storage.CacheEnabled {
		repo = newSnapshotCache(ctx, repo, cfg.Storage)
	}

	// === ШИНА СОБЫТИЙ ===
	bus := newEventBus(cfg.EventBus)
	logSub, err := eventbus.StartLoggingListener(bus)
	if err != nil {
		logging.Warn("⚠️ Журнал маршрутов в лог недоступен: %v", err)
	}

	journal := navigation.NewJournal(0)
	if err := journal.Attach(bus); err != nil {
		logging.Warn("⚠️ Журнал навигации недоступен: %v", err)
		journal = nil
	}

	// === МЕТРИКИ ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if sc, ok := repo.(*cache.SnapshotCache); ok {
		if err := sc.RegisterMetrics(reg); err != nil {
			logging.Warn("⚠️ Метрики кеша снимков не зарегистрированы: %v", err)
		}
	}
	busMetrics := eventbus.NewMetricsExporter(bus, reg)
	busMetrics.Start(5 * time.Second)

	// === СЕРВИСЫ ===
	svc := navigation.NewService(repo, bus, reg, navigation.OptionsFromConfig(cfg))
	rest := api.NewRestServer(api.Config{
		Port:        cfg.Server.GetRESTPort(),
		Service:     svc,
		Journal:     journal,
		Registry:    reg,
		ServiceName: "indoor_nav",
	})
	if err := rest.Start(); err != nil {
		logging.Error("❌ Ошибка запуска REST API: %v", err)
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()),
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("❌ Ошибка сервера метрик: %v", err)
		}
	}()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost:%d", cfg.Server.GetRESTPort())
	logging.Info("   📈 Prometheus: http://localhost:%d/metrics", cfg.Server.GetMetricsPort())
	logging.Info("💡 curl -X POST http://localhost:%d/api/navigation/<map>/room -d '{\"room_id\":\"101\"}'", cfg.Server.GetRESTPort())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := rest.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки сервера метрик: %v", err)
	}

	busMetrics.Stop()
	if journal != nil {
		journal.Detach()
	}
	if logSub != nil {
		logSub.Unsubscribe()
	}
	if err := bus.Close(); err != nil {
		logging.Error("❌ Ошибка закрытия шины событий: %v", err)
	}
	if err := repo.Close(); err != nil {
		logging.Error("❌ Ошибка закрытия хранилища: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки телеметрии: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}

// newEventBus подключается к JetStream, если задан URL; иначе (или при ошибке) - шина в памяти
func newEventBus(cfg config.EventBusConfig) eventbus.EventBus {
	if cfg.URL == "" {
		logging.Info("📨 Шина событий: in-memory")
		return eventbus.NewMemoryBus(0)
	}

	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, cfg.RetentionDuration())
	if err != nil {
		logging.Warn("⚠️ JetStream недоступен (%v), используется шина в памяти", err)
		return eventbus.NewMemoryBus(0)
	}
	logging.Info("📨 Шина событий: JetStream %s", cfg.URL)
	return bus
}

// newSnapshotCache оборачивает хранилище кешем; при заданном URL кеши узлов
// синхронизируются через NATS
func newSnapshotCache(ctx context.Context, repo storage.SnapshotRepo, cfg config.StorageConfig) storage.SnapshotRepo {
	var inv cache.Invalidator
	if cfg.InvalidationURL != "" {
		nodeID := uuid.NewString()
		natsInv, err := cache.NewNATSInvalidator(cache.InvalidatorConfig{NATSURL: cfg.InvalidationURL}, nodeID)
		if err != nil {
			logging.Warn("⚠️ Инвалидация кеша через NATS недоступна: %v", err)
		} else {
			inv = natsInv
		}
	}

	c := cache.NewSnapshotCache(repo, inv, cfg.CacheTTLDuration())
	if err := c.Listen(ctx); err != nil {
		logging.Warn("⚠️ Подписка на инвалидации не удалась: %v", err)
	}
	logging.Info("🗃️ Кеш снимков включен (TTL %v, NATS: %v)", cfg.CacheTTLDuration(), inv != nil)
	return c
}

func backendName(backend string) string {
	if backend == "" {
		return "memory"
	}
	return backend
}
