package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/indoor-nav/internal/logging"
	"github.com/annel0/indoor-nav/internal/middleware"
	"github.com/annel0/indoor-nav/internal/navigation"
)

// RestServer HTTP API навигации
type RestServer struct {
	router     *gin.Engine
	nav        *navigation.Service
	journal    *navigation.Journal
	addr       string
	metrics    *ServerMetrics
	httpServer *http.Server
	logger     *logging.Logger
}

// Config содержит конфигурацию REST сервера
type Config struct {
	Port        int                 // порт; 0 - 8090
	Service     *navigation.Service // сервис маршрутов
	Journal     *navigation.Journal // журнал навигации; nil - эндпоинты журнала отвечают 503
	Registry    *prometheus.Registry
	ServiceName string // имя для otelgin и префикса метрик
}

// NewRestServer создает REST сервер и настраивает маршруты
func NewRestServer(config Config) *RestServer {
	if config.Port == 0 {
		config.Port = 8090
	}
	if config.ServiceName == "" {
		config.ServiceName = "indoor_nav"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	// === Observability middleware ===
	router.Use(otelgin.Middleware(config.ServiceName))
	router.Use(middleware.NewRequestLogger(logging.GetComponentLogger("http")).Handler())
	router.Use(middleware.NewPrometheusMiddleware(config.ServiceName, config.Registry).Handler())
	middleware.RegisterMetricsEndpoint(router, config.Registry)

	server := &RestServer{
		router:  router,
		nav:     config.Service,
		journal: config.Journal,
		addr:    fmt.Sprintf(":%d", config.Port),
		metrics: NewServerMetrics(),
		logger:  logging.GetServerLogger(),
	}
	server.setupRoutes()
	return server
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	// CORS для веб-клиента карты
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := rs.router.Group("/api")

	nav := api.Group("/navigation")
	{
		nav.POST("/:map/path", rs.handlePath)
		nav.POST("/:map/room", rs.handleRoom)
		nav.GET("/logs", rs.handleLogs)
		nav.GET("/stats", rs.handleStats)
	}

	maps := api.Group("/maps")
	{
		maps.GET("", rs.handleListMaps)
		maps.GET("/:map/connectivity", rs.handleConnectivity)
		maps.GET("/:map/audit", rs.handleAudit)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// Handler возвращает http.Handler (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Start запускает сервер в отдельной горутине
func (rs *RestServer) Start() error {
	rs.httpServer = &http.Server{
		Addr:              rs.addr,
		Handler:           rs.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rs.logger.Error("❌ Ошибка REST API сервера: %v", err)
		}
	}()

	rs.logger.Info("✅ REST API сервер запущен на http://localhost%s", rs.addr)
	rs.logger.Info("📋 Доступные эндпоинты:")
	rs.logger.Info("   POST /api/navigation/:map/path        - Маршрут между точками/комнатами")
	rs.logger.Info("   POST /api/navigation/:map/room        - Маршрут до комнаты")
	rs.logger.Info("   GET  /api/navigation/logs             - Журнал навигации")
	rs.logger.Info("   GET  /api/navigation/stats            - Статистика навигации")
	rs.logger.Info("   GET  /api/maps                        - Список карт")
	rs.logger.Info("   GET  /api/maps/:map/connectivity      - Достижимость комнат этажа")
	rs.logger.Info("   GET  /api/maps/:map/audit             - Достижимость комнат здания")
	rs.logger.Info("   GET  /health, /metrics")
	return nil
}

// Stop останавливает сервер, дожидаясь завершения текущих запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.httpServer == nil {
		return nil
	}
	rs.logger.Info("🛑 Остановка REST API сервера...")

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return rs.httpServer.Shutdown(ctx)
}
