package navigation

import (
	"github.com/prometheus/client_golang/prometheus"
)

// serviceMetrics метрики поиска маршрутов
type serviceMetrics struct {
	routes     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	pathLength prometheus.Histogram
	published  *prometheus.CounterVec
}

// newServiceMetrics создает метрики и регистрирует их в reg (nil - без регистрации)
func newServiceMetrics(reg prometheus.Registerer) *serviceMetrics {
	m := &serviceMetrics{
		routes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigation_routes_total",
				Help: "Количество запросов маршрута по алгоритму и результату",
			},
			[]string{"algorithm", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "navigation_route_duration_seconds",
				Help:    "Длительность поиска маршрута",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
			},
			[]string{"algorithm"},
		),
		pathLength: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "navigation_path_nodes",
				Help:    "Количество точек в найденных маршрутах",
				Buckets: prometheus.ExponentialBuckets(2, 2, 10),
			},
		),
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigation_events_published_total",
				Help: "Публикации событий навигационного журнала",
			},
			[]string{"status"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.routes, m.duration, m.pathLength, m.published)
	}
	return m
}
