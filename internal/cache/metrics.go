package cache

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics публикует счетчики кеша в reg. Значения читаются
// при каждом сборе, отдельный цикл обновления не нужен.
func (c *SnapshotCache) RegisterMetrics(reg prometheus.Registerer) error {
	counter := func(name, help string, v *int64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "snapshot_cache",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(atomic.LoadInt64(v)) })
	}

	collectors := []prometheus.Collector{
		counter("hits_total", "Загрузок снимка, обслуженных из кеша.", &c.hits),
		counter("misses_total", "Загрузок снимка из холодного хранилища.", &c.misses),
		counter("invalidations_total", "Удаленных из кеша записей после изменения карты.", &c.invalidations),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "snapshot_cache",
			Name:      "entries",
			Help:      "Количество снимков в кеше.",
		}, func() float64 { return float64(c.Metrics().TotalKeys) }),
	}

	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}
