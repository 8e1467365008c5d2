package eventbus

import (
	"context"

	"github.com/annel0/indoor-nav/internal/logging"
)

// StartLoggingListener подписывается на события навигации и пишет журнал маршрутов.
// Функция неблокирующая.
func StartLoggingListener(bus EventBus) (Subscription, error) {
	logger := logging.GetComponentLogger("navlog")
	sub, err := bus.Subscribe(context.Background(), Filter{Types: []string{RouteComputed, RouteFailed}}, func(ctx context.Context, ev *Envelope) {
		re, err := DecodeRouteEvent(ev)
		if err != nil {
			logger.Warn("⚠️ %s: %v", ev.ID, err)
			return
		}
		if re.Found {
			logger.Info("🧭 %s map=%s %s -> %s algo=%s steps=%d cost=%.1f eta=%.0fs", re.PathID, re.MapID, re.From, re.To, re.Algorithm, re.Steps, re.Cost, re.Seconds)
		} else {
			logger.Info("🚫 map=%s %s -> %s algo=%s: %s", re.MapID, re.From, re.To, re.Algorithm, re.Error)
		}
	})
	if err != nil {
		return nil, err
	}
	logger.Info("🪵 LoggingListener: подписка на события навигации активирована")
	return sub, nil
}
