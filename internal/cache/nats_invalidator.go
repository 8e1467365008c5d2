package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/annel0/indoor-nav/internal/logging"
)

// NATSInvalidator реализует Invalidator поверх NATS Pub/Sub.
// Собственные сообщения узла игнорируются.
type NATSInvalidator struct {
	conn    *nats.Conn
	config  InvalidatorConfig
	subject string
	nodeID  string
	logger  *logging.Logger

	mu           sync.Mutex
	subscription *nats.Subscription
	handler      InvalidationHandler

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	publishedCount int64
	receivedCount  int64
	errorsCount    int64
}

// InvalidatorConfig конфигурация NATS invalidator.
type InvalidatorConfig struct {
	NATSURL        string        `yaml:"nats_url"`
	Subject        string        `yaml:"subject"`
	MaxReconnects  int           `yaml:"max_reconnects"`
	ReconnectWait  time.Duration `yaml:"reconnect_wait"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
}

// InvalidationMessage сообщение об изменении карты.
type InvalidationMessage struct {
	MapID     string    `json:"map_id"`
	Timestamp time.Time `json:"timestamp"`
	NodeID    string    `json:"node_id"`
}

func (c *InvalidatorConfig) applyDefaults() {
	if c.Subject == "" {
		c.Subject = "nav.snapshots.invalidate"
	}
	if c.MaxReconnects == 0 {
		c.MaxReconnects = 10
	}
	if c.ReconnectWait == 0 {
		c.ReconnectWait = 2 * time.Second
	}
	if c.PublishTimeout == 0 {
		c.PublishTimeout = 5 * time.Second
	}
}

// NewNATSInvalidator подключается к NATS. nodeID отличает сообщения этого узла.
func NewNATSInvalidator(config InvalidatorConfig, nodeID string) (*NATSInvalidator, error) {
	config.applyDefaults()
	logger := logging.GetComponentLogger("cache")

	opts := []nats.Option{
		nats.Name("indoor-nav-cache"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("⚠️ NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("🔌 NATS reconnected to %s", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(config.NATSURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("📡 NATS invalidator: %s (subject: %s, node: %s)", config.NATSURL, config.Subject, nodeID)
	return &NATSInvalidator{
		conn:    conn,
		config:  config,
		subject: config.Subject,
		nodeID:  nodeID,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// PublishInvalidation отправляет уведомление об изменении карты.
func (n *NATSInvalidator) PublishInvalidation(ctx context.Context, mapID string) error {
	data, err := json.Marshal(InvalidationMessage{
		MapID:     mapID,
		Timestamp: time.Now().UTC(),
		NodeID:    n.nodeID,
	})
	if err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		return fmt.Errorf("failed to marshal invalidation message: %w", err)
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.config.PublishTimeout)
	defer cancel()
	if err := n.conn.FlushWithContext(ctx); err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		return fmt.Errorf("failed to flush invalidation: %w", err)
	}

	atomic.AddInt64(&n.publishedCount, 1)
	n.logger.Debug("published invalidation for map %s", mapID)
	return nil
}

// SubscribeInvalidations подписывается на уведомления. Подписка снимается
// при отмене ctx или при Close.
func (n *NATSInvalidator) SubscribeInvalidations(ctx context.Context, handler InvalidationHandler) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subscription != nil {
		return fmt.Errorf("already subscribed to invalidations")
	}

	n.handler = handler
	sub, err := n.conn.Subscribe(n.subject, n.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to invalidations: %w", err)
	}
	n.subscription = sub

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		select {
		case <-ctx.Done():
		case <-n.stopCh:
		}
		n.unsubscribe()
	}()
	return nil
}

// Close закрывает соединение с NATS.
func (n *NATSInvalidator) Close() error {
	n.once.Do(func() {
		close(n.stopCh)
		n.wg.Wait()
		n.unsubscribe()
		n.conn.Close()
		n.logger.Info("NATS invalidator closed")
	})
	return nil
}

// Stats счетчики: опубликовано, получено, ошибок.
func (n *NATSInvalidator) Stats() (published, received, errors int64) {
	return atomic.LoadInt64(&n.publishedCount),
		atomic.LoadInt64(&n.receivedCount),
		atomic.LoadInt64(&n.errorsCount)
}

func (n *NATSInvalidator) handleMessage(msg *nats.Msg) {
	atomic.AddInt64(&n.receivedCount, 1)

	var m InvalidationMessage
	if err := json.Unmarshal(msg.Data, &m); err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		n.logger.Error("❌ invalid invalidation message: %v", err)
		return
	}
	if m.NodeID == n.nodeID {
		return
	}

	n.mu.Lock()
	handler := n.handler
	n.mu.Unlock()
	if handler == nil {
		return
	}
	if err := handler(m.MapID); err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		n.logger.Error("❌ invalidation handler failed for map %s: %v", m.MapID, err)
	}
}

func (n *NATSInvalidator) unsubscribe() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subscription == nil {
		return
	}
	if err := n.subscription.Unsubscribe(); err != nil {
		n.logger.Warn("⚠️ failed to unsubscribe from invalidations: %v", err)
	}
	n.subscription = nil
}
