package eventbus

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrBusClosed публикация или подписка после Close
var ErrBusClosed = errors.New("event bus closed")

// Типы событий навигации
const (
	RouteComputed = "navigation.route_computed"
	RouteFailed   = "navigation.route_failed"
)

// RouteEvent запись журнала навигации
type RouteEvent struct {
	PathID     string  `json:"path_id"`
	MapID      string  `json:"map_id"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	ToRoom     string  `json:"to_room,omitempty"`
	Algorithm  string  `json:"algorithm"`
	Found      bool    `json:"found"`
	Steps      int     `json:"steps"`
	Floors     []int   `json:"floors,omitempty"`
	Cost       float64 `json:"cost"`
	Seconds    float64 `json:"estimated_seconds"`
	DurationMs float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// NewEnvelope упаковывает полезную нагрузку в JSON-конверт с новым UUID
func NewEnvelope(source, eventType, correlationID string, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("сериализация %s: %w", eventType, err)
	}
	return &Envelope{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Source:        source,
		EventType:     eventType,
		Version:       1,
		CorrelationID: correlationID,
		Payload:       data,
	}, nil
}

// DecodeRouteEvent разбирает полезную нагрузку события маршрута
func DecodeRouteEvent(ev *Envelope) (RouteEvent, error) {
	var re RouteEvent
	if err := json.Unmarshal(ev.Payload, &re); err != nil {
		return RouteEvent{}, fmt.Errorf("разбор %s: %w", ev.EventType, err)
	}
	return re, nil
}
