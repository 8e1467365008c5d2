package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/annel0/indoor-nav/internal/eventbus"
)

const (
	defaultNatsURL   = "nats://127.0.0.1:4222"
	defaultServerURL = "http://localhost:8090"
	timeFormat       = "2006-01-02T15:04:05Z"
)

func main() {
	var (
		natsURL   = flag.String("nats", defaultNatsURL, "NATS server URL")
		stream    = flag.String("stream", "NAVIGATION", "JetStream stream name")
		serverURL = flag.String("server", defaultServerURL, "REST API base URL")
		command   = flag.String("cmd", "tail", "Command: tail, logs, stats")
		eventType = flag.String("types", "", "Event types filter (comma-separated)")
		date      = flag.String("date", "", "Day for logs/stats (YYYY-MM-DD, default today)")
		mapID     = flag.String("map", "", "Map ID filter for logs")
		limit     = flag.Int("limit", 50, "Maximum number of log entries")
	)
	flag.Parse()

	var err error
	switch *command {
	case "tail":
		err = tailEvents(*natsURL, *stream, parseStringList(*eventType))
	case "logs":
		err = showLogs(*serverURL, *date, *mapID, *limit)
	case "stats":
		err = showStats(*serverURL, *date)
	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, logs, stats")
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("❌ %s failed: %v", *command, err)
	}
}

// tailEvents печатает события навигации из JetStream до Ctrl+C
func tailEvents(natsURL, stream string, types []string) error {
	bus, err := eventbus.NewJetStreamBus(natsURL, stream, 0)
	if err != nil {
		return err
	}
	defer bus.Close()

	if len(types) == 0 {
		types = []string{eventbus.RouteComputed, eventbus.RouteFailed}
	}

	fmt.Printf("🎬 Tailing %s on %s (Ctrl+C to stop)\n", strings.Join(types, ", "), natsURL)
	count := 0
	sub, err := bus.Subscribe(context.Background(), eventbus.Filter{Types: types}, func(_ context.Context, ev *eventbus.Envelope) {
		count++
		printEvent(ev)
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Printf("\n📊 Total events: %d\n", count)
	return nil
}

func printEvent(ev *eventbus.Envelope) {
	fmt.Printf("[%s] %s %s\n", ev.Timestamp.Format(timeFormat), ev.EventType, ev.CorrelationID)

	re, err := eventbus.DecodeRouteEvent(ev)
	if err != nil {
		fmt.Printf("  ⚠️ %v\n", err)
		return
	}
	if re.Found {
		fmt.Printf("  Map: %s  %s -> %s  algo=%s steps=%d floors=%v cost=%.1f eta=%.0fs (%.2fms)\n",
			re.MapID, re.From, re.To, re.Algorithm, re.Steps, re.Floors, re.Cost, re.Seconds, re.DurationMs)
		return
	}
	fmt.Printf("  Map: %s  %s -> %s  algo=%s: %s\n", re.MapID, re.From, re.To, re.Algorithm, re.Error)
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func getJSON(base, path string, query url.Values) (json.RawMessage, error) {
	u := strings.TrimRight(base, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s: %w", u, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %d %s %s", u, body.Code, body.Message, body.Error)
	}
	return body.Data, nil
}

// showLogs печатает журнал навигации сервера
func showLogs(server, date, mapID string, limit int) error {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	if mapID != "" {
		q.Set("map", mapID)
	}
	q.Set("limit", fmt.Sprint(limit))

	raw, err := getJSON(server, "/api/navigation/logs", q)
	if err != nil {
		return err
	}

	var data struct {
		Date  string `json:"date"`
		Total int    `json:"total_count"`
		Logs  []struct {
			eventbus.RouteEvent
			Timestamp time.Time `json:"timestamp"`
		} `json:"logs"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}

	fmt.Printf("📜 Navigation log for %s (%d entries)\n", data.Date, data.Total)
	for _, e := range data.Logs {
		status := "✅"
		if !e.Found {
			status = "🚫"
		}
		fmt.Printf("%s [%s] %s %s -> %s (%s, %.0fs)\n",
			status, e.Timestamp.Format(timeFormat), e.MapID, e.From, e.To, e.Algorithm, e.Seconds)
	}
	return nil
}

// showStats печатает сводку навигации за день
func showStats(server, date string) error {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	raw, err := getJSON(server, "/api/navigation/stats", q)
	if err != nil {
		return err
	}

	var stats struct {
		Total   int     `json:"total_navigations"`
		Found   int     `json:"found"`
		Failed  int     `json:"failed"`
		AvgSec  float64 `json:"average_time_seconds"`
		AvgText string  `json:"average_time_str"`
		Popular []struct {
			RoomID string `json:"room_id"`
			Count  int    `json:"count"`
		} `json:"popular_rooms"`
	}
	if err := json.Unmarshal(raw, &stats); err != nil {
		return err
	}

	fmt.Println("📈 Navigation statistics")
	fmt.Printf("Routes: %d (found %d, failed %d)\n", stats.Total, stats.Found, stats.Failed)
	fmt.Printf("Average time: %s\n", stats.AvgText)
	for _, p := range stats.Popular {
		fmt.Printf("  %s: %d\n", p.RoomID, p.Count)
	}
	return nil
}

func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
