package observability

import (
	"context"
	"testing"

	"github.com/annel0/indoor-nav/internal/config"
)

func TestInitTelemetryDisabled(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), config.TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if shutdown == nil {
		t.Fatal("Ожидалась функция shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown выключенной телеметрии вернул ошибку: %v", err)
	}
}
