package api

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ServerMetrics собирает сведения о процессе для /health
type ServerMetrics struct {
	StartTime time.Time
	proc      *process.Process
}

// HealthStats состояние процесса
type HealthStats struct {
	Uptime        string   `json:"uptime"`
	UptimeSeconds float64  `json:"uptime_seconds"`
	AllocMB       float64  `json:"alloc_mb"`
	SysMB         float64  `json:"sys_mb"`
	NumGC         uint32   `json:"num_gc"`
	Goroutines    int      `json:"goroutines"`
	CPUPercent    *float64 `json:"cpu_percent,omitempty"`
}

// NewServerMetrics создает сборщик; ошибка gopsutil не фатальна, CPU просто не отдается
func NewServerMetrics() *ServerMetrics {
	sm := &ServerMetrics{StartTime: time.Now()}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		sm.proc = proc
	}
	return sm
}

// GetUptime время работы в виде "1d 2h 3m 4s"
func (sm *ServerMetrics) GetUptime() string {
	uptime := time.Since(sm.StartTime)

	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// GetCPUUsage загрузка CPU процессом в процентах; при недоступности
// метрики процесса - системная загрузка с прошлого вызова
func (sm *ServerMetrics) GetCPUUsage() (float64, error) {
	if sm.proc != nil {
		if pct, err := sm.proc.CPUPercent(); err == nil {
			return pct, nil
		}
	}
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("cpu usage unavailable")
	}
	return percents[0], nil
}

// Collect снимает состояние процесса
func (sm *ServerMetrics) Collect() HealthStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := HealthStats{
		Uptime:        sm.GetUptime(),
		UptimeSeconds: time.Since(sm.StartTime).Seconds(),
		AllocMB:       float64(m.Alloc) / 1024 / 1024,
		SysMB:         float64(m.Sys) / 1024 / 1024,
		NumGC:         m.NumGC,
		Goroutines:    runtime.NumGoroutine(),
	}
	if pct, err := sm.GetCPUUsage(); err == nil {
		stats.CPUPercent = &pct
	}
	return stats
}
