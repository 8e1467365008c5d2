package logging

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
)

// registry логгеры компонентов процесса; один логгер на компонент
type registry struct {
	mu      sync.Mutex
	loggers map[string]*Logger
}

var components = &registry{loggers: make(map[string]*Logger)}

// GetComponentLogger возвращает логгер компонента, создавая его при первом обращении.
// Если файл логов открыть не удалось, логгер пишет только в консоль.
func GetComponentLogger(component string) *Logger {
	components.mu.Lock()
	defer components.mu.Unlock()

	if l, ok := components.loggers[component]; ok {
		return l
	}

	l, err := NewLogger(component)
	if err != nil {
		l = newConsoleLogger(component, os.Stdout, log.LstdFlags, LogLevel(currentLevel.Load()))
		l.Warn("⚠️ файл логов недоступен: %v", err)
	}
	components.loggers[component] = l
	return l
}

// SetLevel задает уровень консоли для дефолтного логгера и всех логгеров
// компонентов, в том числе созданных позже.
func SetLevel(level LogLevel) {
	currentLevel.Store(int32(level))
	defaultLogger.SetLevel(level)

	components.mu.Lock()
	defer components.mu.Unlock()
	for _, l := range components.loggers {
		l.SetLevel(level)
	}
}

// CloseAll закрывает файлы логов компонентов и дефолтного логгера.
// Логгеры остаются рабочими и дальше пишут только в консоль.
func CloseAll() error {
	components.mu.Lock()
	names := make([]string, 0, len(components.loggers))
	for name := range components.loggers {
		names = append(names, name)
	}
	sort.Strings(names)

	var firstErr error
	for _, name := range names {
		if err := components.loggers[name].Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("закрытие лога %s: %w", name, err)
		}
	}
	components.mu.Unlock()

	if err := defaultLogger.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func GetRouterLogger() *Logger {
	return GetComponentLogger("router")
}

func GetNarrationLogger() *Logger {
	return GetComponentLogger("narration")
}

func GetServerLogger() *Logger {
	return GetComponentLogger("server")
}

func GetStorageLogger() *Logger {
	return GetComponentLogger("storage")
}
