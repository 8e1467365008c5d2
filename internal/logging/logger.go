package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает уровень из строки конфигурации ("debug", "INFO"...).
// Неизвестное значение трактуется как INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger представляет логгер компонента: консоль + опциональный файл
type Logger struct {
	component     string
	consoleLogger *log.Logger
	fileLogger    *log.Logger
	file          *os.File
	consoleLevel  atomic.Int32
	minFileLevel  LogLevel
}

// currentLevel уровень консоли для вновь создаваемых логгеров
var currentLevel atomic.Int32

func init() {
	currentLevel.Store(int32(INFO))
}

// Дефолтный логгер, в который пишут пакетные функции Info/Debug/...
var defaultLogger = newConsoleLogger("default", os.Stdout, log.LstdFlags, INFO)

func newConsoleLogger(component string, w io.Writer, flags int, level LogLevel) *Logger {
	l := &Logger{
		component:     component,
		consoleLogger: log.New(w, "", flags),
		minFileLevel:  DEBUG,
	}
	l.consoleLevel.Store(int32(level))
	return l
}

// logDir каталог для файловых логов; пустая строка (по умолчанию) отключает запись в файл
var logDir = ""

// SetLogDir переопределяет каталог файловых логов ("" - только консоль)
func SetLogDir(dir string) {
	logDir = dir
}

// NewLogger создает логгер компонента. Если задан каталог логов,
// дополнительно открывается файл <component>_<timestamp>.log.
func NewLogger(component string) (*Logger, error) {
	l := newConsoleLogger(component, os.Stdout, log.LstdFlags, LogLevel(currentLevel.Load()))

	if logDir == "" {
		return l, nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", logDir, err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(logDir, fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	l.file = file
	l.fileLogger = log.New(file, "", log.LstdFlags)
	return l, nil
}

// NewWriterLogger создает логгер, пишущий в произвольный writer (удобно для тестов)
func NewWriterLogger(component string, w io.Writer, level LogLevel) *Logger {
	l := newConsoleLogger(component, w, 0, level)
	l.minFileLevel = level
	return l
}

// InitDefaultLogger инициализирует дефолтный логгер с файлом логов
func InitDefaultLogger(component string) error {
	l, err := NewLogger(component)
	if err != nil {
		return err
	}
	defaultLogger = l
	return nil
}

// SetLevel меняет минимальный уровень консоли логгера
func (l *Logger) SetLevel(level LogLevel) {
	if l == nil {
		return
	}
	l.consoleLevel.Store(int32(level))
}

// Level текущий минимальный уровень консоли
func (l *Logger) Level() LogLevel {
	if l == nil {
		return INFO
	}
	return LogLevel(l.consoleLevel.Load())
}

// Close закрывает файл логов, если он был открыт
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLogger = nil
	return err
}

// Trace логирует сообщение уровня TRACE
func (l *Logger) Trace(format string, args ...interface{}) { l.logMessage(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, args ...interface{}) { l.logMessage(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, args ...interface{}) { l.logMessage(INFO, format, args...) }

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, args ...interface{}) { l.logMessage(WARN, format, args...) }

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, args ...interface{}) { l.logMessage(ERROR, format, args...) }

// logMessage внутренняя функция для логирования
func (l *Logger) logMessage(level LogLevel, format string, args ...interface{}) {
	if l == nil {
		return
	}

	message := fmt.Sprintf("[%s] [%s] %s", level.String(), l.component, fmt.Sprintf(format, args...))

	if l.fileLogger != nil && level >= l.minFileLevel {
		l.fileLogger.Println(message)
	}

	if l.consoleLogger != nil && level >= LogLevel(l.consoleLevel.Load()) {
		l.consoleLogger.Println(message)
	}
}

// Trace пишет в дефолтный логгер
func Trace(format string, args ...interface{}) { defaultLogger.logMessage(TRACE, format, args...) }

// Debug пишет в дефолтный логгер
func Debug(format string, args ...interface{}) { defaultLogger.logMessage(DEBUG, format, args...) }

// Info пишет в дефолтный логгер
func Info(format string, args ...interface{}) { defaultLogger.logMessage(INFO, format, args...) }

// Warn пишет в дефолтный логгер
func Warn(format string, args ...interface{}) { defaultLogger.logMessage(WARN, format, args...) }

// Error пишет в дефолтный логгер
func Error(format string, args ...interface{}) { defaultLogger.logMessage(ERROR, format, args...) }

// LogSearch логирует итог одного поиска пути
func LogSearch(l *Logger, algorithm string, from, to fmt.Stringer, expanded int, found bool) {
	l.Debug("%s: %v -> %v expanded=%d found=%t", algorithm, from, to, expanded, found)
}
