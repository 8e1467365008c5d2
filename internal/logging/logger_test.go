package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriterLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("router", &buf, INFO)

	l.Debug("скрытое сообщение")
	l.Info("поиск завершен за %d шагов", 18)

	out := buf.String()
	if strings.Contains(out, "скрытое") {
		t.Errorf("DEBUG сообщение не должно попадать в вывод уровня INFO: %q", out)
	}
	if !strings.Contains(out, "[INFO] [router] поиск завершен за 18 шагов") {
		t.Errorf("Неожиданный формат строки лога: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		"TRACE":   TRACE,
		"warning": WARN,
		"error":   ERROR,
		"":        INFO,
		"???":     INFO,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, ожидалось %v", in, got, want)
		}
	}
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	l.Info("не должно паниковать")
	if err := l.Close(); err != nil {
		t.Errorf("Close на nil-логгере вернул ошибку: %v", err)
	}
}

func TestSetLevelReachesComponentLoggers(t *testing.T) {
	t.Cleanup(func() { SetLevel(INFO) })

	before := GetComponentLogger("level-before")
	SetLevel(DEBUG)
	after := GetComponentLogger("level-after")

	for name, l := range map[string]*Logger{
		"default":        defaultLogger,
		"router":         GetRouterLogger(),
		"до SetLevel":    before,
		"после SetLevel": after,
	} {
		if l.Level() != DEBUG {
			t.Errorf("%s: ожидался уровень DEBUG, получено %v", name, l.Level())
		}
	}
	if GetComponentLogger("level-before") != before {
		t.Error("Повторный запрос компонента должен возвращать тот же логгер")
	}
}

func TestCloseAllClosesComponentFiles(t *testing.T) {
	SetLogDir(t.TempDir())
	t.Cleanup(func() { SetLogDir("") })

	l := GetComponentLogger("close-all")
	if l.file == nil {
		t.Fatal("Логгер компонента должен открыть файл в каталоге логов")
	}
	l.Info("запись до закрытия")

	if err := CloseAll(); err != nil {
		t.Fatalf("Ошибка закрытия логов: %v", err)
	}
	if l.file != nil || l.fileLogger != nil {
		t.Error("Файл логов компонента не закрыт")
	}
	l.Info("после закрытия пишем только в консоль")
}
