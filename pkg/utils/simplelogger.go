// Package utils предоставляет файловый логгер для TUI приложений.
//
// Логгер пишет структурированные записи в .log файл с timestamp в имени.
// stdout не используется: его занимает TUI.
package utils

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/phuslu/log"
)

var (
	logger     *log.Logger
	fileWriter *log.FileWriter
	logMutex   sync.RWMutex
)

// LogConfig — параметры файлового логгера.
type LogConfig struct {
	Dir    string // Пусто = текущая директория
	Prefix string // Префикс имени файла, по умолчанию "techsupport"
	Level  string // debug, info, warn, error
}

// InitLogger создает/открывает .log файл.
//
// Имя файла: <prefix>-YYYY-MM-DD-HH-MM.log (например, techsupport-2026-10-17-15-30.log).
// Повторный вызов ничего не делает.
func InitLogger(cfg LogConfig) error {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logger != nil {
		return nil
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "techsupport"
	}
	filename := filepath.Join(cfg.Dir, fmt.Sprintf("%s-%s.log", prefix, time.Now().Format("2006-01-02-15-04")))

	fileWriter = &log.FileWriter{
		Filename:     filename,
		FileMode:     0644,
		EnsureFolder: true,
		LocalTime:    true,
	}
	logger = &log.Logger{
		Level:  parseLevel(cfg.Level),
		Writer: fileWriter,
	}

	logger.Info().Str("file", filename).Msg("Logger initialized")
	return nil
}

// SetOutput направляет лог в произвольный writer: stdout серверов, буфер в тестах.
func SetOutput(w io.Writer, level string) {
	logMutex.Lock()
	defer logMutex.Unlock()

	closeFileLocked()
	logger = &log.Logger{
		Level:  parseLevel(level),
		Writer: &log.IOWriter{Writer: w},
	}
}

// Info - информационное сообщение.
func Info(msg string, keyvals ...any) {
	write(log.InfoLevel, msg, keyvals...)
}

// Error - сообщение об ошибке.
func Error(msg string, keyvals ...any) {
	write(log.ErrorLevel, msg, keyvals...)
}

// Debug - отладочное сообщение.
func Debug(msg string, keyvals ...any) {
	write(log.DebugLevel, msg, keyvals...)
}

// Warn - предупреждение.
func Warn(msg string, keyvals ...any) {
	write(log.WarnLevel, msg, keyvals...)
}

// write пишет запись, если логгер инициализирован.
func write(level log.Level, msg string, keyvals ...any) {
	logMutex.RLock()
	defer logMutex.RUnlock()

	if logger == nil {
		return
	}

	var e *log.Entry
	switch level {
	case log.DebugLevel:
		e = logger.Debug()
	case log.WarnLevel:
		e = logger.Warn()
	case log.ErrorLevel:
		e = logger.Error()
	default:
		e = logger.Info()
	}

	// Entry == nil, если уровень отфильтрован
	if e == nil {
		return
	}
	e.KeysAndValues(normalizeKeyvals(keyvals)...).Msg(msg)
}

// normalizeKeyvals превращает error в строку и отбрасывает непарный хвост.
func normalizeKeyvals(keyvals []any) []any {
	n := len(keyvals) - len(keyvals)%2
	out := make([]any, n)
	for i := 0; i < n; i++ {
		if err, ok := keyvals[i].(error); ok && i%2 == 1 {
			out[i] = err.Error()
			continue
		}
		out[i] = keyvals[i]
	}
	return out
}

func parseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Close закрывает лог-файл.
//
// Вызывается через defer в main().
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()

	closeFileLocked()
	logger = nil
}

func closeFileLocked() {
	if fileWriter != nil {
		_ = fileWriter.Close()
		fileWriter = nil
	}
}
