package config

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel controls which log lines are written.
type LogLevel int

// Log levels, from quietest to most verbose.
const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelDebug
)

// ParseLogLevel maps a logging.level value to a LogLevel. Unknown values mean error.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LogLevelOff
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelError
	}
}

func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "off"
	case LogLevelDebug:
		return "debug"
	default:
		return "error"
	}
}

// logSink is the destination shared by a logger and its named children.
type logSink struct {
	mu     sync.Mutex
	level  LogLevel
	w      io.Writer
	closer io.Closer
	path   string
	now    func() time.Time
}

// Logger writes leveled lines such as
//
//	2026-01-02 15:04:05.000 [DEBUG] dispatch: solflare connect -> deeplink
//
// Named loggers share their parent's destination and level.
type Logger struct {
	sink      *logSink
	component string
}

// NewLogger returns a logger writing to cfg.File through a lumberjack rotator.
// Nothing is opened when the level is off or no file is configured; lumberjack
// creates the file on the first write.
func NewLogger(level LogLevel, cfg LoggingConfig) (*Logger, error) {
	l := &Logger{sink: &logSink{level: level, now: time.Now}}
	if level == LogLevelOff || cfg.File == "" {
		return l, nil
	}

	path, err := ExpandHome(cfg.File)
	if err != nil {
		return nil, err
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	l.sink.w, l.sink.closer, l.sink.path = rotator, rotator, path
	return l, nil
}

// NewWriterLogger returns a logger writing to w.
func NewWriterLogger(level LogLevel, w io.Writer) *Logger {
	return &Logger{sink: &logSink{level: level, w: w, now: time.Now}}
}

// NullLogger returns a logger that drops everything.
func NullLogger() *Logger {
	return &Logger{sink: &logSink{level: LogLevelOff, now: time.Now}}
}

// Named returns a logger that prefixes its lines with component.
func (l *Logger) Named(component string) *Logger {
	if l.component != "" {
		component = l.component + "." + component
	}
	return &Logger{sink: l.sink, component: component}
}

// Component returns the logger's name, empty for the root logger.
func (l *Logger) Component() string {
	return l.component
}

// Close closes the log file, if one was opened.
func (l *Logger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.closer == nil {
		return nil
	}
	return l.sink.closer.Close()
}

// SetLevel changes the level for this logger and every logger sharing its sink.
func (l *Logger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	l.sink.level = level
	l.sink.mu.Unlock()
}

// Level returns the current level.
func (l *Logger) Level() LogLevel {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// FilePath returns the resolved log file path, or "" when not logging to a file.
func (l *Logger) FilePath() string {
	return l.sink.path
}

// Debug logs at debug level.
func (l *Logger) Debug(format string, args ...any) {
	l.write(LogLevelDebug, format, args...)
}

// Error logs at error level.
func (l *Logger) Error(format string, args ...any) {
	l.write(LogLevelError, format, args...)
}

// Writer adapts the logger to an io.Writer logging each write at level.
// Gin's error writer is pointed here by the server.
func (l *Logger) Writer(level LogLevel) io.Writer {
	return levelWriter{l: l, level: level}
}

func (l *Logger) write(level LogLevel, format string, args ...any) {
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w == nil || level == LogLevelOff || level > s.level {
		return
	}

	var sb strings.Builder
	sb.WriteString(s.now().Format("2006-01-02 15:04:05.000"))
	sb.WriteString(" [")
	sb.WriteString(strings.ToUpper(level.String()))
	sb.WriteString("] ")
	if l.component != "" {
		sb.WriteString(l.component)
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, format, args...)
	sb.WriteByte('\n')
	_, _ = io.WriteString(s.w, sb.String())
}

type levelWriter struct {
	l     *Logger
	level LogLevel
}

func (w levelWriter) Write(p []byte) (int, error) {
	w.l.write(w.level, "%s", strings.TrimSpace(string(p)))
	return len(p), nil
}
