// internal/platform/logx/logx.go
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// EnvLevel is the environment variable read by New to pick the level.
const EnvLevel = "RECONWEAVE_LOG_LEVEL"

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the three-letter tag printed on each line.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DBG"
	case LevelInfo:
		return "INF"
	case LevelWarn:
		return "WRN"
	case LevelError:
		return "ERR"
	default:
		return "???"
	}
}

// Logger is the logging handle passed to every component.
// Keys and values alternate in kv.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Err(err error, kv ...any)
	With(kv ...any) Logger
	SetLevel(lvl Level)
}

// sink is shared by a logger and every child created through With, so
// level changes and writes are serialized across the whole family.
type sink struct {
	mu  sync.Mutex
	lvl Level
	w   io.Writer
	now func() time.Time
}

type lineLogger struct {
	out    *sink
	fields []string
}

// New creates a logger on stderr with the level taken from RECONWEAVE_LOG_LEVEL.
func New() Logger {
	return NewWithWriter(os.Stderr, ParseLevel(os.Getenv(EnvLevel)))
}

// NewWithLevel creates a stderr logger with a fixed level.
func NewWithLevel(lvl Level) Logger {
	return NewWithWriter(os.Stderr, lvl)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, lvl Level) Logger {
	if w == nil {
		w = io.Discard
	}
	return &lineLogger{out: &sink{lvl: lvl, w: w, now: time.Now}}
}

// NewSilent only lets errors through. Used while the live UI owns the terminal.
func NewSilent() Logger {
	return NewWithLevel(LevelError)
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return NewWithWriter(io.Discard, LevelError+1)
}

func (l *lineLogger) With(kv ...any) Logger {
	fields := make([]string, 0, len(l.fields)+len(kv)/2+1)
	fields = append(fields, l.fields...)
	fields = append(fields, kvPairs(kv...)...)
	return &lineLogger{out: l.out, fields: fields}
}

func (l *lineLogger) SetLevel(lvl Level) {
	l.out.mu.Lock()
	l.out.lvl = lvl
	l.out.mu.Unlock()
}

func (l *lineLogger) Debug(msg string, kv ...any) { l.write(LevelDebug, msg, kv) }
func (l *lineLogger) Info(msg string, kv ...any)  { l.write(LevelInfo, msg, kv) }
func (l *lineLogger) Warn(msg string, kv ...any)  { l.write(LevelWarn, msg, kv) }

func (l *lineLogger) Err(err error, kv ...any) {
	if err == nil {
		return
	}
	l.write(LevelError, "", append([]any{"error", err.Error()}, kv...))
}

func (l *lineLogger) write(lvl Level, msg string, kv []any) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	if lvl < l.out.lvl {
		return
	}

	var b strings.Builder
	b.WriteString(l.out.now().Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(lvl.String())
	if msg = strings.TrimSpace(msg); msg != "" {
		b.WriteByte(' ')
		b.WriteString(msg)
	}
	for _, f := range l.fields {
		b.WriteByte(' ')
		b.WriteString(f)
	}
	for _, f := range kvPairs(kv...) {
		b.WriteByte(' ')
		b.WriteString(f)
	}
	b.WriteByte('\n')

	_, _ = io.WriteString(l.out.w, b.String())
}

func kvPairs(kv ...any) []string {
	out := make([]string, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		var v any = "(missing)"
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		out = append(out, fmt.Sprintf("%v=%v", kv[i], v))
	}
	return out
}

// ParseLevel maps a level name to a Level; unknown names mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return LevelDebug
	case "warn", "warning", "wrn":
		return LevelWarn
	case "err", "error":
		return LevelError
	default:
		return LevelInfo
	}
}
