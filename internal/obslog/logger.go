// Package obslog provides the orchestrator's structured logger: JSON in
// production (auto-detected via KUBERNETES_SERVICE_HOST, overridable by
// LOG_FORMAT/LOG_LEVEL), text for local development, every line carrying
// the component name and request correlation id per spec §4.12/§7.
//
// Modeled on the teacher's telemetry.TelemetryLogger.
package obslog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/archbuilder/orchestrator/internal/correlation"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

func (l level) String() string {
	switch l {
	case levelDebug:
		return "DEBUG"
	case levelInfo:
		return "INFO"
	case levelWarn:
		return "WARN"
	case levelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func parseLevel(s string) level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return levelDebug
	case "WARN", "WARNING":
		return levelWarn
	case "ERROR":
		return levelError
	default:
		return levelInfo
	}
}

// Fields is a structured log field set.
type Fields map[string]interface{}

// Logger is the orchestrator's structured logger. Component and
// CorrelationID are immutable per instance; With* returns a derived
// logger carrying additional context, leaving the parent untouched.
type Logger struct {
	mu            sync.Mutex
	out           io.Writer
	minLevel      level
	format        string // "json" | "text"
	serviceName   string
	component     string
	correlationID string
}

// New creates a root logger. Configuration is read from the environment
// unless overridden by the caller afterward.
func New(serviceName string) *Logger {
	lvl := os.Getenv("LOG_LEVEL")
	if lvl == "" {
		lvl = "INFO"
	}
	format := "text"
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		format = "json"
	}
	if f := os.Getenv("LOG_FORMAT"); f != "" {
		format = f
	}
	return &Logger{
		out:         os.Stdout,
		minLevel:    parseLevel(lvl),
		format:      format,
		serviceName: serviceName,
	}
}

// WithComponent returns a derived logger tagging every line with the
// given component name (e.g. "orchestrator/coordinator").
func (l *Logger) WithComponent(component string) *Logger {
	clone := *l
	clone.component = component
	return &clone
}

// WithCorrelationID returns a derived logger tagging every line with the
// given correlation id.
func (l *Logger) WithCorrelationID(id string) *Logger {
	clone := *l
	clone.correlationID = id
	return &clone
}

// FromContext pulls a correlation id out of ctx (if present) and returns
// a derived logger tagging every subsequent line with it.
func (l *Logger) FromContext(ctx context.Context) *Logger {
	if id := correlation.FromContext(ctx); id != "" {
		return l.WithCorrelationID(id)
	}
	return l
}

func (l *Logger) Debug(msg string, f Fields) { l.log(levelDebug, msg, f) }
func (l *Logger) Info(msg string, f Fields)  { l.log(levelInfo, msg, f) }
func (l *Logger) Warn(msg string, f Fields)  { l.log(levelWarn, msg, f) }
func (l *Logger) Error(msg string, f Fields) { l.log(levelError, msg, f) }

func (l *Logger) log(lvl level, msg string, f Fields) {
	if lvl < l.minLevel {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	if l.format == "json" {
		rec := map[string]interface{}{
			"timestamp": now.Format(time.RFC3339Nano),
			"level":     lvl.String(),
			"service":   l.serviceName,
			"message":   msg,
		}
		if l.component != "" {
			rec["component"] = l.component
		}
		if l.correlationID != "" {
			rec["correlation_id"] = l.correlationID
		}
		for k, v := range f {
			rec[k] = v
		}
		enc, err := json.Marshal(rec)
		if err != nil {
			fmt.Fprintf(l.out, "{\"level\":\"ERROR\",\"message\":\"log marshal failed: %v\"}\n", err)
			return
		}
		fmt.Fprintln(l.out, string(enc))
		return
	}

	var b strings.Builder
	b.WriteString(now.Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString("[" + lvl.String() + "]")
	if l.component != "" {
		b.WriteString(" " + l.component)
	}
	if l.correlationID != "" {
		b.WriteString(" corr=" + l.correlationID)
	}
	b.WriteString(" " + msg)
	for k, v := range f {
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	fmt.Fprintln(l.out, b.String())
}
