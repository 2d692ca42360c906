// Package auditlog provides the operator-facing audit trail of the bot. Every
// entry is mirrored to the structured logger; when a sink is configured the
// entry is also persisted, so operators can review runs after the fact.
package auditlog

import (
	"context"
	"log/slog"
	"time"
)

// Level classifies an audit entry.
type Level string

const (
	LevelLog         Level = "LOG"
	LevelInformation Level = "INFORMATION"
	LevelWarning     Level = "WARNING"
	LevelError       Level = "ERROR"
)

// Entry is one persisted audit record.
type Entry struct {
	Application string
	Level       Level
	Category    string
	Message     string
	CreatedAt   time.Time
}

// Sink persists audit entries.
type Sink interface {
	Store(ctx context.Context, entry Entry) error
}

// Recorder writes audit entries. A nil sink disables persistence, which is how
// non-production deployments run. Sink failures are logged and swallowed; the
// audit trail must never fail a run.
type Recorder struct {
	application string
	logger      *slog.Logger
	sink        Sink
	now         func() time.Time
}

// NewRecorder creates an audit recorder for the given application identity.
func NewRecorder(logger *slog.Logger, application string, sink Sink) *Recorder {
	return &Recorder{
		application: application,
		logger:      logger,
		sink:        sink,
		now:         time.Now,
	}
}

// Record writes one audit entry.
func (r *Recorder) Record(ctx context.Context, level Level, category, message string) {
	r.logger.Log(ctx, slogLevel(level), message, "category", category)

	if r.sink == nil {
		return
	}

	entry := Entry{
		Application: r.application,
		Level:       level,
		Category:    category,
		Message:     message,
		CreatedAt:   r.now(),
	}
	if err := r.sink.Store(ctx, entry); err != nil {
		r.logger.Error("failed to persist audit entry",
			"category", category, "level", string(level), "error", err)
	}
}

func slogLevel(level Level) slog.Level {
	switch level {
	case LevelError:
		return slog.LevelError
	case LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
