package auditlog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/autohof/settlement-bot/internal/platform/persistence"
)

// PostgresSink persists audit entries to the audit_logs table.
type PostgresSink struct {
	querier persistence.Querier
	logger  *slog.Logger
}

var _ Sink = (*PostgresSink)(nil)

// NewPostgresSink creates a sink backed by the given database.
func NewPostgresSink(logger *slog.Logger, db *persistence.PostgresDB) *PostgresSink {
	return &PostgresSink{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Store inserts one audit entry.
func (s *PostgresSink) Store(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO audit_logs (application, level, category, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.querier.Exec(ctx, query,
		entry.Application,
		string(entry.Level),
		entry.Category,
		entry.Message,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store audit entry: %w", err)
	}
	return nil
}
