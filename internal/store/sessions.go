package store

import (
	"context"
	"fmt"

	"github.com/playmatatu/pinball/internal/models"
)

// LogSession records the summary of a finished session.
func (s *Store) LogSession(ctx context.Context, l models.SessionLog) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO session_log (id, table_id, table_name, frames, events, started_at, ended_at)
		VALUES (:id, :table_id, :table_name, :frames, :events, :started_at, :ended_at)
		ON CONFLICT (id) DO NOTHING
	`, l)
	if err != nil {
		return fmt.Errorf("log session %s: %w", l.ID, err)
	}
	return nil
}

// RecentSessions returns the latest session summaries for a table.
func (s *Store) RecentSessions(ctx context.Context, tableName string, limit int) ([]models.SessionLog, error) {
	var out []models.SessionLog
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, table_id, table_name, frames, events, started_at, ended_at
		FROM session_log
		WHERE table_name = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, tableName, limit)
	if err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}
	return out, nil
}
