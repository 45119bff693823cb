package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tododash/core/internal/domain/entities"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS sync_snapshots (
	key        TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// SnapshotRepository stores the last good sync payload in Postgres, keyed
// by a snapshot name, so views survive a restart until the first fetch.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository creates the repository and ensures its schema.
func NewSnapshotRepository(db *sqlx.DB) (*SnapshotRepository, error) {
	if _, err := db.Exec(snapshotSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure snapshot schema: %w", err)
	}
	return &SnapshotRepository{db: db}, nil
}

// Save upserts the payload under the given key.
func (r *SnapshotRepository) Save(ctx context.Context, key string, payload *entities.SyncPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO sync_snapshots (key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, key, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// Load returns the payload stored under the given key, or nil when no
// snapshot exists yet.
func (r *SnapshotRepository) Load(ctx context.Context, key string) (*entities.SyncPayload, error) {
	var data []byte
	err := r.db.GetContext(ctx, &data, `SELECT payload FROM sync_snapshots WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var payload entities.SyncPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &payload, nil
}
