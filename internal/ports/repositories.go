package ports

import (
	"context"

	"github.com/tododash/core/internal/domain/entities"
)

// TaskFetcher retrieves one complete sync payload from the upstream task
// provider. One call per refresh cycle; an error means the cycle is skipped
// and the last-known output stays in place.
type TaskFetcher interface {
	Fetch(ctx context.Context) (*entities.SyncPayload, error)
}

// SnapshotRepository persists the most recent good sync payload so a
// restarted service can serve views before its first fetch completes.
type SnapshotRepository interface {
	Save(ctx context.Context, key string, payload *entities.SyncPayload) error
	Load(ctx context.Context, key string) (*entities.SyncPayload, error)
}
