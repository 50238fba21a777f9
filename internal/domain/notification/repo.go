package notification

import "context"

// SnapshotRepository saves and restores the canonical list between runs.
// Filters are never persisted.
type SnapshotRepository interface {
	Load(ctx context.Context) ([]Notification, error)
	Save(ctx context.Context, items []Notification) error
}
