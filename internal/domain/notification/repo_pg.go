package notification

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type snapshotRepoPG struct{ pool *pgxpool.Pool }

func NewSnapshotRepoPG(pool *pgxpool.Pool) SnapshotRepository {
	return &snapshotRepoPG{pool: pool}
}

const notificationCols = `id, type, title, message, created_at, is_read, priority, category,
	action_required, patient_id, patient_name, service, expires_at`

var notificationCopyCols = []string{
	"position", "id", "type", "title", "message", "created_at", "is_read", "priority",
	"category", "action_required", "patient_id", "patient_name", "service", "expires_at",
}

func (r *snapshotRepoPG) scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	var patientID, patientName, service *string
	err := row.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.Timestamp, &n.IsRead,
		&n.Priority, &n.Category, &n.ActionRequired, &patientID, &patientName,
		&service, &n.ExpiresAt)
	if patientID != nil {
		n.PatientID = *patientID
	}
	if patientName != nil {
		n.PatientName = *patientName
	}
	if service != nil {
		n.Service = *service
	}
	return n, err
}

func (r *snapshotRepoPG) Load(ctx context.Context) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+notificationCols+` FROM notification ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var items []Notification
	for rows.Next() {
		n, err := r.scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Timestamp = n.Timestamp.UTC()
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return items, nil
}

// Save replaces the stored snapshot with items in a single transaction.
func (r *snapshotRepoPG) Save(ctx context.Context, items []Notification) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM notification`); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"notification"}, notificationCopyCols,
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			n := items[i]
			return []any{
				i, n.ID, string(n.Type), n.Title, n.Message, n.Timestamp, n.IsRead,
				string(n.Priority), string(n.Category), n.ActionRequired,
				nullable(n.PatientID), nullable(n.PatientName), nullable(n.Service), n.ExpiresAt,
			}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy notifications: %w", err)
	}

	return tx.Commit(ctx)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
