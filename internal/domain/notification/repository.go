package notification

import "context"

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// ListByUser returns newest first, capped at limit.
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error)
	// MarkRead reports false when no row matched (missing or owned by someone else).
	MarkRead(ctx context.Context, id, userID string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	SoftDelete(ctx context.Context, id, userID string) (bool, error)
}
