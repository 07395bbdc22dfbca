package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByIDForUpdate locks the row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*User, error)
	UpdateScore(ctx context.Context, id string, score int, category Category) error
	AddCounters(ctx context.Context, id string, delta Counters) error
}
