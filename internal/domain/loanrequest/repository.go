package loanrequest

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Request, error)
	Save(ctx context.Context, r *Request) error
	ListOpen(ctx context.Context, limit int) ([]Request, error)
	ListByBorrower(ctx context.Context, borrowerID string) ([]Request, error)
	// ListExpirable returns OPEN/PARTIAL requests whose deadline is before t.
	ListExpirable(ctx context.Context, t time.Time) ([]Request, error)
}
