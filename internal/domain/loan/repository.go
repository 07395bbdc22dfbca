package loan

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id string) (*Loan, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Loan, error)
	Save(ctx context.Context, l *Loan) error
	// ListActiveDueBefore returns ACTIVE loans with due_date < t.
	ListActiveDueBefore(ctx context.Context, t time.Time) ([]Loan, error)
	// ListActiveDueBetween returns ACTIVE loans with from <= due_date <= to.
	ListActiveDueBetween(ctx context.Context, from, to time.Time) ([]Loan, error)
	ListByParty(ctx context.Context, userID string) ([]Loan, error)
}
