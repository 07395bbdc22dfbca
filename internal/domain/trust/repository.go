package trust

import "context"

type Repository interface {
	Create(ctx context.Context, h *History) error
	// ListByUser and ListByLoan return newest first.
	ListByUser(ctx context.Context, userID string) ([]History, error)
	ListByLoan(ctx context.Context, loanID string) ([]History, error)
}
