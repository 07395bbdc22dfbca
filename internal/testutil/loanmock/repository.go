package loanmock

import (
	"context"
	"time"

	domain "microlend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to no-op; reads default to context.Canceled.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByIDFn              func(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdateFn     func(ctx context.Context, id string) (*domain.Loan, error)
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	ListActiveDueBeforeFn  func(ctx context.Context, t time.Time) ([]domain.Loan, error)
	ListActiveDueBetweenFn func(ctx context.Context, from, to time.Time) ([]domain.Loan, error)
	ListByPartyFn          func(ctx context.Context, userID string) ([]domain.Loan, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) ListActiveDueBefore(ctx context.Context, t time.Time) ([]domain.Loan, error) {
	if m.ListActiveDueBeforeFn != nil {
		return m.ListActiveDueBeforeFn(ctx, t)
	}
	return nil, context.Canceled
}

func (m *Repo) ListActiveDueBetween(ctx context.Context, from, to time.Time) ([]domain.Loan, error) {
	if m.ListActiveDueBetweenFn != nil {
		return m.ListActiveDueBetweenFn(ctx, from, to)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByParty(ctx context.Context, userID string) ([]domain.Loan, error) {
	if m.ListByPartyFn != nil {
		return m.ListByPartyFn(ctx, userID)
	}
	return nil, context.Canceled
}
