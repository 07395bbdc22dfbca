package usermock

import (
	"context"

	domain "microlend/internal/domain/user"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn           func(ctx context.Context, u *domain.User) error
	GetByIDFn          func(ctx context.Context, id string) (*domain.User, error)
	GetByIDForUpdateFn func(ctx context.Context, id string) (*domain.User, error)
	UpdateScoreFn      func(ctx context.Context, id string, score int, category domain.Category) error
	AddCountersFn      func(ctx context.Context, id string, delta domain.Counters) error
}

func (m *Repo) Create(ctx context.Context, u *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) UpdateScore(ctx context.Context, id string, score int, category domain.Category) error {
	if m.UpdateScoreFn != nil {
		return m.UpdateScoreFn(ctx, id, score, category)
	}
	return nil
}

func (m *Repo) AddCounters(ctx context.Context, id string, delta domain.Counters) error {
	if m.AddCountersFn != nil {
		return m.AddCountersFn(ctx, id, delta)
	}
	return nil
}
