package trustscore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"microlend/internal/domain/errs"
	"microlend/internal/domain/trust"
	"microlend/internal/domain/user"
)

// Usecase is the read side of the trust score engine.
type Usecase struct {
	users   user.Repository
	history trust.Repository
}

func NewUsecase(users user.Repository, history trust.Repository) *Usecase {
	return &Usecase{users: users, history: history}
}

// Timeline is a user's current standing plus every change, newest first.
type Timeline struct {
	UserID   string
	Score    int
	Category user.Category
	History  []trust.History
}

func (u *Usecase) History(ctx context.Context, userID string) ([]trust.History, error) {
	return u.history.ListByUser(ctx, userID)
}

func (u *Usecase) LoanHistory(ctx context.Context, loanID string) ([]trust.History, error) {
	return u.history.ListByLoan(ctx, loanID)
}

func (u *Usecase) Timeline(ctx context.Context, userID string) (*Timeline, error) {
	usr, err := u.users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	rows, err := u.history.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Timeline{UserID: usr.ID, Score: usr.TrustScore, Category: usr.Category, History: rows}, nil
}
