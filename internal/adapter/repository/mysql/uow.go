package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"microlend/internal/domain/errs"
	"microlend/internal/domain/loan"
	"microlend/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Users:     &UserRepository{db: tx},
		Requests:  &LoanRequestRepository{db: tx},
		Offers:    &OfferRepository{db: tx},
		Loans:     &LoanRepository{db: tx},
		Trust:     &TrustHistoryRepository{db: tx},
		Documents: &DocumentRepository{db: tx},
	}
}

// Repos returns repositories bound to the plain connection, for reads and
// single-statement writes outside a transaction.
func (u *GormUoW) Repos() uow.Repos { return reposFor(u.db) }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("loan")
		}
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
