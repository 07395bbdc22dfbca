package uow

import (
	"context"

	"microlend/internal/domain/document"
	"microlend/internal/domain/loan"
	"microlend/internal/domain/loanrequest"
	"microlend/internal/domain/offer"
	"microlend/internal/domain/trust"
	"microlend/internal/domain/user"
)

// Repos are bound to the same transaction.
type Repos struct {
	Users     user.Repository
	Requests  loanrequest.Repository
	Offers    offer.Repository
	Loans     loan.Repository
	Trust     trust.Repository
	Documents document.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
