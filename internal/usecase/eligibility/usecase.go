// Package eligibility gates request and offer creation on account standing.
package eligibility

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"microlend/internal/domain/document"
	"microlend/internal/domain/errs"
	"microlend/internal/domain/user"
)

type Usecase struct {
	users user.Repository
	docs  document.Repository
}

func NewUsecase(users user.Repository, docs document.Repository) *Usecase {
	return &Usecase{users: users, docs: docs}
}

func (u *Usecase) load(ctx context.Context, userID string) (*user.User, error) {
	usr, err := u.users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	if usr.Status == user.StatusSuspended {
		return nil, errs.Forbidden("account is suspended")
	}
	return usr, nil
}

// CanBorrow requires a VERIFIED national id or passport.
func (u *Usecase) CanBorrow(ctx context.Context, userID string) error {
	if _, err := u.load(ctx, userID); err != nil {
		return err
	}
	ok, err := u.docs.HasVerifiedIdentity(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Forbidden("a verified identity document is required to request a loan")
	}
	return nil
}

// CanLend accepts an ACTIVE account or a verified identity.
func (u *Usecase) CanLend(ctx context.Context, userID string) error {
	usr, err := u.load(ctx, userID)
	if err != nil {
		return err
	}
	if usr.Status == user.StatusActive {
		return nil
	}
	ok, err := u.docs.HasVerifiedIdentity(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Forbidden("account must be active or verified to make offers")
	}
	return nil
}
