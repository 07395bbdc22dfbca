package mysql

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	userDomain "microlend/internal/domain/user"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *userDomain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*userDomain.User, error) {
	var out userDomain.User
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id string) (*userDomain.User, error) {
	var out userDomain.User
	res := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *UserRepository) UpdateScore(ctx context.Context, id string, score int, category userDomain.Category) error {
	return r.db.WithContext(ctx).Model(&userDomain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"trust_score": score, "category": category}).Error
}

// AddCounters increments the aggregates in SQL so concurrent transitions
// on different loans of the same user do not overwrite each other.
func (r *UserRepository) AddCounters(ctx context.Context, id string, d userDomain.Counters) error {
	updates := map[string]any{}
	add := func(col string, v decimal.Decimal) {
		if !v.IsZero() {
			updates[col] = gorm.Expr(col+" + ?", v)
		}
	}
	add("total_borrowed", d.TotalBorrowed)
	add("total_lent", d.TotalLent)
	add("total_repaid", d.TotalRepaid)
	add("current_debt", d.CurrentDebt)
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&userDomain.User{}).Where("id = ?", id).Updates(updates).Error
}
