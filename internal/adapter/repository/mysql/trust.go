package mysql

import (
	"context"

	"gorm.io/gorm"

	trustDomain "microlend/internal/domain/trust"
)

// TrustHistoryRepository only appends and reads.
type TrustHistoryRepository struct{ db *gorm.DB }

func NewTrustHistoryRepository(db *gorm.DB) *TrustHistoryRepository {
	return &TrustHistoryRepository{db: db}
}

func (r *TrustHistoryRepository) Create(ctx context.Context, h *trustDomain.History) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *TrustHistoryRepository) ListByUser(ctx context.Context, userID string) ([]trustDomain.History, error) {
	var out []trustDomain.History
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *TrustHistoryRepository) ListByLoan(ctx context.Context, loanID string) ([]trustDomain.History, error) {
	var out []trustDomain.History
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}
