package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	reqDomain "microlend/internal/domain/loanrequest"
)

type LoanRequestRepository struct{ db *gorm.DB }

func NewLoanRequestRepository(db *gorm.DB) *LoanRequestRepository {
	return &LoanRequestRepository{db: db}
}

func (r *LoanRequestRepository) Create(ctx context.Context, lr *reqDomain.Request) error {
	return r.db.WithContext(ctx).Create(lr).Error
}

func (r *LoanRequestRepository) GetByID(ctx context.Context, id string) (*reqDomain.Request, error) {
	var out reqDomain.Request
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *LoanRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (*reqDomain.Request, error) {
	var out reqDomain.Request
	res := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *LoanRequestRepository) Save(ctx context.Context, lr *reqDomain.Request) error {
	return r.db.WithContext(ctx).Save(lr).Error
}

func (r *LoanRequestRepository) ListOpen(ctx context.Context, limit int) ([]reqDomain.Request, error) {
	var out []reqDomain.Request
	q := r.db.WithContext(ctx).
		Where("status IN ?", []reqDomain.Status{reqDomain.StatusOpen, reqDomain.StatusPartial}).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}

func (r *LoanRequestRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]reqDomain.Request, error) {
	var out []reqDomain.Request
	res := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRequestRepository) ListExpirable(ctx context.Context, t time.Time) ([]reqDomain.Request, error) {
	var out []reqDomain.Request
	res := r.db.WithContext(ctx).
		Where("status IN ?", []reqDomain.Status{reqDomain.StatusOpen, reqDomain.StatusPartial}).
		Where("(expires_at IS NOT NULL AND expires_at < ?) OR (funding_deadline IS NOT NULL AND funding_deadline < ?)", t, t).
		Order("id").
		Find(&out)
	return out, res.Error
}
