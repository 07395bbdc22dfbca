package mysql

import (
	"context"

	"gorm.io/gorm"

	offerDomain "microlend/internal/domain/offer"
)

type OfferRepository struct{ db *gorm.DB }

func NewOfferRepository(db *gorm.DB) *OfferRepository { return &OfferRepository{db: db} }

func (r *OfferRepository) Create(ctx context.Context, o *offerDomain.Offer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OfferRepository) GetByID(ctx context.Context, id string) (*offerDomain.Offer, error) {
	var out offerDomain.Offer
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *OfferRepository) GetByIDForUpdate(ctx context.Context, id string) (*offerDomain.Offer, error) {
	var out offerDomain.Offer
	res := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *OfferRepository) Save(ctx context.Context, o *offerDomain.Offer) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *OfferRepository) HasPending(ctx context.Context, requestID, lenderID string) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&offerDomain.Offer{}).
		Where("loan_request_id = ? AND lender_id = ? AND status = ?", requestID, lenderID, offerDomain.StatusPending).
		Count(&n)
	return n > 0, res.Error
}

func (r *OfferRepository) ListByRequest(ctx context.Context, requestID string) ([]offerDomain.Offer, error) {
	var out []offerDomain.Offer
	res := r.db.WithContext(ctx).
		Where("loan_request_id = ?", requestID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *OfferRepository) RejectPending(ctx context.Context, requestID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&offerDomain.Offer{}).
		Where("loan_request_id = ? AND status = ?", requestID, offerDomain.StatusPending).
		Update("status", offerDomain.StatusRejected)
	return res.RowsAffected, res.Error
}
