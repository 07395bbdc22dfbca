package mysql

import (
	"context"

	"gorm.io/gorm"

	docDomain "microlend/internal/domain/document"
)

type DocumentRepository struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) CreateMany(ctx context.Context, docs []*docDomain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(docs).Error
}

func (r *DocumentRepository) HasVerifiedIdentity(ctx context.Context, userID string) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&docDomain.Document{}).
		Where("user_id = ? AND status = ? AND document_type IN ?", userID, docDomain.StatusVerified,
			[]docDomain.Type{docDomain.TypeNationalID, docDomain.TypePassport}).
		Count(&n)
	return n > 0, res.Error
}
