package document

import "context"

type Repository interface {
	CreateMany(ctx context.Context, docs []*Document) error
	// HasVerifiedIdentity is true when the user owns a VERIFIED national id or passport.
	HasVerifiedIdentity(ctx context.Context, userID string) (bool, error)
}
