package offer

import "context"

type Repository interface {
	Create(ctx context.Context, o *Offer) error
	GetByID(ctx context.Context, id string) (*Offer, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Offer, error)
	Save(ctx context.Context, o *Offer) error
	// HasPending reports a non-deleted PENDING offer from lenderID on requestID.
	HasPending(ctx context.Context, requestID, lenderID string) (bool, error)
	ListByRequest(ctx context.Context, requestID string) ([]Offer, error)
	// RejectPending moves every PENDING offer on requestID to REJECTED.
	RejectPending(ctx context.Context, requestID string) (int64, error)
}
