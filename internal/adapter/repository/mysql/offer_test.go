package mysql

import (
	"context"
	"testing"

	offerDomain "microlend/internal/domain/offer"
	"microlend/pkg/id"
)

func makeOffer(requestID, lenderID string, status offerDomain.Status) *offerDomain.Offer {
	return &offerDomain.Offer{
		ID:            id.NewID32(),
		LoanRequestID: requestID,
		LenderID:      lenderID,
		Amount:        dec("50000"),
		InterestRate:  6,
		Status:        status,
	}
}

func TestOffer_HasPendingAndRejectPending(t *testing.T) {
	db := openTestDB(t)
	repo := NewOfferRepository(db)
	ctx := context.Background()

	req, lender, other := id.NewID32(), id.NewID32(), id.NewID32()
	for _, o := range []*offerDomain.Offer{
		makeOffer(req, lender, offerDomain.StatusPending),
		makeOffer(req, other, offerDomain.StatusWithdrawn),
		makeOffer(req, other, offerDomain.StatusPending),
		makeOffer(id.NewID32(), lender, offerDomain.StatusPending),
	} {
		if err := repo.Create(ctx, o); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if ok, err := repo.HasPending(ctx, req, lender); err != nil || !ok {
		t.Fatalf("HasPending(lender) = %v, %v; want true", ok, err)
	}
	if ok, err := repo.HasPending(ctx, req, id.NewID32()); err != nil || ok {
		t.Fatalf("HasPending(stranger) = %v, %v; want false", ok, err)
	}

	n, err := repo.RejectPending(ctx, req)
	if err != nil {
		t.Fatalf("RejectPending: %v", err)
	}
	if n != 2 {
		t.Fatalf("RejectPending affected %d, want 2", n)
	}
	if ok, _ := repo.HasPending(ctx, req, lender); ok {
		t.Fatal("offer still pending after RejectPending")
	}

	all, err := repo.ListByRequest(ctx, req)
	if err != nil {
		t.Fatalf("ListByRequest: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListByRequest returned %d, want 3", len(all))
	}
	for _, o := range all {
		if o.Status == offerDomain.StatusPending {
			t.Fatalf("offer %s still pending", o.ID)
		}
	}
}

func TestOffer_SaveStatus(t *testing.T) {
	db := openTestDB(t)
	repo := NewOfferRepository(db)
	ctx := context.Background()

	o := makeOffer(id.NewID32(), id.NewID32(), offerDomain.StatusPending)
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("Create: %v", err)
	}
	locked, err := repo.GetByIDForUpdate(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetByIDForUpdate: %v", err)
	}
	locked.Status = offerDomain.StatusAccepted
	if err := repo.Save(ctx, locked); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.GetByID(ctx, o.ID)
	if err != nil || got.Status != offerDomain.StatusAccepted {
		t.Fatalf("GetByID = %+v, %v", got, err)
	}
}
