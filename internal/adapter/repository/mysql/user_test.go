package mysql

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	userDomain "microlend/internal/domain/user"
)

func TestUser_UpdateScore(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := seedUser(t, db)

	if err := repo.UpdateScore(ctx, u.ID, 60, userDomain.CategoryTrustable); err != nil {
		t.Fatalf("UpdateScore: %v", err)
	}
	got, err := repo.GetByIDForUpdate(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByIDForUpdate: %v", err)
	}
	if got.TrustScore != 60 || got.Category != userDomain.CategoryTrustable {
		t.Fatalf("score not updated: %d %s", got.TrustScore, got.Category)
	}
}

func TestUser_AddCounters(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := seedUser(t, db)

	if err := repo.AddCounters(ctx, u.ID, userDomain.Counters{
		TotalBorrowed: dec("100000"),
		CurrentDebt:   dec("106000"),
	}); err != nil {
		t.Fatalf("AddCounters: %v", err)
	}
	if err := repo.AddCounters(ctx, u.ID, userDomain.Counters{
		TotalRepaid: dec("106000"),
		CurrentDebt: dec("-106000"),
	}); err != nil {
		t.Fatalf("AddCounters: %v", err)
	}
	// all-zero delta is a no-op
	if err := repo.AddCounters(ctx, u.ID, userDomain.Counters{}); err != nil {
		t.Fatalf("AddCounters zero: %v", err)
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.TotalBorrowed.Equal(dec("100000")) || !got.TotalRepaid.Equal(dec("106000")) || !got.CurrentDebt.IsZero() {
		t.Fatalf("counters = borrowed %s repaid %s debt %s", got.TotalBorrowed, got.TotalRepaid, got.CurrentDebt)
	}
	if !got.TotalLent.IsZero() || !got.WalletBalance.IsZero() {
		t.Fatalf("untouched counters changed: lent %s wallet %s", got.TotalLent, got.WalletBalance)
	}
}

func TestUser_GetByID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)

	if _, err := repo.GetByID(context.Background(), "ffffffffffffffffffffffffffffffff"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
