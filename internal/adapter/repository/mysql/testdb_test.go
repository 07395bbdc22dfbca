package mysql

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"microlend/internal/domain/document"
	"microlend/internal/domain/loan"
	"microlend/internal/domain/loanrequest"
	"microlend/internal/domain/notification"
	"microlend/internal/domain/offer"
	"microlend/internal/domain/trust"
	"microlend/internal/domain/user"
	"microlend/pkg/id"
)

// openTestDB creates an in-memory sqlite DB with the full schema. A single
// connection keeps every query on the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&user.User{}, &document.Document{}, &loanrequest.Request{}, &offer.Offer{},
		&loan.Loan{}, &trust.History{}, &notification.Notification{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedUser(t *testing.T, db *gorm.DB) *user.User {
	t.Helper()
	u := &user.User{
		ID:         id.NewID32(),
		Email:      id.NewID32()[:10] + "@example.com",
		FirstName:  "Aline",
		LastName:   "Uwase",
		Status:     user.StatusActive,
		TrustScore: user.InitialTrustScore,
		Category:   user.CategoryModerate,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func makeLoan(borrowerID, lenderID string, status loan.Status, due *time.Time) *loan.Loan {
	return &loan.Loan{
		ID:               id.NewID32(),
		LoanNumber:       id.NewLoanNumber(time.Now()),
		LoanRequestID:    id.NewID32(),
		LoanOfferID:      id.NewID32(),
		BorrowerID:       borrowerID,
		LenderID:         lenderID,
		Amount:           dec("100000"),
		InterestRate:     6,
		DurationDays:     30,
		TotalAmount:      dec("106000"),
		AmountDue:        dec("106000"),
		Status:           status,
		SignedByBorrower: true,
		DueDate:          due,
	}
}
