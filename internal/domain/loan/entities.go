package loan

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Loan struct {
	ID            string `gorm:"primaryKey;size:32"`
	LoanNumber    string `gorm:"size:32;uniqueIndex"`
	LoanRequestID string `gorm:"size:32;index"`
	LoanOfferID   string `gorm:"size:32;uniqueIndex"`
	BorrowerID    string `gorm:"size:32;not null;index"`
	LenderID      string `gorm:"size:32;not null;index"`

	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InterestRate float64         `gorm:"type:decimal(6,2);not null"`
	DurationDays int             `gorm:"not null"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AmountPaid   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountDue    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Status           Status `gorm:"size:24;not null;default:'PENDING';index:idx_loans_status_due"`
	SignedByBorrower bool   `gorm:"not null;default:false"`
	SignedByLender   bool   `gorm:"not null;default:false"`

	DisbursedAt *time.Time
	DueDate     *time.Time `gorm:"index:idx_loans_status_due"`
	RepaidAt    *time.Time

	IsLate               bool            `gorm:"not null;default:false"`
	LateDays             int             `gorm:"not null;default:0"`
	PenaltyAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentProofDocument string          `gorm:"type:text"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Loan) TableName() string { return "loans" }

// HasParty reports whether userID is the borrower or the lender.
func (l *Loan) HasParty(userID string) bool {
	return userID != "" && (l.BorrowerID == userID || l.LenderID == userID)
}
