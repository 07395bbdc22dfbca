package loanrequest

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"microlend/pkg/money"
)

type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusPartial   Status = "PARTIAL"
	StatusFunded    Status = "FUNDED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

type Request struct {
	ID              string              `gorm:"primaryKey;size:32"`
	BorrowerID      string              `gorm:"size:32;not null;index"`
	Amount          decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	MinAmount       decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	InterestRate    float64             `gorm:"type:decimal(6,2);not null;default:6"`
	DurationDays    int                 `gorm:"not null"`
	Purpose         string              `gorm:"type:text"`
	AmountFunded    decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	AmountNeeded    decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Status          Status              `gorm:"size:16;not null;default:'OPEN';index"`
	FundingDeadline *time.Time
	ExpiresAt       *time.Time
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (Request) TableName() string { return "loan_requests" }

// OpenForFunding is false once the request is FUNDED, CANCELLED or EXPIRED.
func (r *Request) OpenForFunding() bool {
	switch r.Status {
	case StatusFunded, StatusCancelled, StatusExpired:
		return false
	}
	return true
}

// ApplyFunding adds amount to AmountFunded and recomputes AmountNeeded and
// Status. Callers must hold the row lock.
func (r *Request) ApplyFunding(amount decimal.Decimal) {
	r.AmountFunded = r.AmountFunded.Add(amount)
	r.recompute()
}

func (r *Request) recompute() {
	r.AmountNeeded = money.Remaining(r.Amount, r.AmountFunded)
	switch {
	case !r.AmountNeeded.IsPositive():
		r.Status = StatusFunded
	case r.AmountFunded.IsPositive():
		r.Status = StatusPartial
	default:
		r.Status = StatusOpen
	}
}

// Deadline is the earliest of ExpiresAt and FundingDeadline, if any.
func (r *Request) Deadline() *time.Time {
	switch {
	case r.ExpiresAt == nil:
		return r.FundingDeadline
	case r.FundingDeadline == nil:
		return r.ExpiresAt
	case r.FundingDeadline.Before(*r.ExpiresAt):
		return r.FundingDeadline
	}
	return r.ExpiresAt
}
