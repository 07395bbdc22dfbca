package offer

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusWithdrawn Status = "WITHDRAWN"
)

type Offer struct {
	ID             string          `gorm:"primaryKey;size:32"`
	LoanRequestID  string          `gorm:"size:32;not null;index:idx_offers_request_lender"`
	LenderID       string          `gorm:"size:32;not null;index:idx_offers_request_lender"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InterestRate   float64         `gorm:"type:decimal(6,2);not null;default:6"`
	Status         Status          `gorm:"size:16;not null;default:'PENDING'"`
	IsCounterOffer bool            `gorm:"not null;default:false"`
	Message        string          `gorm:"type:text"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (Offer) TableName() string { return "loan_offers" }
